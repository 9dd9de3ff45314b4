package timeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink stores timelines in a MongoDB collection, one document per
// build run. Used by pipelines that keep every build for later comparison
// instead of overwriting a file.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// runDocument is the stored shape of one build run.
type runDocument struct {
	ID        string           `bson:"_id"`
	CreatedAt time.Time        `bson:"created_at"`
	Columns   []string         `bson:"columns"`
	Rows      []map[string]any `bson:"rows"`
}

// NewMongoSink connects to MongoDB and targets db.collection.
func NewMongoSink(ctx context.Context, uri, db, collection string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(db).Collection(collection),
	}, nil
}

// Write inserts the timeline as a new run document with a fresh run ID.
func (s *MongoSink) Write(ctx context.Context, t Timeline) error {
	doc := runDocument{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Columns:   t.Columns(),
		Rows:      rows(t),
	}
	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

// Latest returns the most recently stored timeline, or nil if the
// collection is empty. Useful as the "old" side of a Reconcile.
func (s *MongoSink) Latest(ctx context.Context) (Timeline, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc runDocument
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Rebuild records in the stored column order.
	var t Timeline
	for _, row := range doc.Rows {
		rec := NewRecord()
		for _, c := range doc.Columns {
			if v, ok := row[c]; ok {
				rec.Set(c, v)
			}
		}
		t = append(t, rec)
	}
	return t, nil
}

// Close disconnects from MongoDB.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoSink implements Sink.
var _ Sink = (*MongoSink)(nil)
