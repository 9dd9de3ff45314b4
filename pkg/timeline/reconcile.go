package timeline

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/kurishiro/voxlayer/pkg/errors"
)

// Markers prefixed onto the payload column of annotated records.
const (
	// InsertedMarker flags records only present in the new timeline.
	InsertedMarker = ">>>>> "

	// RemovedMarker flags records only present in the old timeline.
	RemovedMarker = "<<<<< "
)

// Reconcile merges an old and a new timeline keyed by the key column.
//
// The key sequences of both timelines are aligned with a
// Ratcliff/Obershelp sequence matcher. Matched records pass through from
// old unchanged; records only present in old keep their data with the
// payload column prefixed by RemovedMarker; records only present in new
// are emitted with the payload prefixed by InsertedMarker. Every input
// record appears exactly once in the output, in the matcher's walk order
// (old-then-new interleaving), not sorted by key.
//
// Keys are compared by value. If either timeline contains duplicate keys,
// alignment follows the matcher's longest-common-block heuristic; which of
// the duplicates pairs up is matcher-defined, not guaranteed.
//
// Every record of both inputs must expose the key and payload columns,
// otherwise Reconcile fails with a FIELD_MISSING error.
func Reconcile(old, updated Timeline, key, payload string) (Timeline, error) {
	if err := requireColumns(old, "old", key, payload); err != nil {
		return nil, err
	}
	if err := requireColumns(updated, "new", key, payload); err != nil {
		return nil, err
	}

	m := difflib.NewMatcher(old.Strings(key), updated.Strings(key))

	var out Timeline
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e': // matched: old records pass through unchanged
			for i := op.I1; i < op.I2; i++ {
				out = append(out, old[i])
			}
		case 'd': // present in old only
			for i := op.I1; i < op.I2; i++ {
				out = append(out, annotate(old[i], payload, RemovedMarker))
			}
		case 'i': // present in new only
			for j := op.J1; j < op.J2; j++ {
				out = append(out, annotate(updated[j], payload, InsertedMarker))
			}
		case 'r': // replaced: removals first, then insertions
			for i := op.I1; i < op.I2; i++ {
				out = append(out, annotate(old[i], payload, RemovedMarker))
			}
			for j := op.J1; j < op.J2; j++ {
				out = append(out, annotate(updated[j], payload, InsertedMarker))
			}
		}
	}
	return out, nil
}

// annotate clones rec and prefixes its payload column with marker.
func annotate(rec Record, payload, marker string) Record {
	out := rec.Clone()
	out.Set(payload, marker+out.String(payload))
	return out
}

// requireColumns verifies every record exposes the key and payload columns.
func requireColumns(t Timeline, side, key, payload string) error {
	for i, rec := range t {
		if !rec.Has(key) {
			return errors.New(errors.ErrCodeFieldMissing, "%s timeline record %d has no %q column", side, i, key)
		}
		if !rec.Has(payload) {
			return errors.New(errors.ErrCodeFieldMissing, "%s timeline record %d has no %q column", side, i, payload)
		}
	}
	return nil
}
