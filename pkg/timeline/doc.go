// Package timeline builds and reconciles tabular timelines from the files a
// speech synthesizer exports alongside its audio takes.
//
// The package works on ordered records rather than any particular dataframe
// or table library: BuildAudio and BuildText produce a Timeline (an ordered
// sequence of Records), Reconcile merges two Timelines by content hash, and
// the sinks in sink.go and mongo.go adapt the record stream to concrete
// output formats (CSV, JSON, YAML, MongoDB).
//
// # Workflow
//
// A typical subtitle workflow re-exports text and audio from the synthesizer
// after every script edit:
//
//	audio, err := timeline.BuildAudio(ctx, "voice/")
//	text, err := timeline.BuildText("voice/", 25, nil)
//
//	// ... the script changes, files are re-exported ...
//	updated, err := timeline.BuildText("voice/", 25, nil)
//	merged, err := timeline.Reconcile(text, updated, "hash", "text")
//
// Rows only present in the old timeline keep their data but gain a
// "<<<<< " prefix on the payload column; rows only present in the new
// timeline gain ">>>>> ". Matched rows pass through untouched, so manual
// edits made to the old timeline survive a re-export.
package timeline
