package cli

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kurishiro/voxlayer/pkg/timeline"
)

// debounceWindow coalesces the burst of events a synthesizer re-export
// produces into one rebuild.
const debounceWindow = 300 * time.Millisecond

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	var (
		output   string
		maxLen   int
		speakers string
		store    string
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Rebuild the text timeline whenever script files change",
		Long:  `watch monitors a directory of script files and rebuilds the text timeline on every change, reporting a reconciliation against the previous build so edits show up as inserted/removed rows.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			var opts []timeline.TextOption
			if speakers != "" {
				table, err := timeline.LoadSpeakers(speakers)
				if err != nil {
					return err
				}
				opts = append(opts, timeline.WithSpeakers(table))
			}

			build := func() (timeline.Timeline, error) {
				return timeline.BuildText(args[0], maxLen, nil, opts...)
			}

			previous, err := build()
			if err != nil {
				return err
			}
			printInfo("Watching %s (%d records)", args[0], len(previous))

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			if err := watcher.Add(args[0]); err != nil {
				return err
			}

			var timer *time.Timer
			rebuild := make(chan struct{}, 1)
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !strings.HasSuffix(event.Name, ".txt") {
						continue
					}
					logger.Debugf("fs event: %s", event)
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounceWindow, func() {
						select {
						case rebuild <- struct{}{}:
						default:
						}
					})

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Warnf("watcher: %v", err)

				case <-rebuild:
					run := uuid.NewString()[:8]
					current, err := build()
					if err != nil {
						logger.Errorf("run %s: rebuild failed: %v", run, err)
						continue
					}

					merged, err := timeline.Reconcile(previous, current, "hash", "text")
					if err != nil {
						logger.Errorf("run %s: reconcile failed: %v", run, err)
						continue
					}
					inserted, removed := countChanges(merged)
					logger.Infof("run %s: %d records (+%d −%d)", run, len(current), inserted, removed)

					if store != "" {
						if err := storeTimeline(ctx, store, current); err != nil {
							logger.Errorf("run %s: store failed: %v", run, err)
						}
					}
					if output != "" {
						if err := writeTimeline(current, output, "", false); err != nil {
							logger.Errorf("run %s: write failed: %v", run, err)
						}
					}
					previous = current
				}
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "rewrite this timeline file on every rebuild")
	cmd.Flags().IntVar(&maxLen, "max-len", defaultMaxTextLength, "wrap text at this many characters")
	cmd.Flags().StringVar(&speakers, "speakers", "", "TOML file mapping speaker labels to ids")
	cmd.Flags().StringVar(&store, "store", "", "MongoDB URI to store each rebuild")

	return cmd
}

// countChanges counts inserted and removed rows in a reconciled
// timeline.
func countChanges(t timeline.Timeline) (inserted, removed int) {
	for _, rec := range t {
		text := rec.String("text")
		switch {
		case strings.HasPrefix(text, timeline.InsertedMarker):
			inserted++
		case strings.HasPrefix(text, timeline.RemovedMarker):
			removed++
		}
	}
	return inserted, removed
}
