package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kurishiro/voxlayer/pkg/cache"
	"github.com/kurishiro/voxlayer/pkg/timeline"
)

const defaultMaxTextLength = 25

// newTimelineCmd creates the timeline command group.
func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Build and reconcile speech timelines",
	}

	cmd.AddCommand(newTimelineAudioCmd())
	cmd.AddCommand(newTimelineTextCmd())
	cmd.AddCommand(newTimelineMergeCmd())

	return cmd
}

// newTimelineAudioCmd creates the "timeline audio" subcommand.
func newTimelineAudioCmd() *cobra.Command {
	var (
		output    string
		format    string
		cacheSpec string
		store     string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "audio <dir>",
		Short: "Build a timing table from a directory of WAV takes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := openCache(ctx, cacheSpec)
			if err != nil {
				return err
			}
			defer c.Close()

			opts := []timeline.AudioOption{timeline.WithCache(c)}
			if workers > 0 {
				opts = append(opts, timeline.WithWorkers(workers))
			}

			sp := newSpinnerWithContext(ctx, "Decoding takes")
			sp.Start()
			tl, err := timeline.BuildAudio(ctx, args[0], opts...)
			if err != nil {
				sp.Stop()
				return err
			}
			sp.StopWithSuccess(fmt.Sprintf("Decoded %d takes", len(tl)))

			if err := storeTimeline(ctx, store, tl); err != nil {
				return err
			}
			return writeTimeline(tl, output, format, cacheSpec != "")
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format by extension; stdout if empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: csv (default), json, yaml")
	cmd.Flags().StringVar(&cacheSpec, "cache", "", "duration cache: directory path or redis:// URL")
	cmd.Flags().StringVar(&store, "store", "", "MongoDB URI to store the built timeline")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel decoders (default: GOMAXPROCS)")

	return cmd
}

// newTimelineTextCmd creates the "timeline text" subcommand.
func newTimelineTextCmd() *cobra.Command {
	var (
		output   string
		format   string
		maxLen   int
		extras   []string
		speakers string
		store    string
	)

	cmd := &cobra.Command{
		Use:   "text <dir>",
		Short: "Build a subtitle table from a directory of script files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			extraCols, err := parseExtras(extras)
			if err != nil {
				return err
			}

			var opts []timeline.TextOption
			if speakers != "" {
				table, err := timeline.LoadSpeakers(speakers)
				if err != nil {
					return err
				}
				logger.Debugf("Loaded %d speakers from %s", len(table), speakers)
				opts = append(opts, timeline.WithSpeakers(table))
			}

			tl, err := timeline.BuildText(args[0], maxLen, extraCols, opts...)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Parsed %d script files", len(tl)))

			if err := storeTimeline(ctx, store, tl); err != nil {
				return err
			}
			return writeTimeline(tl, output, format, false)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format by extension; stdout if empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: csv (default), json, yaml")
	cmd.Flags().IntVar(&maxLen, "max-len", defaultMaxTextLength, "wrap text at this many characters")
	cmd.Flags().StringArrayVar(&extras, "extra", nil, "extra column as name=default (repeatable)")
	cmd.Flags().StringVar(&speakers, "speakers", "", "TOML file mapping speaker labels to ids")
	cmd.Flags().StringVar(&store, "store", "", "MongoDB URI to store the built timeline")

	return cmd
}

// newTimelineMergeCmd creates the "timeline merge" subcommand.
func newTimelineMergeCmd() *cobra.Command {
	var (
		output  string
		format  string
		key     string
		payload string
		review  bool
		store   string
	)

	cmd := &cobra.Command{
		Use:   "merge <old> <new>",
		Short: "Reconcile two timeline revisions into an annotated merge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			old, err := loadTimeline(args[0])
			if err != nil {
				return err
			}
			updated, err := loadTimeline(args[1])
			if err != nil {
				return err
			}

			merged, err := timeline.Reconcile(old, updated, key, payload)
			if err != nil {
				return err
			}
			logger.Infof("Reconciled %d + %d records into %d", len(old), len(updated), len(merged))

			if review {
				accepted, err := runReview(merged, payload)
				if err != nil {
					return err
				}
				if !accepted {
					printWarning("Merge discarded")
					return nil
				}
			}

			if err := storeTimeline(ctx, store, merged); err != nil {
				return err
			}
			return writeTimeline(merged, output, format, false)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format by extension; stdout if empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: csv (default), json, yaml")
	cmd.Flags().StringVar(&key, "key", "hash", "identity column used for matching")
	cmd.Flags().StringVar(&payload, "payload", "text", "column annotated with change markers")
	cmd.Flags().BoolVar(&review, "review", false, "review the merge interactively before writing")
	cmd.Flags().StringVar(&store, "store", "", "MongoDB URI to store the merged timeline")

	return cmd
}

// parseExtras parses repeated name=default flags into extra columns.
func parseExtras(raw []string) ([]timeline.ExtraColumn, error) {
	cols := make([]timeline.ExtraColumn, 0, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --extra %q (want name=default)", r)
		}
		cols = append(cols, timeline.ExtraColumn{Name: name, Default: value})
	}
	return cols, nil
}

// openCache builds a cache from the --cache flag: empty means no
// caching, a redis:// or rediss:// URL selects Redis, anything else is
// a directory for the file cache.
func openCache(ctx context.Context, spec string) (cache.Cache, error) {
	switch {
	case spec == "":
		return cache.NewNullCache(), nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		return cache.NewRedisCache(ctx, spec)
	default:
		return cache.NewFileCache(spec)
	}
}

// storeTimeline writes the timeline to a MongoDB sink when a URI is
// given.
func storeTimeline(ctx context.Context, uri string, tl timeline.Timeline) error {
	if uri == "" {
		return nil
	}
	sink, err := timeline.NewMongoSink(ctx, uri, "voxlayer", "runs")
	if err != nil {
		return err
	}
	defer sink.Close(ctx)

	if err := sink.Write(ctx, tl); err != nil {
		return err
	}
	printDetail("Stored run in %s", uri)
	return nil
}

// loadTimeline reads a timeline file, inferring the format from the
// extension.
func loadTimeline(path string) (timeline.Timeline, error) {
	format, err := timeline.FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return timeline.Decode(f, format)
}

// writeTimeline writes the timeline to the output path or stdout. The
// format flag wins over the path extension; the default is CSV.
func writeTimeline(tl timeline.Timeline, output, formatFlag string, cached bool) error {
	format := timeline.FormatCSV
	if output != "" {
		if f, err := timeline.FormatForPath(output); err == nil {
			format = f
		}
	}
	if formatFlag != "" {
		f, err := timeline.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	if output == "" {
		return timeline.Encode(os.Stdout, tl, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := timeline.Encode(f, tl, format); err != nil {
		return err
	}

	printSuccess("Wrote timeline")
	printFile(output)
	printStats(len(tl), len(tl.Columns()), cached)
	return nil
}
