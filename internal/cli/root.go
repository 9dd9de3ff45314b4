package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kurishiro/voxlayer/pkg/buildinfo"
)

// Execute runs the voxlayer CLI and returns an error if any command
// fails.
//
// Logging defaults to info level on stderr; --verbose (-v) raises it to
// debug. The logger is attached to the command context and accessible
// via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "voxlayer",
		Short:        "voxlayer builds timelines and renders layers for synthesized speech video",
		Long:         `voxlayer turns a directory of synthesized speech exports (WAV takes and matching scripts) into timing tables, reconciles them across script revisions, and rasterizes subtitle and background layers for composition.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newTimelineCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
