// Package cli implements the nekolog command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/config"
	"github.com/ewilliams-labs/nekolog/internal/logging"
)

// options holds the global flags and what PersistentPreRunE derives from them.
type options struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "nekolog",
		Short: "nekolog - pet mood companion",
		Long: `nekolog keeps a daily wellbeing score for you and your cat, turns meows
into phrases, captions photos, and frames them as wallpapers.

Run "nekolog serve" to start the HTTP API with the daily timers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			level := cfg.Log.Level
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.cfg = cfg
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: search for nekolog.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newScoreCommand(opts))
	root.AddCommand(newTodayCommand(opts))
	root.AddCommand(newListenCommand(opts))
	root.AddCommand(newComposeCommand(opts))
	root.AddCommand(newFrameCommand(opts))
	root.AddCommand(newConfigCommand(opts))
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
