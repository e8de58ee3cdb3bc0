package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/nekolog/internal/audio"
)

func newListenCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "listen <file.mp3>",
		Short: "Translate a recorded meow into a phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			src, err := audio.NewMP3Source(f, opts.cfg.Audio.BlockSize)
			if err != nil {
				return err
			}
			features, err := audio.Analyze(cmd.Context(), src, opts.logger)
			if err != nil {
				return err
			}
			if err := src.Err(); err != nil {
				return err
			}

			book, err := audio.PhraseBookFor(opts.cfg.Audio.Language)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "loudness: %.4f\n", features.RMSLoudness)
			fmt.Fprintf(out, "peak:     %.1f\n", features.PeakAmplitude)
			fmt.Fprintf(out, "duration: %.2fs\n", features.DurationSeconds)
			fmt.Fprintln(out, audio.NewClassifier(book, nil).Classify(features))
			return nil
		},
	}
}
