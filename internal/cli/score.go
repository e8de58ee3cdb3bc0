package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/scoring"
)

func newScoreCommand(opts *options) *cobra.Command {
	var (
		sliders  []float64
		weekday  string
		address  string
		previous int
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a one-off wellbeing score",
		Long: `Compute a wellbeing score from six slider values (mood, stress, stamina,
sleep, focus, anxiety) without touching the stored day state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := domain.DefaultSliderScores
			if cmd.Flags().Changed("sliders") {
				var err error
				if s, err = domain.NewSliderScores(sliders...); err != nil {
					return err
				}
			}
			wd := time.Now().Weekday()
			if weekday != "" {
				var ok bool
				if wd, ok = parseWeekday(weekday); !ok {
					return fmt.Errorf("unknown weekday %q", weekday)
				}
			}

			b := scoring.New(opts.cfg.Scoring.Locations).Breakdown(s, domain.ScoreContext{
				Weekday:       wd,
				Address:       address,
				PreviousScore: previous,
			})
			printBreakdown(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&sliders, "sliders", nil, "Six slider values in [0,100] (default: built-in defaults)")
	cmd.Flags().StringVar(&weekday, "weekday", "", "Day of the week (default: today)")
	cmd.Flags().StringVar(&address, "address", "", "Address used for the location adjustment")
	cmd.Flags().IntVar(&previous, "previous", domain.NeutralScore, "Yesterday's score")
	return cmd
}

func newTodayCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's stored score, computing it once per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.wellbeing.Today(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d\n", report.Date, report.Score)
			if report.Breakdown != nil {
				printBreakdown(out, *report.Breakdown)
			}
			fmt.Fprintln(out, report.Encouragement)
			return nil
		},
	}
}

func printBreakdown(w io.Writer, b scoring.Breakdown) {
	fmt.Fprintf(w, "score:     %d\n", b.Score)
	fmt.Fprintf(w, "base:      %.2f\n", b.Base)
	fmt.Fprintf(w, "weekday:   %+.2f\n", b.WeekdayAdj)
	fmt.Fprintf(w, "location:  %+.2f\n", b.LocationAdj)
	fmt.Fprintf(w, "yesterday: %+.2f\n", b.YesterdayAdj)
	fmt.Fprintf(w, "comment:   %s\n", scoring.Encouragement(b.Score))
}

func parseWeekday(s string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return d, true
		}
	}
	return 0, false
}
