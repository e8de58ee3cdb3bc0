package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/nekolog/internal/adapters/rest"
	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/schedule"
)

func newServeCommand(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily timers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, opts *options) error {
	logger := opts.logger
	a, err := newApp(ctx, opts.cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// Catch up on a day that rolled over while the process was down.
	if report, err := a.wellbeing.Foreground(ctx, time.Now()); err != nil {
		logger.Warn("startup score failed", zap.Error(err))
	} else {
		logger.Info("today's score", zap.Int("score", int(report.Score)), zap.Bool("computed", report.Computed))
	}

	reminder := opts.cfg.Reminder
	handler := rest.NewHandler(rest.Deps{
		Wellbeing:  a.wellbeing,
		Assistant:  a.assistant,
		Album:      a.album,
		Portrait:   a.portrait,
		Scorer:     a.scorer,
		Classifier: a.classifier,
		Plan: func(now time.Time) domain.ReminderSchedule {
			return schedule.Plan(now, reminder.MorningHour, reminder.MorningMinute)
		},
		BlockSize: opts.cfg.Audio.BlockSize,
		Logger:    logger.Named("rest"),
	})

	srv := &http.Server{
		Addr:              opts.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("nekolog API is running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.scheduler.Run(gctx, a.wellbeing.OnMorning, a.wellbeing.OnMidnight)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}
