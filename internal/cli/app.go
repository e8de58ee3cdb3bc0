package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/adapters/caption"
	"github.com/ewilliams-labs/nekolog/internal/adapters/httpx"
	"github.com/ewilliams-labs/nekolog/internal/adapters/notify"
	"github.com/ewilliams-labs/nekolog/internal/adapters/sqlite"
	"github.com/ewilliams-labs/nekolog/internal/adapters/vision"
	"github.com/ewilliams-labs/nekolog/internal/audio"
	"github.com/ewilliams-labs/nekolog/internal/config"
	"github.com/ewilliams-labs/nekolog/internal/core/ports"
	"github.com/ewilliams-labs/nekolog/internal/core/services"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
	"github.com/ewilliams-labs/nekolog/internal/schedule"
	"github.com/ewilliams-labs/nekolog/internal/scoring"
	"github.com/ewilliams-labs/nekolog/internal/worker"
)

// albumQueueSize bounds pending photo jobs.
const albumQueueSize = 64

// app is the wired object graph shared by the commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	store      *sqlite.Adapter
	queue      *worker.Queue
	notifier   *notify.Recorder
	scheduler  *schedule.Scheduler
	scorer     *scoring.Scorer
	classifier *audio.Classifier
	compositor *imaging.Compositor
	framer     *imaging.Framer

	wellbeing *services.Wellbeing
	assistant *services.Assistant
	portrait  *services.Portrait
	album     *services.Album
}

// newApp opens storage and builds every service. The album queue is
// started with ctx; Close stops it and closes storage.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := sqlite.NewAdapter(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	fonts, err := loadFonts(cfg.Imaging)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	book, err := audio.PhraseBookFor(cfg.Audio.Language)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		queue:      worker.NewQueue(albumQueueSize, logger.Named("album")),
		notifier:   notify.NewRecorder(notify.NewLogNotifier(logger.Named("notify"))),
		scorer:     scoring.New(cfg.Scoring.Locations),
		classifier: audio.NewClassifier(book, nil),
		compositor: imaging.NewCompositor(fonts),
		framer:     imaging.NewFramer(cfg.Imaging.ScreenWidth, cfg.Imaging.ScreenHeight, cfg.Imaging.IconSize),
		scheduler: schedule.New(schedule.Options{
			MorningHour:   cfg.Reminder.MorningHour,
			MorningMinute: cfg.Reminder.MorningMinute,
			Logger:        logger.Named("schedule"),
		}),
	}

	captions := caption.NewClient(cfg.Caption.URL,
		caption.WithHTTPClient(httpx.NewClient(ctx, cfg.Caption.Timeout, cfg.Caption.OAuth)),
		caption.WithPolicy(cfg.Caption.Policy()),
		caption.WithFallback(cfg.Caption.Fallback),
		caption.WithLogger(logger.Named("caption")),
	)

	a.wellbeing = services.NewWellbeing(store, store, a.notifier, a.scorer, services.WellbeingConfig{
		MorningHour:   cfg.Reminder.MorningHour,
		MorningMinute: cfg.Reminder.MorningMinute,
	}, logger.Named("wellbeing"))
	a.assistant = services.NewAssistant(captions, cfg.Caption.Persona)
	a.portrait = services.NewPortrait(a.framer, newDetector(ctx, cfg.Vision, logger), store, store, logger.Named("portrait"))
	a.album = services.NewAlbum(a.queue, store, a.compositor, a.portrait, a.assistant,
		services.AlbumConfig{DrawUserText: cfg.Imaging.DrawUserText}, logger.Named("album"))

	a.queue.Start(ctx)
	return a, nil
}

// Close stops the queue and closes storage.
func (a *app) Close() error {
	a.queue.Stop()
	return a.store.Close()
}

func loadFonts(cfg config.Imaging) (*imaging.FontSet, error) {
	if cfg.BoldFont != "" {
		return imaging.LoadFonts(cfg.BoldFont, cfg.RegularFont)
	}
	return imaging.DefaultFonts()
}

// newDetector returns the vision client, or NoFace when no URL is set.
func newDetector(ctx context.Context, cfg config.Remote, logger *zap.Logger) ports.FaceDetector {
	if cfg.URL == "" {
		return vision.NoFace{}
	}
	return vision.NewClient(cfg.URL, httpx.NewClient(ctx, cfg.Timeout, cfg.OAuth), cfg.Policy(), logger.Named("vision"))
}
