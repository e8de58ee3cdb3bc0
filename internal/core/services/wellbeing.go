package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/ports"
	"github.com/ewilliams-labs/nekolog/internal/scoring"
)

// Report is the day's score as shown to the user.
type Report struct {
	Date          string                `json:"date"`
	Score         domain.WellbeingScore `json:"score"`
	Computed      bool                  `json:"computed"`
	Breakdown     *scoring.Breakdown    `json:"breakdown,omitempty"`
	Encouragement string                `json:"encouragement"`
}

// WellbeingConfig holds the morning notification time.
type WellbeingConfig struct {
	MorningHour   int
	MorningMinute int
}

// Wellbeing owns the once-per-day score and its notifications.
type Wellbeing struct {
	prefs     ports.PreferenceStore
	artifacts ports.ArtifactStore
	notifier  ports.Notifier
	scorer    *scoring.Scorer
	cfg       WellbeingConfig
	logger    *zap.Logger

	mu sync.Mutex
}

// NewWellbeing constructs a Wellbeing service. artifacts may be nil.
func NewWellbeing(prefs ports.PreferenceStore, artifacts ports.ArtifactStore, notifier ports.Notifier, scorer *scoring.Scorer, cfg WellbeingConfig, logger *zap.Logger) *Wellbeing {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scorer == nil {
		scorer = scoring.New(nil)
	}
	return &Wellbeing{
		prefs:     prefs,
		artifacts: artifacts,
		notifier:  notifier,
		scorer:    scorer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Sliders returns the stored slider values, using the defaults for any
// value never saved.
func (w *Wellbeing) Sliders(ctx context.Context) (domain.SliderScores, error) {
	var s domain.SliderScores
	for i := range s {
		v, err := w.prefs.GetFloat(ctx, sliderKey(i), domain.DefaultSliderScores[i])
		if err != nil {
			return domain.SliderScores{}, fmt.Errorf("service: failed to load sliders: %w", err)
		}
		s[i] = domain.ClampSlider(v)
	}
	return s, nil
}

// SaveSliders stores s. Values are clamped on the way in.
func (w *Wellbeing) SaveSliders(ctx context.Context, s domain.SliderScores) error {
	for i, v := range s {
		if err := w.prefs.SetFloat(ctx, sliderKey(i), domain.ClampSlider(v)); err != nil {
			return fmt.Errorf("service: failed to save sliders: %w", err)
		}
	}
	return nil
}

// State returns the persisted day state.
func (w *Wellbeing) State(ctx context.Context) (domain.DayState, error) {
	date, err := w.prefs.GetString(ctx, KeyLastCalculationDate, "")
	if err != nil {
		return domain.DayState{}, fmt.Errorf("service: failed to load day state: %w", err)
	}
	today, err := w.prefs.GetInt(ctx, KeyTodayScore, 0)
	if err != nil {
		return domain.DayState{}, fmt.Errorf("service: failed to load day state: %w", err)
	}
	yesterday, err := w.prefs.GetInt(ctx, KeyYesterdayScore, domain.NeutralScore)
	if err != nil {
		return domain.DayState{}, fmt.Errorf("service: failed to load day state: %w", err)
	}
	return domain.DayState{
		LastCalculationDate: date,
		TodayScore:          domain.WellbeingScore(today),
		YesterdayScore:      domain.WellbeingScore(yesterday),
	}, nil
}

// Today returns the score for now's calendar day, computing it once per
// day. Computing stores the new score as both today's and the next day's
// "yesterday" score and schedules the morning forecast.
func (w *Wellbeing) Today(ctx context.Context, now time.Time) (Report, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	date := domain.DateKey(now)
	state, err := w.State(ctx)
	if err != nil {
		return Report{}, err
	}
	if state.LastCalculationDate == date {
		return w.report(date, state.TodayScore, nil), nil
	}

	sliders, err := w.Sliders(ctx)
	if err != nil {
		return Report{}, err
	}
	address, err := w.prefs.GetString(ctx, KeyAddress, "")
	if err != nil {
		return Report{}, fmt.Errorf("service: failed to load address: %w", err)
	}

	b := w.scorer.Breakdown(sliders, domain.ScoreContext{
		Weekday:       now.Weekday(),
		Address:       address,
		PreviousScore: int(state.YesterdayScore),
	})

	for _, kv := range []struct {
		key   string
		value int
	}{
		{KeyTodayScore, int(b.Score)},
		{KeyYesterdayScore, int(b.Score)},
	} {
		if err := w.prefs.SetInt(ctx, kv.key, kv.value); err != nil {
			return Report{}, fmt.Errorf("service: failed to save score: %w", err)
		}
	}
	if err := w.prefs.SetString(ctx, KeyLastCalculationDate, date); err != nil {
		return Report{}, fmt.Errorf("service: failed to save score date: %w", err)
	}

	w.logger.Info("daily score computed",
		zap.String("date", date),
		zap.Int("score", int(b.Score)),
		zap.Float64("base", b.Base),
		zap.Int("previous", int(state.YesterdayScore)))

	if err := w.scheduleForecast(ctx, b.Score); err != nil {
		w.logger.Warn("forecast not scheduled", zap.Error(err))
	}
	return w.report(date, b.Score, &b), nil
}

func (w *Wellbeing) report(date string, score domain.WellbeingScore, b *scoring.Breakdown) Report {
	return Report{
		Date:          date,
		Score:         score,
		Computed:      b != nil,
		Breakdown:     b,
		Encouragement: scoring.Encouragement(score),
	}
}

func (w *Wellbeing) scheduleForecast(ctx context.Context, score domain.WellbeingScore) error {
	callName, err := w.prefs.GetString(ctx, KeyCallName, DefaultCallName)
	if err != nil {
		return fmt.Errorf("service: failed to load call name: %w", err)
	}
	if callName == "" {
		callName = DefaultCallName
	}
	return w.notifier.Schedule(ctx, domain.Reminder{
		ID:      ReminderMorning,
		Title:   scoring.ForecastTitle,
		Body:    scoring.ForecastBody(callName, score),
		Hour:    w.cfg.MorningHour,
		Minute:  w.cfg.MorningMinute,
		Repeats: true,
	})
}

// ResetDay runs at midnight: today's score goes back to zero, the
// wallpaper and icon are cleared, and the badge is raised.
func (w *Wellbeing) ResetDay(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.prefs.SetInt(ctx, KeyTodayScore, 0); err != nil {
		return fmt.Errorf("service: failed to reset score: %w", err)
	}
	if err := w.prefs.Delete(ctx, KeyLastWallpaperDate); err != nil {
		return fmt.Errorf("service: failed to reset wallpaper date: %w", err)
	}
	if w.artifacts != nil {
		for _, name := range []string{ArtifactWallpaper, ArtifactIcon} {
			if err := w.artifacts.DeleteArtifact(ctx, name); err != nil {
				return fmt.Errorf("service: failed to clear %s: %w", name, err)
			}
		}
	}
	if err := w.notifier.SetBadge(ctx, 1); err != nil {
		w.logger.Warn("badge not set", zap.Error(err))
	}
	w.logger.Info("day reset")
	return nil
}

// Foreground clears the badge and returns today's report, computing it if
// the date changed while the app was away.
func (w *Wellbeing) Foreground(ctx context.Context, now time.Time) (Report, error) {
	if err := w.notifier.SetBadge(ctx, 0); err != nil {
		w.logger.Warn("badge not cleared", zap.Error(err))
	}
	return w.Today(ctx, now)
}

// Encouragement returns the comment for score.
func (w *Wellbeing) Encouragement(score domain.WellbeingScore) string {
	return scoring.Encouragement(score)
}

// OnMorning is the morning timer callback.
func (w *Wellbeing) OnMorning(ctx context.Context, at time.Time) {
	if _, err := w.Today(ctx, at); err != nil {
		w.logger.Error("morning report failed", zap.Error(err))
	}
}

// OnMidnight is the midnight timer callback.
func (w *Wellbeing) OnMidnight(ctx context.Context, _ time.Time) {
	if err := w.ResetDay(ctx); err != nil {
		w.logger.Error("midnight reset failed", zap.Error(err))
	}
}
