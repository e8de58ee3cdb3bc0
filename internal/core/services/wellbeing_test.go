package services

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/scoring"
)

func newTestWellbeing() (*Wellbeing, *memPrefs, *memArtifacts, *mockNotifier) {
	prefs := newMemPrefs()
	artifacts := newMemArtifacts()
	notifier := &mockNotifier{}
	w := NewWellbeing(prefs, artifacts, notifier, scoring.New(nil), WellbeingConfig{MorningHour: 5}, nil)
	return w, prefs, artifacts, notifier
}

// TestWellbeing_Today verifies the once-per-day score and its rollover.
func TestWellbeing_Today(t *testing.T) {
	ctx := context.Background()
	w, prefs, _, notifier := newTestWellbeing()

	wednesday := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	first, err := w.Today(ctx, wednesday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Computed || first.Score != 60 {
		t.Fatalf("expected computed score 60, got %+v", first)
	}
	if first.Encouragement != "いい調子だにゃ！これをキープにゃ" {
		t.Fatalf("unexpected encouragement %q", first.Encouragement)
	}
	if got, _ := prefs.GetInt(ctx, KeyYesterdayScore, 0); got != 60 {
		t.Fatalf("expected yesterday score to become 60, got %d", got)
	}

	// Same day: no recomputation even if inputs change.
	if err := prefs.SetInt(ctx, KeyYesterdayScore, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	again, err := w.Today(ctx, wednesday.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Computed || again.Score != 60 {
		t.Fatalf("expected cached score 60, got %+v", again)
	}
	if err := prefs.SetInt(ctx, KeyYesterdayScore, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	thursday := wednesday.Add(24 * time.Hour)
	next, err := w.Today(ctx, thursday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Computed || next.Score != 64 {
		t.Fatalf("expected score 64 on thursday, got %+v", next)
	}

	if len(notifier.reminders) != 2 {
		t.Fatalf("expected a forecast per computation, got %d", len(notifier.reminders))
	}
	r := notifier.reminders[1]
	if r.ID != ReminderMorning || r.Hour != 5 || !r.Repeats || r.Title != scoring.ForecastTitle {
		t.Fatalf("unexpected reminder %+v", r)
	}
	if !strings.HasPrefix(r.Body, "ねこの今日の気分は多分64点位だにゃ") {
		t.Fatalf("unexpected body %q", r.Body)
	}
}

func TestWellbeing_TodayUsesStoredContext(t *testing.T) {
	ctx := context.Background()
	w, prefs, _, notifier := newTestWellbeing()

	sliders, err := domain.NewSliderScores(0, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("sliders: %v", err)
	}
	if err := w.SaveSliders(ctx, sliders); err != nil {
		t.Fatalf("save sliders: %v", err)
	}
	_ = prefs.SetInt(ctx, KeyYesterdayScore, 100)
	_ = prefs.SetString(ctx, KeyCallName, "タマ")

	sunday := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	got, err := w.Today(ctx, sunday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 25 {
		t.Fatalf("expected 25, got %d", got.Score)
	}
	if !strings.HasPrefix(notifier.reminders[0].Body, "タマの") {
		t.Fatalf("call name not used: %q", notifier.reminders[0].Body)
	}
}

func TestWellbeing_SaveSlidersClamps(t *testing.T) {
	ctx := context.Background()
	w, _, _, _ := newTestWellbeing()

	defaults, err := w.Sliders(ctx)
	if err != nil {
		t.Fatalf("sliders: %v", err)
	}
	if defaults != domain.DefaultSliderScores {
		t.Fatalf("expected defaults, got %v", defaults)
	}

	if err := w.SaveSliders(ctx, domain.SliderScores{-10, 150, 50, 50, 50, 50}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := w.Sliders(ctx)
	if got[0] != 0 || got[1] != 100 {
		t.Fatalf("expected clamped values, got %v", got)
	}
}

func TestWellbeing_ResetDayAndForeground(t *testing.T) {
	ctx := context.Background()
	w, prefs, artifacts, notifier := newTestWellbeing()

	day := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	if _, err := w.Today(ctx, day); err != nil {
		t.Fatalf("today: %v", err)
	}
	_ = artifacts.SaveArtifact(ctx, ArtifactWallpaper, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	_ = artifacts.SaveArtifact(ctx, ArtifactIcon, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	_ = prefs.SetString(ctx, KeyLastWallpaperDate, "2026-10-14")

	w.OnMidnight(ctx, day.Add(15*time.Hour))

	if got, _ := prefs.GetInt(ctx, KeyTodayScore, -1); got != 0 {
		t.Fatalf("expected today score 0, got %d", got)
	}
	if got, _ := prefs.GetString(ctx, KeyLastWallpaperDate, "none"); got != "none" {
		t.Fatalf("wallpaper date not cleared: %q", got)
	}
	if img, _ := artifacts.GetArtifact(ctx, ArtifactWallpaper); img != nil {
		t.Fatalf("wallpaper not cleared")
	}
	if img, _ := artifacts.GetArtifact(ctx, ArtifactIcon); img != nil {
		t.Fatalf("icon not cleared")
	}

	report, err := w.Foreground(ctx, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("foreground: %v", err)
	}
	if !report.Computed {
		t.Fatalf("expected recomputation on a new date")
	}
	if want := []int{1, 0}; len(notifier.badges) != 2 || notifier.badges[0] != want[0] || notifier.badges[1] != want[1] {
		t.Fatalf("expected badges %v, got %v", want, notifier.badges)
	}
}
