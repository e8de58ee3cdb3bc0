package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// DefaultMaxSleep bounds a single wait so that a suspended host notices a
// missed fire instant soon after waking.
const DefaultMaxSleep = time.Minute

// Clock is the wall clock used by loops.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// WallClock is the real clock.
type WallClock struct{}

// Now returns time.Now().
func (WallClock) Now() time.Time { return time.Now() }

// After returns time.After(d).
func (WallClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// FireFunc is called when a loop reaches its fire instant.
type FireFunc func(ctx context.Context, at time.Time)

// Loop is a single long-lived timer: armed, fired, re-armed. Every
// iteration recomputes the next fire instant from the wall clock, and waits
// are sliced into MaxSleep chunks that each re-read the clock.
type Loop struct {
	Name     string
	Clock    Clock
	Next     func(now time.Time) time.Time
	Fire     FireFunc
	MaxSleep time.Duration
	Logger   *zap.Logger
}

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	clock := l.Clock
	if clock == nil {
		clock = WallClock{}
	}
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for {
		target := l.Next(clock.Now())
		logger.Debug("timer armed", zap.String("timer", l.Name), zap.Time("fire_at", target))

		if !l.waitUntil(ctx, clock, target) {
			return nil
		}

		logger.Info("timer fired", zap.String("timer", l.Name), zap.Time("fire_at", target))
		l.Fire(ctx, target)
	}
}

func (l *Loop) waitUntil(ctx context.Context, clock Clock, target time.Time) bool {
	maxSleep := l.MaxSleep
	if maxSleep <= 0 {
		maxSleep = DefaultMaxSleep
	}
	for {
		now := clock.Now()
		if !now.Before(target) {
			return true
		}
		wait := target.Sub(now)
		if wait > maxSleep {
			wait = maxSleep
		}
		select {
		case <-ctx.Done():
			return false
		case <-clock.After(wait):
		}
	}
}

// Options configures a Scheduler.
type Options struct {
	Clock         Clock
	MorningHour   int
	MorningMinute int
	MaxSleep      time.Duration
	Logger        *zap.Logger
}

// Scheduler runs the morning report timer and the midnight reset timer.
type Scheduler struct {
	opts Options
}

// New returns a Scheduler. A nil Clock selects WallClock.
func New(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = WallClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{opts: opts}
}

// Plan returns the upcoming fire instants as of now.
func (s *Scheduler) Plan() domain.ReminderSchedule {
	return Plan(s.opts.Clock.Now(), s.opts.MorningHour, s.opts.MorningMinute)
}

// Run starts both timers and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, onMorning, onMidnight FireFunc) error {
	morning := &Loop{
		Name:  "morning_report",
		Clock: s.opts.Clock,
		Next: func(now time.Time) time.Time {
			return NextDaily(now, s.opts.MorningHour, s.opts.MorningMinute)
		},
		Fire:     onMorning,
		MaxSleep: s.opts.MaxSleep,
		Logger:   s.opts.Logger,
	}
	midnight := &Loop{
		Name:     "midnight_reset",
		Clock:    s.opts.Clock,
		Next:     NextMidnight,
		Fire:     onMidnight,
		MaxSleep: s.opts.MaxSleep,
		Logger:   s.opts.Logger,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return morning.Run(ctx) })
	g.Go(func() error { return midnight.Run(ctx) })
	return g.Wait()
}
