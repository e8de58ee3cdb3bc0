package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// ErrPermissionDenied is returned by a Source when microphone access was refused.
var ErrPermissionDenied = errors.New("audio: microphone permission denied")

// Source is a capture device delivering fixed-size mono sample blocks.
// Blocks must close the returned channel when ctx is cancelled or the
// source is exhausted. A Source is single-use.
type Source interface {
	Blocks(ctx context.Context) (<-chan []float32, error)
	SampleRate() int
}

// Recorder pumps a Source into an Extractor on a dedicated capture
// goroutine. Only the pump goroutine calls Consume; Stop waits for it to
// exit before finalizing, so the snapshot includes the final block.
type Recorder struct {
	extractor *Extractor
	logger    *zap.Logger
	onBlock   func(frames int)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRecorder wires a Recorder around ex.
func NewRecorder(ex *Extractor, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{extractor: ex, logger: logger}
}

// Start opens src and begins a session. A running session is stopped first.
func (r *Recorder) Start(ctx context.Context, src Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.stopLocked()
	}

	ctx, cancel := context.WithCancel(ctx)
	blocks, err := src.Blocks(ctx)
	if err != nil {
		cancel()
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("audio: open source: %w", err)
	}

	r.extractor.Start()
	done := make(chan struct{})
	go r.pump(blocks, done)
	r.cancel = cancel
	r.done = done

	r.logger.Debug("recording started", zap.Int("sample_rate", src.SampleRate()))
	return nil
}

func (r *Recorder) pump(blocks <-chan []float32, done chan<- struct{}) {
	defer close(done)
	for buf := range blocks {
		r.extractor.Consume(buf)
		if r.onBlock != nil {
			r.onBlock(len(buf))
		}
	}
}

// Recording reports whether a session is running.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Done is closed when the running source is exhausted. It returns nil when idle.
func (r *Recorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Stop ends the session and returns its snapshot. ok is false when idle.
func (r *Recorder) Stop() (features domain.AudioFeatures, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return domain.AudioFeatures{}, false
	}
	return r.stopLocked(), true
}

func (r *Recorder) stopLocked() domain.AudioFeatures {
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil

	f, _ := r.extractor.Finalize()
	r.logger.Debug("recording stopped",
		zap.Float64("rms", f.RMSLoudness),
		zap.Float64("peak", f.PeakAmplitude),
		zap.Float64("duration_s", f.DurationSeconds))
	return f
}

// Toggle starts recording when idle and stops it when running, like the
// record button. stopped is true when a snapshot was produced. A refused
// microphone is logged and leaves the recorder idle.
func (r *Recorder) Toggle(ctx context.Context, src Source) (features domain.AudioFeatures, stopped bool) {
	if f, ok := r.Stop(); ok {
		return f, true
	}
	if err := r.Start(ctx, src); err != nil {
		r.logger.Warn("recording not started", zap.Error(err))
	}
	return domain.AudioFeatures{}, false
}

// Analyze runs src to exhaustion and returns its snapshot. The session
// clock advances with the consumed samples, so the duration is the length
// of the audio rather than the time spent decoding it.
func Analyze(ctx context.Context, src Source, logger *zap.Logger) (domain.AudioFeatures, error) {
	clk := newSampleClock(src.SampleRate())
	rec := NewRecorder(NewExtractor(clk.now), logger)
	rec.onBlock = clk.advance

	if err := rec.Start(ctx, src); err != nil {
		return domain.AudioFeatures{}, err
	}

	select {
	case <-rec.Done():
	case <-ctx.Done():
	}

	f, _ := rec.Stop()
	if err := ctx.Err(); err != nil {
		return domain.AudioFeatures{}, err
	}
	return f, nil
}

// sampleClock reports time as the number of frames consumed at rate.
type sampleClock struct {
	rate   int64
	frames atomic.Int64
}

func newSampleClock(rate int) *sampleClock {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &sampleClock{rate: int64(rate)}
}

func (c *sampleClock) now() time.Time {
	ns := c.frames.Load() * int64(time.Second) / c.rate
	return time.Unix(0, ns)
}

func (c *sampleClock) advance(frames int) {
	c.frames.Add(int64(frames))
}
