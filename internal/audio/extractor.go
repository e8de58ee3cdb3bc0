// Package audio derives loudness features from microphone sample blocks and
// maps them onto cat-lingual phrases.
package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// level is the per-buffer measurement published by Consume.
type level struct {
	rms  float64
	peak float64
}

type session struct {
	startedAt time.Time
	last      atomic.Pointer[level]
	result    chan domain.AudioFeatures
}

// Extractor measures the RMS loudness and peak amplitude of incoming sample
// blocks for one recording session at a time.
//
// Each Consume call overwrites the published level with the block's own
// values; nothing is accumulated across blocks. The snapshot returned by
// Finalize therefore describes the last block consumed before the session
// ended.
type Extractor struct {
	now func() time.Time

	mu      sync.Mutex
	current *session
}

// NewExtractor returns an idle extractor. A nil clock selects time.Now.
func NewExtractor(clock func() time.Time) *Extractor {
	if clock == nil {
		clock = time.Now
	}
	return &Extractor{now: clock}
}

// Start begins a new session and returns a channel that receives exactly
// one snapshot when the session ends. Starting while a session is active
// finalizes the old session first.
func (e *Extractor) Start() <-chan domain.AudioFeatures {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		e.finalizeLocked()
	}
	s := &session{
		startedAt: e.now(),
		result:    make(chan domain.AudioFeatures, 1),
	}
	s.last.Store(&level{})
	e.current = s
	return s.result
}

// Active reports whether a session is running.
func (e *Extractor) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Consume measures buf and publishes the result. It is safe to call from a
// capture goroutine while another goroutine calls Finalize. Calls outside a
// session and empty buffers are ignored.
func (e *Extractor) Consume(buf []float32) {
	if len(buf) == 0 {
		return
	}
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()
	if s == nil {
		return
	}
	lv := measure(buf)
	s.last.Store(&lv)
}

// Finalize ends the active session, delivers its snapshot on the session
// channel and returns it. ok is false when no session was active.
func (e *Extractor) Finalize() (features domain.AudioFeatures, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return domain.AudioFeatures{}, false
	}
	return e.finalizeLocked(), true
}

func (e *Extractor) finalizeLocked() domain.AudioFeatures {
	s := e.current
	e.current = nil

	lv := s.last.Load()
	duration := e.now().Sub(s.startedAt).Seconds()
	if duration < 0 {
		duration = 0
	}
	f := domain.AudioFeatures{
		RMSLoudness:     lv.rms,
		PeakAmplitude:   lv.peak,
		DurationSeconds: duration,
	}
	s.result <- f
	close(s.result)
	return f
}

func measure(buf []float32) level {
	var sumSquares, peak float64
	for _, v := range buf {
		x := float64(v)
		sumSquares += x * x
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}
	return level{
		rms:  math.Sqrt(sumSquares / float64(len(buf))),
		peak: peak,
	}
}
