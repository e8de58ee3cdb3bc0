package audio

import (
	"math/rand/v2"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

// Rule thresholds. Loudness is RMS, peak is the raw peak amplitude and
// duration is in seconds.
const (
	QuietLoudness     = 0.02
	EnergeticLoudness = 0.05
	PlayfulPeak       = 300
	SleepyPeak        = 150
	PersistentSeconds = 2.0
)

// Picker selects one phrase from a non-empty candidate pool.
type Picker interface {
	Pick(candidates []string) string
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(candidates []string) string

// Pick calls f.
func (f PickerFunc) Pick(candidates []string) string { return f(candidates) }

// RandomPicker draws uniformly from the pool.
type RandomPicker struct{}

// Pick returns a uniformly random candidate.
func (RandomPicker) Pick(candidates []string) string {
	return candidates[rand.IntN(len(candidates))]
}

// Classifier maps audio features onto a phrase.
type Classifier struct {
	book   PhraseBook
	picker Picker
}

// NewClassifier returns a classifier using book. A nil picker selects RandomPicker.
func NewClassifier(book PhraseBook, picker Picker) *Classifier {
	if picker == nil {
		picker = RandomPicker{}
	}
	return &Classifier{book: book, picker: picker}
}

// Candidates pools the phrases of the matching loudness, peak and duration
// bands. The result always has six entries.
func (c *Classifier) Candidates(f domain.AudioFeatures) []string {
	out := make([]string, 0, 6)

	switch {
	case f.RMSLoudness < QuietLoudness:
		out = append(out, c.book.Quiet[:]...)
	case f.RMSLoudness < EnergeticLoudness:
		out = append(out, c.book.Needy[:]...)
	default:
		out = append(out, c.book.Energetic[:]...)
	}

	switch {
	case f.PeakAmplitude > PlayfulPeak:
		out = append(out, c.book.Playful[:]...)
	case f.PeakAmplitude < SleepyPeak:
		out = append(out, c.book.Sleepy[:]...)
	default:
		out = append(out, c.book.Neutral[:]...)
	}

	if f.DurationSeconds > PersistentSeconds {
		out = append(out, c.book.Persistent[:]...)
	} else {
		out = append(out, c.book.Brief[:]...)
	}
	return out
}

// Classify picks one candidate for f. The result is random for fixed input
// unless a deterministic Picker was supplied.
func (c *Classifier) Classify(f domain.AudioFeatures) string {
	candidates := c.Candidates(f)
	if len(candidates) == 0 {
		return c.book.Fallback
	}
	return c.picker.Pick(candidates)
}
