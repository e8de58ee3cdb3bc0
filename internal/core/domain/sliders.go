package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidSliders is returned when a slider set does not have exactly six values.
var ErrInvalidSliders = errors.New("domain: slider scores need exactly 6 values")

// Dimension identifies one of the six self-assessment sliders.
type Dimension int

const (
	Mood Dimension = iota
	Stress
	Stamina
	Sleep
	Focus
	Anxiety
)

// SliderCount is the fixed number of dimensions in a SliderScores value.
const SliderCount = 6

var dimensionNames = [SliderCount]string{"mood", "stress", "stamina", "sleep", "focus", "anxiety"}

func (d Dimension) String() string {
	if d < 0 || int(d) >= SliderCount {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// Dimensions returns the dimensions in storage order.
func Dimensions() []Dimension {
	return []Dimension{Mood, Stress, Stamina, Sleep, Focus, Anxiety}
}

// SliderScores holds the raw slider values in storage order. Values are
// clamped to [0,100] by NewSliderScores; the zero value is all zeros.
type SliderScores [SliderCount]float64

// DefaultSliderScores is the slider state of a fresh install.
var DefaultSliderScores = SliderScores{80, 40, 50, 70, 60, 90}

// NewSliderScores validates the count and clamps every value to [0,100].
func NewSliderScores(values ...float64) (SliderScores, error) {
	var s SliderScores
	if len(values) != SliderCount {
		return s, fmt.Errorf("%w: got %d", ErrInvalidSliders, len(values))
	}
	for i, v := range values {
		s[i] = ClampSlider(v)
	}
	return s, nil
}

// ClampSlider limits a single slider value to [0,100].
func ClampSlider(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Value returns the stored (un-inverted) value for d.
func (s SliderScores) Value(d Dimension) float64 {
	return s[d]
}

// DisplayValue returns the value a renderer should show for d. Stress is
// displayed inverted (100 - value); storage is never inverted.
func (s SliderScores) DisplayValue(d Dimension) float64 {
	if d == Stress {
		return 100 - s[d]
	}
	return s[d]
}

// Mean is the unweighted arithmetic mean of the raw values.
func (s SliderScores) Mean() float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / SliderCount
}
