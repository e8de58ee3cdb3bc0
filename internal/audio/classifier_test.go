package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
)

func TestClassifier_Candidates(t *testing.T) {
	c := NewClassifier(Japanese, nil)

	tests := []struct {
		name     string
		features domain.AudioFeatures
		want     []string
	}{
		{
			name:     "quiet playful persistent",
			features: domain.AudioFeatures{RMSLoudness: 0.01, PeakAmplitude: 400, DurationSeconds: 3.0},
			want: []string{
				"小さな声にゃ", "控えめに呼んでるにゃ",
				"遊んで欲しいにゃ", "テンション高いにゃ！",
				"長く呼んでるにゃ", "しつこく訴えてるにゃ",
			},
		},
		{
			name:     "band edges are inclusive on the lower bound",
			features: domain.AudioFeatures{RMSLoudness: 0.02, PeakAmplitude: 150, DurationSeconds: 2.0},
			want: []string{
				"お腹が空いたにゃ", "撫でて欲しいにゃ",
				"ちょうど良い気分にゃ", "落ち着いてるにゃ",
				"ちょっと鳴いただけにゃ", "気まぐれにゃ",
			},
		},
		{
			name:     "loud sleepy brief",
			features: domain.AudioFeatures{RMSLoudness: 0.05, PeakAmplitude: 0.9, DurationSeconds: 0.4},
			want: []string{
				"元気いっぱいだにゃ！", "大声で呼んでるにゃ！",
				"眠いにゃ…", "リラックスしてるにゃ",
				"ちょっと鳴いただけにゃ", "気まぐれにゃ",
			},
		},
		{
			name:     "peak exactly at the playful threshold is neutral",
			features: domain.AudioFeatures{RMSLoudness: 0.03, PeakAmplitude: 300, DurationSeconds: 2.5},
			want: []string{
				"お腹が空いたにゃ", "撫でて欲しいにゃ",
				"ちょうど良い気分にゃ", "落ち着いてるにゃ",
				"長く呼んでるにゃ", "しつこく訴えてるにゃ",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Candidates(tc.features))
		})
	}
}

func TestClassifier_ClassifyStaysInCandidateSet(t *testing.T) {
	c := NewClassifier(Japanese, nil)
	f := domain.AudioFeatures{RMSLoudness: 0.01, PeakAmplitude: 400, DurationSeconds: 3.0}

	allowed := map[string]bool{}
	for _, p := range c.Candidates(f) {
		allowed[p] = true
	}
	require.Len(t, allowed, 6)

	for i := 0; i < 100; i++ {
		got := c.Classify(f)
		assert.True(t, allowed[got], "unexpected phrase %q", got)
	}
}

func TestClassifier_InjectedPicker(t *testing.T) {
	last := PickerFunc(func(c []string) string { return c[len(c)-1] })
	c := NewClassifier(English, last)

	got := c.Classify(domain.AudioFeatures{RMSLoudness: 0.5, PeakAmplitude: 200, DurationSeconds: 1})
	assert.Equal(t, "On a whim, meow", got)
}

func TestPhraseBookFor(t *testing.T) {
	book, err := PhraseBookFor("en")
	require.NoError(t, err)
	assert.Equal(t, "Meow?", book.Fallback)

	book, err = PhraseBookFor("")
	require.NoError(t, err)
	assert.Equal(t, Japanese, book)

	_, err = PhraseBookFor("fr")
	assert.Error(t, err)
}
