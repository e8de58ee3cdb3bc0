package audio

import "fmt"

// PhraseBook holds two candidate phrases per rule band.
type PhraseBook struct {
	Quiet      [2]string
	Needy      [2]string
	Energetic  [2]string
	Playful    [2]string
	Sleepy     [2]string
	Neutral    [2]string
	Persistent [2]string
	Brief      [2]string
	// Fallback is returned when no candidate is available.
	Fallback string
}

// Japanese is the phrase book of the original app.
var Japanese = PhraseBook{
	Quiet:      [2]string{"小さな声にゃ", "控えめに呼んでるにゃ"},
	Needy:      [2]string{"お腹が空いたにゃ", "撫でて欲しいにゃ"},
	Energetic:  [2]string{"元気いっぱいだにゃ！", "大声で呼んでるにゃ！"},
	Playful:    [2]string{"遊んで欲しいにゃ", "テンション高いにゃ！"},
	Sleepy:     [2]string{"眠いにゃ…", "リラックスしてるにゃ"},
	Neutral:    [2]string{"ちょうど良い気分にゃ", "落ち着いてるにゃ"},
	Persistent: [2]string{"長く呼んでるにゃ", "しつこく訴えてるにゃ"},
	Brief:      [2]string{"ちょっと鳴いただけにゃ", "気まぐれにゃ"},
	Fallback:   "にゃ？",
}

// English mirrors Japanese for the English UI.
var English = PhraseBook{
	Quiet:      [2]string{"Just a tiny voice, meow", "Calling you softly, meow"},
	Needy:      [2]string{"I'm hungry, meow", "Pet me, meow"},
	Energetic:  [2]string{"Full of energy, meow!", "Calling out loud, meow!"},
	Playful:    [2]string{"Play with me, meow", "So excited, meow!"},
	Sleepy:     [2]string{"Sleepy, meow...", "Feeling relaxed, meow"},
	Neutral:    [2]string{"Feeling just right, meow", "All calm, meow"},
	Persistent: [2]string{"Calling for a long time, meow", "Really insisting, meow"},
	Brief:      [2]string{"Just a little meow", "On a whim, meow"},
	Fallback:   "Meow?",
}

// PhraseBookFor returns the book for a language code ("ja" or "en").
func PhraseBookFor(lang string) (PhraseBook, error) {
	switch lang {
	case "", "ja":
		return Japanese, nil
	case "en":
		return English, nil
	default:
		return PhraseBook{}, fmt.Errorf("audio: unsupported phrase language %q", lang)
	}
}
