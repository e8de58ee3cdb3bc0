// Package imaging rasterizes caption composites, auto-fit stamps, and
// face-centered wallpaper crops.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontSet holds the parsed typefaces used for captions. Faces are created
// per render, so a FontSet is safe to share.
type FontSet struct {
	Bold    *opentype.Font
	Regular *opentype.Font
}

// DefaultFonts returns the bundled Go fonts. They carry no CJK glyphs; use
// LoadFonts with a Japanese-capable font file for Japanese captions.
func DefaultFonts() (*FontSet, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("imaging: parse bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("imaging: parse regular font: %w", err)
	}
	return &FontSet{Bold: bold, Regular: regular}, nil
}

// LoadFonts reads TrueType/OpenType files from disk. An empty path falls
// back to the bundled face for that weight.
func LoadFonts(boldPath, regularPath string) (*FontSet, error) {
	fs, err := DefaultFonts()
	if err != nil {
		return nil, err
	}
	if boldPath != "" {
		if fs.Bold, err = loadFont(boldPath); err != nil {
			return nil, err
		}
	}
	if regularPath != "" {
		if fs.Regular, err = loadFont(regularPath); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("imaging: parse font %s: %w", path, err)
	}
	return f, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

// wrap breaks text into lines no wider than maxWidth pixels. Lines break at
// the last space that fits, or between any two runes when there is none,
// which is how Japanese text without spaces wraps.
func wrap(face font.Face, text string, maxWidth int) []string {
	limit := fixed.I(maxWidth)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(para)
		if len(runes) == 0 {
			lines = append(lines, "")
			continue
		}
		for len(runes) > 0 {
			n := fit(face, runes, limit)
			lines = append(lines, strings.TrimRight(string(runes[:n]), " "))
			runes = runes[n:]
			for len(runes) > 0 && runes[0] == ' ' {
				runes = runes[1:]
			}
		}
	}
	return lines
}

// fit returns how many leading runes belong on the current line. It is
// always at least one so wrapping makes progress.
func fit(face font.Face, runes []rune, limit fixed.Int26_6) int {
	lastSpace := -1
	for i, r := range runes {
		if r == ' ' {
			lastSpace = i
		}
		if font.MeasureString(face, string(runes[:i+1])) <= limit {
			continue
		}
		switch {
		case i == 0:
			return 1
		case lastSpace > 0:
			return lastSpace + 1
		default:
			return i
		}
	}
	return len(runes)
}

// drawLines renders lines top-down starting with the first line's top edge at origin.
func drawLines(dst draw.Image, face font.Face, lines []string, origin image.Point, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	ascent := face.Metrics().Ascent
	step := lineHeight(face)
	for i, line := range lines {
		d.Dot = fixed.Point26_6{
			X: fixed.I(origin.X),
			Y: fixed.I(origin.Y+i*step) + ascent,
		}
		d.DrawString(line)
	}
}
