package imaging

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Layout constants, in pixels.
const (
	Padding         = 16
	MinCanvasHeight = 160
	minLayoutWidth  = 300

	assistantMinFont   = 14
	assistantFontScale = 0.05
	userMinFont        = 13
	userFontScale      = 0.045
	minRightColumn     = 180
	rightColumnScale   = 0.6

	assistantMinWrap  = 100
	assistantMinWidth = 80
	assistantLead     = 8
)

var (
	assistantBackdrop = color.NRGBA{A: 0x80}
	userBackdrop      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xf2}
)

// Layout is the canvas geometry for one compose pass.
type Layout struct {
	Canvas            image.Rectangle
	Photo             image.Rectangle
	RightColumn       int
	AssistantFontSize float64
	UserFontSize      float64
}

// PlanLayout computes the canvas for a base image of the given bounds. The
// right column exists only when userColumn is set.
func PlanLayout(base image.Rectangle, userColumn bool) Layout {
	w, h := float64(base.Dx()), float64(base.Dy())
	layoutWidth := math.Max(w, minLayoutWidth)

	height := max(base.Dy(), MinCanvasHeight)
	left := int(math.Round(w * float64(height) / h))

	l := Layout{
		Photo:             image.Rect(0, 0, left, height),
		AssistantFontSize: math.Max(assistantMinFont, layoutWidth*assistantFontScale),
		UserFontSize:      math.Max(userMinFont, layoutWidth*userFontScale),
	}
	width := left + Padding
	if userColumn {
		l.RightColumn = int(math.Max(minRightColumn, layoutWidth*rightColumnScale))
		width = left + l.RightColumn
	}
	l.Canvas = image.Rect(0, 0, width, height)
	return l
}

// Compositor renders caption panels over photos.
type Compositor struct {
	fonts *FontSet
}

// NewCompositor returns a Compositor drawing with fonts.
func NewCompositor(fonts *FontSet) *Compositor {
	return &Compositor{fonts: fonts}
}

// Compose draws base on a transparent canvas with the assistant caption in
// a dark panel along the bottom of the photo and, when drawUserText is set,
// the user caption in a white panel in a column to the right. Empty
// or blank captions are omitted. A zero-size base is returned unchanged.
func (c *Compositor) Compose(base image.Image, assistantText, userText string, drawUserText bool) image.Image {
	b := base.Bounds()
	if b.Empty() {
		return base
	}
	withAssistant := strings.TrimSpace(assistantText) != ""
	withUser := drawUserText && strings.TrimSpace(userText) != ""
	l := PlanLayout(b, withUser)

	canvas := image.NewRGBA(l.Canvas)
	if l.Photo.Size() == b.Size() {
		draw.Draw(canvas, l.Photo, base, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(canvas, l.Photo, base, b, draw.Src, nil)
	}

	if withAssistant {
		c.drawAssistant(canvas, l, assistantText)
	}
	if withUser {
		c.drawUser(canvas, l, userText)
	}
	return canvas
}

func (c *Compositor) drawAssistant(canvas *image.RGBA, l Layout, text string) {
	face, err := newFace(c.fonts.Bold, l.AssistantFontSize)
	if err != nil {
		return
	}
	defer face.Close()

	lines := wrap(face, text, max(assistantMinWrap, l.Photo.Dx()-2*Padding))
	textHeight := len(lines)*lineHeight(face) + assistantLead

	box := image.Rect(
		l.Photo.Min.X+Padding/2,
		l.Photo.Max.Y-textHeight-Padding/2,
		l.Photo.Min.X+Padding/2+max(assistantMinWidth, l.Photo.Dx()-Padding),
		l.Photo.Max.Y-Padding/2,
	)
	fillRoundedRect(canvas, inset(box, -8, -6), 8, assistantBackdrop)
	drawLines(canvas, face, lines, box.Min, color.White)
}

func (c *Compositor) drawUser(canvas *image.RGBA, l Layout, text string) {
	face, err := newFace(c.fonts.Regular, l.UserFontSize)
	if err != nil {
		return
	}
	defer face.Close()

	width := l.RightColumn - 2*Padding
	lines := wrap(face, text, width)
	x := l.Photo.Max.X + Padding
	box := image.Rect(x, Padding, x+width, Padding+len(lines)*lineHeight(face))

	fillRoundedRect(canvas, inset(box, -8, -8), 12, userBackdrop)
	drawLines(canvas, face, lines, box.Min, color.Black)
}

// Stamp draws text in bold white centered along the bottom of img. The font
// starts at 8% of the image width and shrinks until the text fits in 90% of
// it, down to a floor of 8 points.
func (c *Compositor) Stamp(img image.Image, text string) image.Image {
	b := img.Bounds()
	if b.Empty() || text == "" {
		return img
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	face, width := c.fitFace(text, float64(b.Dx()))
	if face == nil {
		return out
	}
	defer face.Close()

	origin := image.Pt((b.Dx()-width)/2, b.Dy()-lineHeight(face)-12)
	drawLines(out, face, []string{text}, origin, color.White)
	return out
}

func (c *Compositor) fitFace(text string, imageWidth float64) (font.Face, int) {
	limit := imageWidth * 0.9
	for size := imageWidth * 0.08; ; size-- {
		face, err := newFace(c.fonts.Bold, size)
		if err != nil {
			return nil, 0
		}
		width := font.MeasureString(face, text).Ceil()
		if float64(width) <= limit || size <= 8 {
			return face, width
		}
		face.Close()
	}
}

func inset(r image.Rectangle, dx, dy int) image.Rectangle {
	return image.Rect(r.Min.X+dx, r.Min.Y+dy, r.Max.X-dx, r.Max.Y-dy)
}
