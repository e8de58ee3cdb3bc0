package imaging

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Default screen geometry in pixels and icon edge length.
const (
	DefaultScreenWidth  = 1179
	DefaultScreenHeight = 2556
	DefaultIconSize     = 240
)

// Framing is the result of framing one photo.
type Framing struct {
	Crop      image.Rectangle
	Wallpaper image.Image
	Icon      image.Image
}

// Framer cuts screen-shaped wallpapers around faces and renders square icons.
type Framer struct {
	aspect   float64
	iconSize int
}

// NewFramer returns a Framer for a screen of the given pixel size.
// Non-positive values select the defaults.
func NewFramer(screenWidth, screenHeight, iconSize int) *Framer {
	if screenWidth <= 0 || screenHeight <= 0 {
		screenWidth, screenHeight = DefaultScreenWidth, DefaultScreenHeight
	}
	if iconSize <= 0 {
		iconSize = DefaultIconSize
	}
	return &Framer{
		aspect:   float64(screenWidth) / float64(screenHeight),
		iconSize: iconSize,
	}
}

// Aspect returns the target width/height ratio.
func (f *Framer) Aspect() float64 { return f.aspect }

// Crop returns the largest screen-shaped rectangle that fits the image,
// centered on face (or on the whole image when face is nil), intersected
// with the image bounds and expanded to whole pixels.
func (f *Framer) Crop(bounds image.Rectangle, face *image.Rectangle) image.Rectangle {
	target := bounds
	if face != nil {
		target = *face
	}

	imgW, imgH := float64(bounds.Dx()), float64(bounds.Dy())
	w, h := imgW, imgW/f.aspect
	if h > imgH {
		h = imgH
		w = imgH * f.aspect
	}

	midX := float64(target.Min.X+target.Max.X) / 2
	midY := float64(target.Min.Y+target.Max.Y) / 2
	x0, y0 := midX-w/2, midY-h/2

	r := image.Rect(
		int(math.Floor(x0)),
		int(math.Floor(y0)),
		int(math.Ceil(x0+w)),
		int(math.Ceil(y0+h)),
	)
	return r.Intersect(bounds)
}

// Frame crops the wallpaper around face and renders the icon from the
// whole, uncropped image stretched to a square.
func (f *Framer) Frame(img image.Image, face *image.Rectangle) Framing {
	b := img.Bounds()
	if b.Empty() {
		return Framing{Crop: b, Wallpaper: img, Icon: img}
	}

	crop := f.Crop(b, face)
	wallpaper := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(wallpaper, wallpaper.Bounds(), img, crop.Min, draw.Src)

	icon := image.NewRGBA(image.Rect(0, 0, f.iconSize, f.iconSize))
	draw.CatmullRom.Scale(icon, icon.Bounds(), img, b, draw.Src, nil)

	return Framing{Crop: crop, Wallpaper: wallpaper, Icon: icon}
}
