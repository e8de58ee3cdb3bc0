package domain

import (
	"image"
	"math"
)

// NormalizedBox is a face bounding box as reported by a detector: [0,1]
// coordinates with the origin at the bottom-left of the image.
type NormalizedBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FaceBoxFromNormalized converts n into top-left pixel coordinates relative
// to bounds and returns the smallest integer rectangle containing it,
// clipped to bounds. It returns nil when the result is empty.
func FaceBoxFromNormalized(n NormalizedBox, bounds image.Rectangle) *image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	if w <= 0 || h <= 0 {
		return nil
	}

	x0 := n.X * w
	y0 := (1 - n.Y - n.Height) * h
	x1 := x0 + n.Width*w
	y1 := y0 + n.Height*h

	r := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	).Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return nil
	}
	return &r
}
