package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// fillRoundedRect composites c over dst inside r with corners of the given radius.
func fillRoundedRect(dst draw.Image, r image.Rectangle, radius int, c color.Color) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	if limit := min(r.Dx(), r.Dy()) / 2; radius > limit {
		radius = limit
	}

	mask := image.NewAlpha(r)
	rad := float64(radius)
	left, right := float64(r.Min.X)+rad, float64(r.Max.X)-rad
	top, bottom := float64(r.Min.Y)+rad, float64(r.Max.Y)-rad

	for y := r.Min.Y; y < r.Max.Y; y++ {
		cy := float64(y) + 0.5
		for x := r.Min.X; x < r.Max.X; x++ {
			cx := float64(x) + 0.5
			dx := math.Max(0, math.Max(left-cx, cx-right))
			dy := math.Max(0, math.Max(top-cy, cy-bottom))
			if dx*dx+dy*dy <= rad*rad {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}

	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, r.Min, draw.Over)
}
