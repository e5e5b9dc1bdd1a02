// Package rotate presents a portrait panel as a landscape drawing surface.
package rotate

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

// Rotated turns the wrapped display a quarter turn clockwise, so a physical panel of pw x ph
// is drawn on as ph x pw.
type Rotated struct {
	d      drivers.Displayer
	pw, ph int16
}

func New(d drivers.Displayer) *Rotated {
	w, h := d.Size()
	return &Rotated{
		d:  d,
		pw: w,
		ph: h,
	}
}

func (r *Rotated) Size() (x, y int16) {
	return r.ph, r.pw
}

func (r *Rotated) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= r.ph || y >= r.pw {
		return
	}
	r.d.SetPixel(r.pw-1-y, x, c)
}

func (r *Rotated) Display() error {
	return r.d.Display()
}

// MapTouch converts a raw touch coordinate on the physical panel to drawing coordinates.
func (r *Rotated) MapTouch(p image.Point) image.Point {
	return image.Pt(p.Y, int(r.pw)-1-p.X)
}
