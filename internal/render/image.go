package render

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

// drawImage draws the image on the display at the given coordinates. Off-screen pixels are clipped.
func drawImage(disp drivers.Displayer, offX, offY int16, img image.Image) {
	w, h := disp.Size()
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		xx := int16(x-b.Min.X) + offX
		if xx < 0 || xx >= w {
			continue
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			yy := int16(y-b.Min.Y) + offY
			if yy < 0 || yy >= h {
				continue
			}
			cr, cg, cb, ca := img.At(x, y).RGBA()
			disp.SetPixel(xx, yy, color.RGBA{
				R: uint8(cr >> 8),
				G: uint8(cg >> 8),
				B: uint8(cb >> 8),
				A: uint8(ca >> 8),
			})
		}
	}
}
