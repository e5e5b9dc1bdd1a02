package media

import (
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/bmp"
)

// Frame is an in-memory drivers.Displayer. Display writes the frame to a BMP file when a path is set,
// for consumption by whatever pushes pixels to the physical panel.
type Frame struct {
	mu   sync.Mutex
	img  *image.RGBA
	path string
	w, h int16
}

// NewFrame creates a white frame of the given size. An empty path makes Display a no-op.
func NewFrame(w, h int16, path string) *Frame {
	f := &Frame{
		img:  image.NewRGBA(image.Rect(0, 0, int(w), int(h))),
		path: path,
		w:    w,
		h:    h,
	}
	for i := range f.img.Pix {
		f.img.Pix[i] = 0xff
	}
	return f
}

func (f *Frame) Size() (x, y int16) {
	return f.w, f.h
}

func (f *Frame) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.mu.Lock()
	f.img.SetRGBA(int(x), int(y), c)
	f.mu.Unlock()
}

// At returns the current color of a pixel.
func (f *Frame) At(x, y int16) color.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.img.RGBAAt(int(x), int(y))
}

// WriteBMP encodes the current frame as a 24-bit bitmap.
func (f *Frame) WriteBMP(w io.Writer) error {
	f.mu.Lock()
	snap := image.NewRGBA(f.img.Rect)
	copy(snap.Pix, f.img.Pix)
	f.mu.Unlock()
	return bmp.Encode(w, snap)
}

func (f *Frame) Display() error {
	if f.path == "" {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".frame-*.bmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := f.WriteBMP(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
