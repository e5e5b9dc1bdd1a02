// Package media holds the embedded bitmaps drawn on the panel and a file-backed frame buffer.
package media

import (
	"embed"
	"errors"
	"fmt"
	"image"
	"io/fs"

	"golang.org/x/image/bmp"
)

//go:embed media/*/*.bmp
var imgs embed.FS

// Logo is the name of the RaspAP logo bitmap.
const Logo = "raspap"

var ErrInvalidType = errors.New("invalid media type")

// LoadImage loads the specified image of the specified type.
func LoadImage(typ Type, name string) (image.Image, error) {
	w, h := typ.Size()
	if w == 0 || h == 0 {
		return nil, ErrInvalidType
	}

	r, err := imgs.Open("media/" + string(typ) + "/" + name + ".bmp")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fi, err := r.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("is a directory")}
	}

	img, err := bmp.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", typ, name, err)
	}

	b := img.Bounds()
	if int(w) != b.Dx() || int(h) != b.Dy() {
		return nil, fmt.Errorf("invalid image size %dx%d for type %s", b.Dx(), b.Dy(), typ)
	}

	return img, nil
}
