package system

import (
	"fmt"
	"image"
	"os"
	"strings"

	"go.uber.org/zap"
)

// TouchFile reads touches handed over by an external touch controller driver, which writes "x y" in raw panel
// coordinates to a file. Each touch is consumed by truncating the file.
type TouchFile struct {
	path string
	log  *zap.Logger
	// Map converts raw panel coordinates to UI coordinates. Nil means identity.
	Map func(image.Point) image.Point
}

func NewTouchFile(path string, log *zap.Logger) *TouchFile {
	return &TouchFile{path: path, log: log}
}

func (t *TouchFile) Touch() (image.Point, bool) {
	data, err := os.ReadFile(t.path)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return image.Point{}, false
	}
	if err := os.Truncate(t.path, 0); err != nil {
		t.log.Warn("unable to consume touch", zap.Error(err))
	}

	var p image.Point
	if _, err := fmt.Sscan(string(data), &p.X, &p.Y); err != nil {
		t.log.Debug("malformed touch", zap.String("data", string(data)), zap.Error(err))
		return image.Point{}, false
	}
	if t.Map != nil {
		p = t.Map(p)
	}
	return p, true
}
