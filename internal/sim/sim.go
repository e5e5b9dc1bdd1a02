// Package sim emulates the panel and touchscreen in a terminal. Each character cell shows two pixels stacked
// vertically, and mouse clicks stand in for touches.
package sim

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
)

const halfBlock = '▀'

// Screen implements drivers.Displayer and apstatus.Touchscreen.
type Screen struct {
	s    tcell.Screen
	w, h int16

	mu    sync.Mutex
	pix   []color.RGBA
	press *image.Point
}

// New initializes s and returns a w x h pixel panel drawn on it.
func New(s tcell.Screen, w, h int16) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse()
	s.HideCursor()
	s.Clear()

	pix := make([]color.RGBA, int(w)*int(h))
	for i := range pix {
		pix[i] = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return &Screen{
		s:   s,
		w:   w,
		h:   h,
		pix: pix,
	}, nil
}

func (s *Screen) Size() (x, y int16) {
	return s.w, s.h
}

func (s *Screen) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	s.mu.Lock()
	s.pix[int(y)*int(s.w)+int(x)] = c
	s.mu.Unlock()
}

func (s *Screen) Display() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cy := 0; cy < (int(s.h)+1)/2; cy++ {
		for cx := 0; cx < int(s.w); cx++ {
			top := s.pix[2*cy*int(s.w)+cx]
			bottom := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			if 2*cy+1 < int(s.h) {
				bottom = s.pix[(2*cy+1)*int(s.w)+cx]
			}
			style := tcell.StyleDefault.Foreground(toColor(top)).Background(toColor(bottom))
			s.s.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	s.s.Show()
	return nil
}

// Touch returns the last click since the previous call.
func (s *Screen) Touch() (image.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.press == nil {
		return image.Point{}, false
	}
	p := *s.press
	s.press = nil
	return p, true
}

// Listen handles terminal events until Close is called or the user quits, in which case cancel is called.
func (s *Screen) Listen(cancel context.CancelFunc) {
	go func() {
		for {
			ev := s.s.PollEvent()
			if ev == nil {
				return
			}
			if s.handle(ev) {
				cancel()
				return
			}
		}
	}()
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.s.Fini()
}

// handle processes one event and reports whether the user asked to quit.
func (s *Screen) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyEscape:
			return true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		x, y := ev.Position()
		p := image.Pt(x, y*2)
		if p.X >= int(s.w) || p.Y >= int(s.h) {
			return false
		}
		s.mu.Lock()
		s.press = &p
		s.mu.Unlock()
	case *tcell.EventResize:
		s.s.Sync()
	}
	return false
}

func toColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
