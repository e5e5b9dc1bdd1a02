// Package render draws render models onto a tinygo display.
package render

import (
	"image"
	"image/color"
	"strings"

	"github.com/ajanata/textbuf"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/ajanata/apstatus"
	"github.com/ajanata/apstatus/internal/media"
)

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

const (
	margin     = 5
	titleX     = 24
	titleY     = 15
	firstLineY = 34
	lineHeight = 12
	statusH    = 14
)

var font = &proggy.TinySZ8pt7b

// Panel implements apstatus.Surface on top of a drivers.Displayer.
type Panel struct {
	// Title heads transient messages.
	Title string

	d    drivers.Displayer
	held *heldDisplay
	text *textbuf.Buffer
	logo image.Image
	w, h int16
}

func New(d drivers.Displayer) (*Panel, error) {
	logo, err := media.LoadImage(media.TypeLogo, media.Logo)
	if err != nil {
		return nil, err
	}
	// textbuf clears, and so flushes, on creation
	held := &heldDisplay{Displayer: d, hold: true}
	text, err := textbuf.New(held, textbuf.FontSize6x8)
	if err != nil {
		return nil, err
	}
	held.hold = false
	w, h := d.Size()
	return &Panel{
		Title: "RaspAP",
		d:     d,
		held:  held,
		text:  text,
		logo:  logo,
		w:     w,
		h:     h,
	}, nil
}

func (p *Panel) Draw(m apstatus.RenderModel) error {
	if err := tinydraw.FilledRectangle(p.d, 0, 0, p.w, p.h, white); err != nil {
		return err
	}

	if !m.Screen.Final() {
		drawImage(p.d, margin, 3, p.logo)
		p.heading(titleX, titleY, m.Title)
	}

	y := int16(firstLineY)
	if m.Screen.Final() {
		y = p.h/2 - lineHeight/2
	}
	for _, l := range m.Lines {
		if l.Heading {
			p.heading(margin, y, l.Text)
		} else {
			tinyfont.WriteLine(p.d, font, margin, y, l.Text, black)
		}
		y += lineHeight
	}

	for _, r := range m.Regions {
		if err := p.region(r); err != nil {
			return err
		}
	}

	switch {
	case m.Status != "":
		sw := p.w
		if len(m.Regions) > 0 {
			sw = int16(m.Regions[0].Bounds.Min.X - margin)
		}
		if err := tinydraw.FilledRectangle(p.d, 0, p.h-statusH, sw, statusH, black); err != nil {
			return err
		}
		tinyfont.WriteLine(p.d, font, margin, p.h-4, m.Status, white)
	case m.Footer != "":
		tinyfont.WriteLine(p.d, font, margin, p.h-4, m.Footer, black)
	}

	return p.d.Display()
}

// heading draws text double-struck so it stands out from body text.
func (p *Panel) heading(x, y int16, s string) {
	tinyfont.WriteLine(p.d, font, x, y, s, black)
	tinyfont.WriteLine(p.d, font, x+1, y, s, black)
}

func (p *Panel) region(r apstatus.ControlRegion) error {
	b := r.Bounds
	x, y := int16(b.Min.X), int16(b.Min.Y)
	w, h := int16(b.Dx()), int16(b.Dy())

	fg := black
	var err error
	switch {
	case r.Selected:
		err = tinydraw.FilledRectangle(p.d, x, y, w, h, black)
		fg = white
	case r.Row:
		// unselected rows are plain text
	default:
		err = tinydraw.Rectangle(p.d, x, y, w, h, black)
	}
	if err != nil {
		return err
	}

	tx := x + 3
	if !r.Row {
		_, lw := tinyfont.LineWidth(font, r.Label)
		tx = x + (w-int16(lw))/2
	}
	tinyfont.WriteLine(p.d, font, tx, y+h/2+4, r.Label, fg)
	return nil
}

// Message clears the panel and shows text centered under an inverted title bar. The panel is flushed once, after the
// whole message is drawn.
func (p *Panel) Message(text string) error {
	p.held.hold = true
	w, h := p.text.Size()
	err := p.text.Clear()
	if err == nil {
		err = p.text.SetLineInverse(0, center(p.Title, int(w)))
	}
	if err == nil {
		err = p.text.SetLine(h/2, center(text, int(w)))
	}
	p.held.hold = false
	if err != nil {
		return err
	}
	return p.d.Display()
}

// heldDisplay passes pixels through but swallows Display calls while hold is set. textbuf flushes after every
// change; this lets a message go out as a single frame.
type heldDisplay struct {
	drivers.Displayer
	hold bool
}

func (d *heldDisplay) Display() error {
	if d.hold {
		return nil
	}
	return d.Displayer.Display()
}

func center(s string, w int) string {
	if pad := (w - len(s)) / 2; pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}
