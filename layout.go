package apstatus

import (
	"image"
)

// ControlRegion is a hit-testable area of a screen. Regions earlier in a slice are on top.
type ControlRegion struct {
	Bounds image.Rectangle
	Action Action
	Label  string
	// Selected regions are drawn inverted.
	Selected bool
	// Row marks list rows, as opposed to buttons in the right-hand column.
	Row bool
}

const (
	buttonWidth  = 60
	buttonMargin = 5
	headerHeight = 22
	// minRowHeight is one line of list text.
	minRowHeight = 12
)

// MaxVPNRows is the most VPN rows a panel of the given height can show while keeping every row tappable.
func MaxVPNRows(height int) int {
	return max(0, (height-headerHeight-2*buttonMargin)/minRowHeight)
}

// layout computes screen geometry for a panel of the given size. The right-hand column holds up to four buttons, the
// rest of the panel holds the header and text.
type layout struct {
	w, h int
}

// buttonX is where the button column starts.
func (l layout) buttonX() int { return l.w - buttonWidth - buttonMargin }

// textWidth is the width available to text left of the button column.
func (l layout) textWidth() int { return l.buttonX() - buttonMargin }

// buttons returns n button rectangles stacked in the right-hand column with equal gaps.
func (l layout) buttons(n int) []image.Rectangle {
	if n <= 0 {
		return nil
	}
	bh := 30
	if n > 3 {
		bh = 24
	}
	gap := buttonMargin
	if n > 1 {
		if rem := l.h - n*bh - 2*buttonMargin; rem > 0 {
			gap = rem / (n - 1)
		}
	}
	out := make([]image.Rectangle, n)
	y := buttonMargin
	x := l.buttonX()
	for i := range out {
		out[i] = image.Rect(x, y, x+buttonWidth, y+bh)
		y += bh + gap
	}
	return out
}

// rows returns n list row rectangles below the header, left of the button column.
func (l layout) rows(n int) []image.Rectangle {
	if n <= 0 {
		return nil
	}
	top := headerHeight + buttonMargin
	rh := (l.h - top - buttonMargin) / n
	out := make([]image.Rectangle, n)
	for i := range out {
		y := top + i*rh
		out[i] = image.Rect(buttonMargin, y, l.textWidth(), y+rh)
	}
	return out
}

type buttonSpec struct {
	label    string
	action   Action
	selected bool
}

func (l layout) buttonRegions(specs ...buttonSpec) []ControlRegion {
	rects := l.buttons(len(specs))
	out := make([]ControlRegion, len(specs))
	for i, s := range specs {
		out[i] = ControlRegion{
			Bounds:   rects[i],
			Action:   s.action,
			Label:    s.label,
			Selected: s.selected,
		}
	}
	return out
}

// HitTest returns the action of the topmost region containing p.
func HitTest(regions []ControlRegion, p image.Point) (Action, bool) {
	for _, r := range regions {
		if p.In(r.Bounds) {
			return r.Action, true
		}
	}
	return Action{}, false
}
