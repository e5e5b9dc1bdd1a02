package apstatus

import (
	"image"
	"testing"
)

func TestButtonsFitPanel(t *testing.T) {
	l := layout{w: 250, h: 122}
	panel := image.Rect(0, 0, 250, 122)
	for n := 1; n <= 4; n++ {
		bs := l.buttons(n)
		if len(bs) != n {
			t.Fatalf("expected %d buttons, got %d", n, len(bs))
		}
		for i, b := range bs {
			if !b.In(panel) {
				t.Fatalf("%d buttons: button %d %v outside panel", n, i, b)
			}
			if i > 0 && b.Overlaps(bs[i-1]) {
				t.Fatalf("%d buttons: button %d overlaps previous", n, i)
			}
		}
	}
}

func TestMaxVPNRowsStayTappable(t *testing.T) {
	for _, h := range []int{122, 200, 64} {
		n := MaxVPNRows(h)
		if n == 0 {
			continue
		}
		for i, r := range (layout{w: 250, h: h}).rows(n) {
			if r.Dy() < minRowHeight {
				t.Fatalf("height %d: row %d of %d is %dpx tall", h, i, n, r.Dy())
			}
		}
	}
	if got := MaxVPNRows(122); got != 7 {
		t.Fatalf("expected 7 rows on a 122px panel, got %d", got)
	}
	if got := MaxVPNRows(20); got != 0 {
		t.Fatalf("expected no rows on a 20px panel, got %d", got)
	}
}

func TestRowsLeftOfButtons(t *testing.T) {
	l := layout{w: 250, h: 122}
	rows := l.rows(4)
	buttons := l.buttons(4)
	for i, r := range rows {
		if r.Min.Y < headerHeight {
			t.Fatalf("row %d overlaps header: %v", i, r)
		}
		for _, b := range buttons {
			if r.Overlaps(b) {
				t.Fatalf("row %d %v overlaps button %v", i, r, b)
			}
		}
	}
}
