package apstatus

import (
	"image"
	"slices"
	"testing"
	"time"
)

// heldTouch reports a touch on every read, like a finger resting on the panel.
type heldTouch struct {
	p image.Point
}

func (t heldTouch) Touch() (image.Point, bool) { return t.p, true }

var testRegions = []ControlRegion{
	{Bounds: image.Rect(0, 0, 10, 10), Action: Action{Kind: ActionBack}},
	{Bounds: image.Rect(5, 5, 20, 20), Action: Action{Kind: ActionReboot}},
}

func TestPollDebounces(t *testing.T) {
	ev := &recordingEvents{}
	d := newInputDispatcher(heldTouch{image.Pt(2, 2)}, 500*time.Millisecond, time.Second, ev)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, ok := d.Poll(t0, testRegions); !ok {
		t.Fatal("expected first touch to be accepted")
	}
	if _, ok := d.Poll(t0.Add(10*time.Millisecond), testRegions); ok {
		t.Fatal("expected touch within cooldown to be discarded")
	}
	if _, ok := d.Poll(t0.Add(510*time.Millisecond), testRegions); !ok {
		t.Fatal("expected touch after cooldown to be accepted")
	}
	if !slices.Equal(ev.discarded, []string{DiscardCooldown}) {
		t.Fatalf("expected one cooldown discard, got %q", ev.discarded)
	}
}

func TestPollIgnoreWindow(t *testing.T) {
	ev := &recordingEvents{}
	d := newInputDispatcher(heldTouch{image.Pt(2, 2)}, 0, time.Second, ev)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	d.IgnoreFrom(t0)
	if _, ok := d.Poll(t0.Add(999*time.Millisecond), testRegions); ok {
		t.Fatal("expected touch inside ignore window to be discarded")
	}
	if _, ok := d.Poll(t0.Add(time.Second), testRegions); !ok {
		t.Fatal("expected touch at end of ignore window to be accepted")
	}
	if !slices.Equal(ev.discarded, []string{DiscardIgnoreWindow}) {
		t.Fatalf("expected one ignore-window discard, got %q", ev.discarded)
	}
}

func TestPollHitTestOrder(t *testing.T) {
	tests := []struct {
		p    image.Point
		want Action
		ok   bool
	}{
		{image.Pt(2, 2), Action{Kind: ActionBack}, true},
		// overlap: the earlier region wins
		{image.Pt(7, 7), Action{Kind: ActionBack}, true},
		{image.Pt(15, 15), Action{Kind: ActionReboot}, true},
		// rectangles are half-open
		{image.Pt(20, 20), Action{}, false},
		{image.Pt(100, 100), Action{}, false},
	}
	for _, tt := range tests {
		ev := &recordingEvents{}
		d := newInputDispatcher(heldTouch{tt.p}, 0, 0, ev)
		got, ok := d.Poll(time.Now(), testRegions)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("%v: expected %s/%t, got %s/%t", tt.p, tt.want, tt.ok, got, ok)
		}
		if !ok && !slices.Equal(ev.discarded, []string{DiscardNoRegion}) {
			t.Fatalf("%v: expected no-region discard, got %q", tt.p, ev.discarded)
		}
	}
}

func TestPollWithoutTouch(t *testing.T) {
	d := newInputDispatcher(&fakeTouch{}, 0, 0, &recordingEvents{})
	if _, ok := d.Poll(time.Now(), testRegions); ok {
		t.Fatal("expected no action without a touch")
	}
}
