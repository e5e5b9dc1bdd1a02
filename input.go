package apstatus

import (
	"time"

	"golang.org/x/time/rate"
)

// Reasons a touch is discarded, reported through Events.
const (
	DiscardIgnoreWindow = "ignore-window"
	DiscardCooldown     = "cooldown"
	DiscardNoRegion     = "no-region"
)

// inputDispatcher turns raw touches into actions. It applies two independent timers: a cooldown between accepted
// touches, so one press does not register as several, and an ignore window after every screen transition that
// absorbs release noise while control regions move.
type inputDispatcher struct {
	touch        Touchscreen
	cooldown     *rate.Limiter
	ignoreWindow time.Duration
	ignoreUntil  time.Time
	events       Events
}

func newInputDispatcher(touch Touchscreen, cooldown, ignoreWindow time.Duration, events Events) *inputDispatcher {
	limit := rate.Inf
	if cooldown > 0 {
		limit = rate.Every(cooldown)
	}
	return &inputDispatcher{
		touch:        touch,
		cooldown:     rate.NewLimiter(limit, 1),
		ignoreWindow: ignoreWindow,
		events:       events,
	}
}

// Poll reads the touch panel once and returns the action under the touch, if any. It never blocks.
func (d *inputDispatcher) Poll(now time.Time, regions []ControlRegion) (Action, bool) {
	p, ok := d.touch.Touch()
	if !ok {
		return Action{}, false
	}
	if now.Before(d.ignoreUntil) {
		d.events.TouchDiscarded(DiscardIgnoreWindow)
		return Action{}, false
	}
	if !d.cooldown.AllowN(now, 1) {
		d.events.TouchDiscarded(DiscardCooldown)
		return Action{}, false
	}
	a, ok := HitTest(regions, p)
	if !ok {
		d.events.TouchDiscarded(DiscardNoRegion)
		return Action{}, false
	}
	return a, true
}

// IgnoreFrom starts the post-transition ignore window at now.
func (d *inputDispatcher) IgnoreFrom(now time.Time) {
	d.ignoreUntil = now.Add(d.ignoreWindow)
}
