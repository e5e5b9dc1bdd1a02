// Package apstatus is the control core of a touch-driven status display for a RaspAP access point: it caches the
// facts shown on screen, decides when they changed enough to redraw, and navigates between screens in response to
// debounced touches.
package apstatus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ajanata/apstatus/internal/cache"
)

// ErrHalted is returned by RunTick once a final screen has been entered.
var ErrHalted = errors.New("halted on final screen")

// Options configures App. Start from DefaultOptions.
type Options struct {
	// Tick is the main cycle period.
	Tick time.Duration
	// Refresh is how often facts are re-read when nothing else forces it.
	Refresh time.Duration
	// TouchCooldown is the minimum time between accepted touches.
	TouchCooldown time.Duration
	// IgnoreAfterTransition is how long touches are discarded after the screen changes.
	IgnoreAfterTransition time.Duration
	// StatusMessage is how long a status message, e.g. about a failed action, stays on screen.
	StatusMessage time.Duration
	// VPNItemsPerScreen is the number of VPN rows shown at once.
	VPNItemsPerScreen int
	TTLs              TTLs

	Title         string
	HostInterface string
	APInterface   string
	Width, Height int

	Clock         func() time.Time
	Logger        Logger
	CacheObserver cache.Observer
	Events        Events
}

func DefaultOptions() Options {
	return Options{
		Tick:                  100 * time.Millisecond,
		Refresh:               time.Second,
		TouchCooldown:         500 * time.Millisecond,
		IgnoreAfterTransition: time.Second,
		StatusMessage:         5 * time.Second,
		VPNItemsPerScreen:     4,
		TTLs:                  DefaultTTLs(),
		Title:                 "RaspAP",
		HostInterface:         "wlan0",
		APInterface:           "wlan1",
		Width:                 250,
		Height:                122,
	}
}

// App owns all display state. It is driven by a single goroutine calling RunTick (or Run); none of its methods are
// safe for concurrent use.
type App struct {
	opts   Options
	c      Collaborators
	log    Logger
	events Events
	now    func() time.Time

	src    *sources
	input  *inputDispatcher
	viewer *viewer

	screen      Screen
	snapshot    Facts
	rendered    RenderModel
	needsRedraw bool
	lastRefresh time.Time
	status      string
	statusUntil time.Time

	init   bool
	halted bool
}

func New(c Collaborators, opts Options) (*App, error) {
	if c.Network == nil {
		return nil, errors.New("must provide network")
	}
	if c.Stats == nil {
		return nil, errors.New("must provide system stats")
	}
	if c.Geo == nil {
		return nil, errors.New("must provide geolocator")
	}
	if c.Power == nil {
		return nil, errors.New("must provide power control")
	}
	if c.Touch == nil {
		return nil, errors.New("must provide touchscreen")
	}
	if c.Surface == nil {
		return nil, errors.New("must provide surface")
	}
	if opts.Tick <= 0 || opts.Refresh <= 0 {
		return nil, errors.New("tick and refresh must be positive")
	}
	if opts.VPNItemsPerScreen <= 0 {
		return nil, errors.New("must show at least one VPN per screen")
	}
	if n := MaxVPNRows(opts.Height); opts.VPNItemsPerScreen > n {
		return nil, fmt.Errorf("at most %d VPNs fit on one screen", n)
	}
	if opts.Width < buttonWidth+2*buttonMargin || opts.Height < headerHeight+2*buttonMargin {
		return nil, errors.New("unusably small display")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = stderrLogger{}
	}
	if opts.Events == nil {
		opts.Events = nopEvents{}
	}

	return &App{
		opts:   opts,
		c:      c,
		log:    opts.Logger,
		events: opts.Events,
		now:    opts.Clock,
		src:    newSources(c, opts, opts.Logger),
		input:  newInputDispatcher(c.Touch, opts.TouchCooldown, opts.IgnoreAfterTransition, opts.Events),
		viewer: &viewer{
			title:      opts.Title,
			hostIface:  opts.HostInterface,
			apIface:    opts.APInterface,
			layout:     layout{w: opts.Width, h: opts.Height},
			perScreen:  opts.VPNItemsPerScreen,
			vpnEnabled: c.VPN != nil,
		},
		screen: MainScreen(),
	}, nil
}

// Init loads the VPN list, forces the startup geolocation lookup and draws the main screen.
func (a *App) Init(ctx context.Context) error {
	if a.init {
		return errors.New("already initialized")
	}
	start := a.now()
	a.log.Info("starting init")
	a.message("Initializing...")

	if a.c.VPN != nil {
		profiles, err := a.c.VPN.Profiles()
		if err != nil {
			a.log.Warnf("VPN list unavailable: %v", err)
			a.viewer.profileErr = err
		}
		a.viewer.profiles = profiles
		a.log.Infof("%d VPN profiles configured", len(profiles))
	}

	// process start is one of the three moments the geolocation is refreshed regardless of TTL
	a.src.geo.Invalidate()

	a.draw(a.refresh(ctx, a.screen))
	a.lastRefresh = a.now()
	a.init = true
	a.log.Infof("init complete in %s", a.now().Sub(start).Round(100*time.Millisecond))
	return nil
}

// Run does not return until ctx is done or a final screen is entered. It runs RunTick at the configured tick.
func (a *App) Run(ctx context.Context) error {
	t := time.NewTicker(a.opts.Tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			err := a.RunTick(ctx)
			if errors.Is(err, ErrHalted) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// RunTick runs a single iteration of the main cycle: poll input, apply any resulting action, and, when due, refresh
// the facts the active screen shows and redraw if they changed.
func (a *App) RunTick(ctx context.Context) error {
	if !a.init {
		return errors.New("not initialized")
	}
	if a.halted {
		return ErrHalted
	}

	now := a.now()
	if a.status != "" && !now.Before(a.statusUntil) {
		a.status = ""
		a.needsRedraw = true
	}

	if act, ok := a.input.Poll(now, a.rendered.Regions); ok {
		a.apply(ctx, act)
		if a.halted {
			return ErrHalted
		}
	}

	if !a.needsRedraw && now.Sub(a.lastRefresh) < a.opts.Refresh {
		return nil
	}
	facts := a.refresh(ctx, a.screen)
	a.lastRefresh = now
	if a.needsRedraw || a.viewer.dirty(a.screen, a.snapshot, facts) {
		a.draw(facts)
	}
	return nil
}

// Screen returns the active screen.
func (a *App) Screen() Screen { return a.screen }

// RenderModel returns the model most recently handed to the surface.
func (a *App) RenderModel() RenderModel { return a.rendered }

// refresh reads the facts screen s shows through the cache. Facts it does not show are carried over from the last
// snapshot.
func (a *App) refresh(ctx context.Context, s Screen) Facts {
	f := a.snapshot
	showsGeo := s.Kind == ScreenMain || (s.Kind == ScreenInfo && s.Page == 2)
	// screens showing the geolocation read the VPN too, to catch the transitions that refresh it
	readsVPN := a.src.vpn != nil && (showsGeo || s.Kind == ScreenVPNList)

	switch {
	case s.Kind == ScreenMain:
		f.HostLink = a.src.hostLink.Get(ctx)
		f.AP = a.src.ap(ctx)
		f.System = a.src.system.Get(ctx)
	case s.Kind == ScreenInfo && s.Page == 1:
		f.HostLink = a.src.hostLink.Get(ctx)
		f.AP = a.src.ap(ctx)
	case s.Kind == ScreenInfo && s.Page == 2:
		f.System = a.src.system.Get(ctx)
	}
	// VPN before geolocation, since a VPN transition invalidates the geolocation
	if readsVPN {
		f.VPN = a.src.vpn.Get(ctx)
		if a.src.observeVPN(f.VPN) {
			a.log.Infof("VPN now %s, refreshing geolocation", f.VPN.Value.State)
		}
	}
	if showsGeo {
		f.Geo = a.src.geo.Get(ctx)
	}
	return f
}

func (a *App) draw(f Facts) {
	m := a.viewer.model(a.screen, f)
	m.Status = a.status
	if err := a.c.Surface.Draw(m); err != nil {
		// leave needsRedraw set so the next tick tries again
		a.log.Warnf("draw %s: %v", a.screen, err)
		a.needsRedraw = true
		a.rendered = m
		return
	}
	a.rendered = m
	a.snapshot = f
	a.needsRedraw = false
	a.events.Redrawn(a.screen.Kind)
}

func (a *App) message(text string) {
	if err := a.c.Surface.Message(text); err != nil {
		a.log.Warnf("message %q: %v", text, err)
	}
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusUntil = a.now().Add(a.opts.StatusMessage)
	a.needsRedraw = true
}

func (a *App) transitionEnv() transitionEnv {
	env := transitionEnv{
		vpnEnabled: a.c.VPN != nil,
		vpnCount:   len(a.viewer.profiles),
		perScreen:  a.opts.VPNItemsPerScreen,
		activeVPN:  -1,
	}
	if v := a.snapshot.VPN; v.Status != cache.StatusUnavailable && v.Value.State == VPNActive {
		env.activeVPN = slices.IndexFunc(a.viewer.profiles, func(p VPNProfile) bool { return p.Name == v.Value.Name })
	}
	return env
}

// enter makes s the active screen. Entering a screen always forces a redraw and starts the input ignore window.
func (a *App) enter(s Screen) {
	a.log.Debugf("screen %s -> %s", a.screen, s)
	a.screen = s
	a.needsRedraw = true
	a.input.IgnoreFrom(a.now())
}
