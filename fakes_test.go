package apstatus

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

var errFake = errors.New("fake failure")

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// callLog records the order of side effects across fakes.
type callLog []string

func (l *callLog) add(s string) { *l = append(*l, s) }

type fakeNetwork struct {
	link      HostLink
	linkErr   error
	linkCalls int

	apOn    bool
	ssid    string
	clients int
	apErr   error

	setCalls []bool
	setErr   error
}

func (n *fakeNetwork) APActive(context.Context) (bool, error) { return n.apOn, n.apErr }

func (n *fakeNetwork) APSSID(context.Context) (string, error) { return n.ssid, n.apErr }

func (n *fakeNetwork) APClientCount(context.Context) (int, error) { return n.clients, n.apErr }

func (n *fakeNetwork) HostLinkStatus(context.Context) (HostLink, error) {
	n.linkCalls++
	return n.link, n.linkErr
}

func (n *fakeNetwork) SetHostLinkEnabled(_ context.Context, enabled bool) error {
	n.setCalls = append(n.setCalls, enabled)
	return n.setErr
}

type fakeVPN struct {
	profiles    []VPNProfile
	profilesErr error
	status      VPNStatus
	statusErr   error
	connectErr  error
	connected   []string
	disconnects int
}

func (v *fakeVPN) Profiles() ([]VPNProfile, error) { return v.profiles, v.profilesErr }

func (v *fakeVPN) Status(context.Context) (VPNStatus, error) { return v.status, v.statusErr }

func (v *fakeVPN) Connect(_ context.Context, name string) error {
	v.connected = append(v.connected, name)
	return v.connectErr
}

func (v *fakeVPN) Disconnect(context.Context) error {
	v.disconnects++
	return nil
}

type fakeStats struct {
	temp  float64
	err   error
	calls int
}

func (s *fakeStats) CPUTempC(context.Context) (float64, error) {
	s.calls++
	return s.temp, s.err
}

func (s *fakeStats) CPUUsagePct(context.Context) (float64, error) { return 12.5, s.err }

func (s *fakeStats) Memory(context.Context) (float64, uint64, error) { return 40, 1 << 30, s.err }

func (s *fakeStats) Uptime(context.Context) (time.Duration, error) { return 26 * time.Hour, s.err }

type fakeGeo struct {
	loc   GeoLocation
	calls int
}

func (g *fakeGeo) Lookup(context.Context, string) (GeoLocation, error) {
	g.calls++
	return g.loc, nil
}

type fakePower struct {
	log       *callLog
	reboots   int
	shutdowns int
	err       error
}

func (p *fakePower) Reboot(context.Context) error {
	p.reboots++
	p.log.add("reboot")
	return p.err
}

func (p *fakePower) Shutdown(context.Context) error {
	p.shutdowns++
	p.log.add("shutdown")
	return p.err
}

// fakeTouch reports each press exactly once.
type fakeTouch struct {
	p       image.Point
	pressed bool
}

func (t *fakeTouch) Touch() (image.Point, bool) {
	if !t.pressed {
		return image.Point{}, false
	}
	t.pressed = false
	return t.p, true
}

func (t *fakeTouch) press(p image.Point) {
	t.p = p
	t.pressed = true
}

type fakeSurface struct {
	log      *callLog
	draws    []RenderModel
	messages []string
}

func (s *fakeSurface) Draw(m RenderModel) error {
	s.draws = append(s.draws, m)
	s.log.add("draw:" + m.Screen.Kind.String())
	return nil
}

func (s *fakeSurface) Message(text string) error {
	s.messages = append(s.messages, text)
	s.log.add("message:" + text)
	return nil
}

type recordingEvents struct {
	discarded []string
	applied   []Action
	errs      []error
}

func (e *recordingEvents) Redrawn(ScreenKind) {}

func (e *recordingEvents) ActionApplied(a Action, err error) {
	e.applied = append(e.applied, a)
	e.errs = append(e.errs, err)
}

func (e *recordingEvents) TouchDiscarded(reason string) { e.discarded = append(e.discarded, reason) }

type nopLogger struct{}

func (nopLogger) Debug(string)          {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Info(string)           {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

type harness struct {
	app     *App
	clock   *fakeClock
	log     *callLog
	net     *fakeNetwork
	vpn     *fakeVPN
	stats   *fakeStats
	geo     *fakeGeo
	power   *fakePower
	touch   *fakeTouch
	surface *fakeSurface
	events  *recordingEvents
}

// newHarness builds an initialized App over fakes describing an idle host: link down, hotspot off, VPN off, CPU at
// 42°C.
func newHarness(t *testing.T, profiles []VPNProfile, mods ...func(*Collaborators)) *harness {
	t.Helper()
	log := &callLog{}
	h := &harness{
		clock:   &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		log:     log,
		net:     &fakeNetwork{},
		vpn:     &fakeVPN{profiles: profiles, status: VPNStatus{State: VPNOff}},
		stats:   &fakeStats{temp: 42.0},
		geo:     &fakeGeo{loc: GeoLocation{City: "Berlin", Country: "Germany"}},
		power:   &fakePower{log: log},
		touch:   &fakeTouch{},
		surface: &fakeSurface{log: log},
		events:  &recordingEvents{},
	}

	opts := DefaultOptions()
	opts.Clock = h.clock.Now
	opts.Logger = nopLogger{}
	opts.Events = h.events

	c := Collaborators{
		Network: h.net,
		VPN:     h.vpn,
		Stats:   h.stats,
		Geo:     h.geo,
		Power:   h.power,
		Touch:   h.touch,
		Surface: h.surface,
	}
	for _, m := range mods {
		m(&c)
	}
	app, err := New(c, opts)
	if err != nil {
		t.Fatalf("unable to create app: %v", err)
	}
	if err := app.Init(context.Background()); err != nil {
		t.Fatalf("unable to init: %v", err)
	}
	h.app = app
	return h
}

// tap presses the center of the region with the given label and runs one tick.
func (h *harness) tap(t *testing.T, label string) error {
	t.Helper()
	for _, r := range h.app.RenderModel().Regions {
		if r.Label == label {
			c := r.Bounds.Min.Add(r.Bounds.Max).Div(2)
			h.touch.press(c)
			return h.app.RunTick(context.Background())
		}
	}
	t.Fatalf("no region labelled %q on %s", label, h.app.Screen())
	return nil
}

// settle moves past the ignore window and cooldown.
func (h *harness) settle() {
	h.clock.Advance(2 * time.Second)
}

func (h *harness) tick(t *testing.T) {
	t.Helper()
	if err := h.app.RunTick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
}

func sixProfiles() []VPNProfile {
	return []VPNProfile{
		{Name: "home"}, {Name: "office"}, {Name: "nl-ams"}, {Name: "de-fra"}, {Name: "us-nyc"}, {Name: "jp-tyo"},
	}
}
