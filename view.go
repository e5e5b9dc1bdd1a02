package apstatus

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ajanata/apstatus/internal/cache"
)

// Line is one line of screen text.
type Line struct {
	Text string
	// Heading lines are drawn in the larger font.
	Heading bool
}

// RenderModel is everything a Surface needs to draw a screen.
type RenderModel struct {
	Screen  Screen
	Facts   Facts
	Title   string
	Lines   []Line
	Footer  string
	Regions []ControlRegion
	// Status is a transient message, e.g. about a failed action.
	Status string
}

const (
	mainSSIDLen = 20
	mainGeoLen  = 20
	infoSSIDLen = 16
	infoGeoLen  = 22
	notAvail    = "N/A"
)

// viewer turns facts into render models. It holds everything besides the screen and facts that affects what is
// drawn, so two calls with equal arguments produce equal models.
type viewer struct {
	title      string
	hostIface  string
	apIface    string
	layout     layout
	perScreen  int
	vpnEnabled bool
	profiles   []VPNProfile
	profileErr error
}

func (v *viewer) model(s Screen, f Facts) RenderModel {
	m := RenderModel{
		Screen: s,
		Facts:  f,
		Title:  v.title,
	}
	switch s.Kind {
	case ScreenMain:
		v.mainView(&m)
	case ScreenInfo:
		v.infoView(&m)
	case ScreenSystem:
		m.Lines = []Line{{Text: "System Menu:", Heading: true}}
		m.Regions = v.layout.buttonRegions(
			buttonSpec{label: "REBOOT", action: Action{Kind: ActionReboot}},
			buttonSpec{label: "SHUTDOWN", action: Action{Kind: ActionShutdown}},
			buttonSpec{label: "BACK", action: Action{Kind: ActionBack}},
		)
	case ScreenVPNList:
		v.vpnView(&m)
	case ScreenFinalReboot:
		m.Lines = []Line{{Text: v.title, Heading: true}, {Text: "Rebooting", Heading: true}}
	case ScreenFinalShutdown:
		m.Lines = []Line{{Text: v.title, Heading: true}, {Text: "Powered Off", Heading: true}}
	}
	return m
}

// dirty reports whether new differs from old in anything screen s displays. Comparison happens on the rendered text,
// so numbers are compared at the precision they are displayed with and facts the screen does not show are ignored.
func (v *viewer) dirty(s Screen, old, new Facts) bool {
	a, b := v.model(s, old), v.model(s, new)
	return !slices.Equal(a.Lines, b.Lines) || a.Footer != b.Footer || !slices.Equal(a.Regions, b.Regions)
}

func (v *viewer) mainView(m *RenderModel) {
	f := m.Facts
	link := f.HostLink.Value
	connected := f.HostLink.Status != cache.StatusUnavailable && link.State == LinkConnected

	var net string
	switch {
	case f.HostLink.Status == cache.StatusUnavailable:
		net = "Net: " + notAvail
	case link.State == LinkConnected:
		ssid := truncate(link.SSID, mainSSIDLen)
		if ssid == "" {
			ssid = "Connecting..."
		}
		net = "Net: " + ssid
	case link.State == LinkNoIP:
		net = "Net: No IP"
	default:
		net = "Net: Disconnected"
	}

	var ap string
	switch {
	case f.AP.Status == cache.StatusUnavailable:
		ap = "Hotspot: " + notAvail
	case f.AP.Value.On:
		ap = "Clients: " + strconv.Itoa(f.AP.Value.Clients)
	default:
		ap = "Hotspot Off"
	}

	m.Lines = []Line{
		{Text: net + marker(f.HostLink.Status), Heading: true},
		{Text: ap + marker(f.AP.Status), Heading: true},
	}
	if v.vpnEnabled {
		m.Lines = append(m.Lines, Line{Text: "VPN: " + vpnText(f.VPN) + marker(f.VPN.Status)})
	}
	m.Lines = append(m.Lines,
		Line{Text: "CPU Temp: " + statText(f.System, func(s SystemStats) string {
			return strconv.FormatFloat(s.CPUTempC, 'f', 0, 64) + "°C"
		})},
		Line{Text: "GeoIP: " + geoText(f.Geo, mainGeoLen)},
	)

	netLabel := "NET OFF"
	if connected {
		netLabel = "NET ON"
	}
	specs := []buttonSpec{
		{label: netLabel, action: Action{Kind: ActionToggleHostLink}, selected: !connected},
		{label: "SYSTEM", action: GoTo(ScreenSystem)},
		{label: "INFO", action: GoTo(ScreenInfo)},
	}
	if v.vpnEnabled {
		specs = append(specs, buttonSpec{label: "VPN", action: GoTo(ScreenVPNList)})
	}
	m.Regions = v.layout.buttonRegions(specs...)
}

func (v *viewer) infoView(m *RenderModel) {
	f := m.Facts
	switch m.Screen.Page {
	case 1:
		link := f.HostLink.Value
		network, ip := "Not Connected", notAvail
		if f.HostLink.Status == cache.StatusUnavailable {
			network = notAvail
		} else {
			if link.SSID != "" {
				network = link.SSID
			}
			if link.IP != "" {
				ip = link.IP
			}
		}
		m.Lines = []Line{
			{Text: "Host Connection (" + v.hostIface + "):", Heading: true},
			{Text: "  Network: " + network + marker(f.HostLink.Status)},
			{Text: "  IP: " + ip},
			{Text: "AP Hotspot (" + v.apIface + "):", Heading: true},
		}
		switch {
		case f.AP.Status == cache.StatusUnavailable:
			m.Lines = append(m.Lines, Line{Text: "  Status: " + notAvail})
		case f.AP.Value.On:
			ssid := truncate(f.AP.Value.SSID, infoSSIDLen)
			if ssid == "" {
				ssid = notAvail
			}
			m.Lines = append(m.Lines,
				Line{Text: "  Status: ON" + marker(f.AP.Status)},
				Line{Text: "  SSID: " + ssid},
				Line{Text: "  Clients: " + strconv.Itoa(f.AP.Value.Clients)},
			)
		default:
			m.Lines = append(m.Lines, Line{Text: "  Status: OFF" + marker(f.AP.Status)})
		}
	case 2:
		m.Lines = []Line{
			{Text: "CPU: " + statText(f.System, func(s SystemStats) string { return pct(s.CPUUsagePct) })},
			{Text: "CPU Temp: " + statText(f.System, func(s SystemStats) string {
				return strconv.FormatFloat(s.CPUTempC, 'f', 1, 64) + "°C"
			})},
			{Text: "Memory: " + statText(f.System, func(s SystemStats) string {
				if s.MemTotal == 0 {
					return pct(s.MemUsagePct)
				}
				return pct(s.MemUsagePct) + " of " + humanize.Bytes(s.MemTotal)
			})},
			{Text: "Uptime: " + statText(f.System, func(s SystemStats) string { return formatUptime(s.Uptime) })},
			{Text: "GeoIP: " + geoText(f.Geo, infoGeoLen)},
		}
	}
	m.Footer = fmt.Sprintf("Page %d/%d", m.Screen.Page, infoPages)
	m.Regions = v.layout.buttonRegions(
		buttonSpec{label: "PREV", action: Action{Kind: ActionPagePrev}, selected: m.Screen.Page == 1},
		buttonSpec{label: "NEXT", action: Action{Kind: ActionPageNext}, selected: m.Screen.Page == infoPages},
		buttonSpec{label: "BACK", action: Action{Kind: ActionBack}},
	)
}

func (v *viewer) vpnView(m *RenderModel) {
	f := m.Facts
	s := m.Screen
	active := f.VPN.Status != cache.StatusUnavailable && f.VPN.Value.State == VPNActive

	m.Lines = []Line{{Text: "VPN: " + vpnText(f.VPN) + marker(f.VPN.Status), Heading: true}}

	specs := []buttonSpec{
		{label: "UP", action: Action{Kind: ActionPagePrev}, selected: s.Scroll == 0},
		{label: "DOWN", action: Action{Kind: ActionPageNext}, selected: s.Scroll >= maxScroll(len(v.profiles), v.perScreen)},
		{label: "BACK", action: Action{Kind: ActionBack}},
	}
	if active {
		specs = append(specs, buttonSpec{label: "DISC", action: Action{Kind: ActionDisconnectVPN}})
	}
	m.Regions = v.layout.buttonRegions(specs...)

	switch {
	case v.profileErr != nil:
		m.Lines = append(m.Lines, Line{Text: "VPN list unavailable"})
		return
	case len(v.profiles) == 0:
		m.Lines = append(m.Lines, Line{Text: "No VPNs configured"})
		return
	}

	rows := v.layout.rows(v.perScreen)
	for i := 0; i < v.perScreen && s.Scroll+i < len(v.profiles); i++ {
		idx := s.Scroll + i
		p := v.profiles[idx]
		label := p.Name
		if active && f.VPN.Value.Name == p.Name {
			label = "* " + label
		}
		m.Regions = append(m.Regions, ControlRegion{
			Bounds:   rows[i],
			Action:   SelectVPN(idx),
			Label:    label,
			Selected: idx == s.Selected,
			Row:      true,
		})
	}
	last := min(s.Scroll+v.perScreen, len(v.profiles))
	m.Footer = fmt.Sprintf("%d-%d of %d", s.Scroll+1, last, len(v.profiles))
}

func vpnText(e cache.Entry[VPNStatus]) string {
	if e.Status == cache.StatusUnavailable {
		return notAvail
	}
	switch e.Value.State {
	case VPNActive:
		return e.Value.Name
	case VPNConnecting:
		return "Connecting"
	case VPNEnding:
		return "Ending"
	case VPNError:
		return "Error"
	default:
		return "Off"
	}
}

func statText(e cache.Entry[SystemStats], f func(SystemStats) string) string {
	if e.Status == cache.StatusUnavailable {
		return notAvail
	}
	return f(e.Value) + marker(e.Status)
}

func geoText(e cache.Entry[GeoLocation], n int) string {
	if e.Status == cache.StatusUnavailable {
		return "Unknown"
	}
	return ellipsize(e.Value.String(), n)
}

// marker flags values served from a stale cache entry.
func marker(s cache.Status) string {
	if s == cache.StatusDegraded {
		return " *"
	}
	return ""
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ellipsize(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
}

func maxScroll(n, perScreen int) int {
	return max(0, n-perScreen)
}
