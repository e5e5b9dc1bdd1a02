package apstatus

import (
	"time"

	"github.com/ajanata/apstatus/internal/cache"
)

// Source identifiers, one per cached fact.
const (
	SourceHostLink  = "host-link"
	SourceAPState   = "ap-state"
	SourceAPSSID    = "ap-ssid"
	SourceAPClients = "ap-clients"
	SourceVPN       = "vpn"
	SourceSystem    = "system"
	SourceGeo       = "geo"
)

// LinkState is the state of the host's upstream wireless link.
type LinkState uint8

const (
	LinkDisconnected LinkState = iota
	// LinkNoIP means the interface is associated with a network but has no usable address.
	LinkNoIP
	LinkConnected
)

func (s LinkState) String() string {
	switch s {
	case LinkDisconnected:
		return "disconnected"
	case LinkNoIP:
		return "no-ip"
	case LinkConnected:
		return "connected"
	default:
		return "INVALID"
	}
}

type HostLink struct {
	State LinkState
	SSID  string
	IP    string
}

type APStatus struct {
	On      bool
	SSID    string
	Clients int
}

type VPNState uint8

const (
	VPNOff VPNState = iota
	VPNConnecting
	VPNEnding
	VPNError
	VPNActive
)

func (s VPNState) String() string {
	switch s {
	case VPNOff:
		return "off"
	case VPNConnecting:
		return "connecting"
	case VPNEnding:
		return "ending"
	case VPNError:
		return "error"
	case VPNActive:
		return "active"
	default:
		return "INVALID"
	}
}

type VPNStatus struct {
	State VPNState
	// Name is the profile the state refers to. Empty when off.
	Name string
}

// Settled reports whether the VPN is in a resting state (off or active), as opposed to a transitional or error state.
func (v VPNStatus) Settled() bool {
	return v.State == VPNOff || v.State == VPNActive
}

// Protocols a VPN profile may use.
const (
	ProtocolWireGuard = "wireguard"
	ProtocolOpenVPN   = "openvpn"
)

// VPNProfile is a configured VPN connection.
type VPNProfile struct {
	Name     string
	Server   string
	Protocol string
}

type SystemStats struct {
	CPUTempC    float64
	CPUUsagePct float64
	MemUsagePct float64
	MemTotal    uint64
	Uptime      time.Duration
}

type GeoLocation struct {
	City    string
	Country string
}

func (g GeoLocation) String() string {
	switch {
	case g.City != "" && g.Country != "":
		return g.City + ", " + g.Country
	case g.Country != "":
		return g.Country
	case g.City != "":
		return g.City
	default:
		return "Unknown"
	}
}

// Facts is the set of facts a screen is rendered from.
type Facts struct {
	HostLink cache.Entry[HostLink]
	AP       cache.Entry[APStatus]
	VPN      cache.Entry[VPNStatus]
	System   cache.Entry[SystemStats]
	Geo      cache.Entry[GeoLocation]
}
