package apstatus

import (
	"context"
	"image"
	"time"
)

// APReader reads the state of the access point. It is implemented both by the local system and by the RaspAP
// management API.
type APReader interface {
	APActive(ctx context.Context) (bool, error)
	APSSID(ctx context.Context) (string, error)
	APClientCount(ctx context.Context) (int, error)
}

// Network reads and controls the host's network interfaces through local system introspection.
type Network interface {
	APReader

	HostLinkStatus(ctx context.Context) (HostLink, error)
	// SetHostLinkEnabled brings the host link up or down. It may block while the link associates.
	SetHostLinkEnabled(ctx context.Context, enabled bool) error
}

// ManagementAPI is the optional, keyed management REST API. When configured it is preferred over Network for
// access point facts.
type ManagementAPI interface {
	APReader
}

// VPN lists, reports and controls VPN connections.
type VPN interface {
	// Profiles returns the configured VPNs in display order. An error means the list is missing or malformed.
	Profiles() ([]VPNProfile, error)
	Status(ctx context.Context) (VPNStatus, error)
	Connect(ctx context.Context, name string) error
	Disconnect(ctx context.Context) error
}

// SystemStatsReader samples host health.
type SystemStatsReader interface {
	CPUTempC(ctx context.Context) (float64, error)
	CPUUsagePct(ctx context.Context) (float64, error)
	Memory(ctx context.Context) (usedPct float64, total uint64, err error)
	Uptime(ctx context.Context) (time.Duration, error)
}

// Geolocator resolves an external IP address to a location. An empty ip means the caller's own external address.
type Geolocator interface {
	Lookup(ctx context.Context, ip string) (GeoLocation, error)
}

// Power reboots or shuts down the host. Neither call is expected to wait for completion.
type Power interface {
	Reboot(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Touchscreen returns the current touch point in UI coordinates, if the panel is being touched.
//
// This function should expect to be called at the main loop tick rate and must not block.
type Touchscreen interface {
	Touch() (image.Point, bool)
}

// Surface consumes render models. The core never touches pixels itself.
type Surface interface {
	// Draw renders a full screen.
	Draw(m RenderModel) error
	// Message replaces the screen with a short centered message, e.g. while a blocking action runs.
	Message(text string) error
}

// Events receives notifications about the main cycle, typically for metrics.
type Events interface {
	Redrawn(screen ScreenKind)
	ActionApplied(a Action, err error)
	TouchDiscarded(reason string)
}

// Collaborators bundles everything the core depends on. API and VPN are optional.
type Collaborators struct {
	Network Network
	API     ManagementAPI
	VPN     VPN
	Stats   SystemStatsReader
	Geo     Geolocator
	Power   Power
	Touch   Touchscreen
	Surface Surface
}
