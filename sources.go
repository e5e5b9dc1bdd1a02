package apstatus

import (
	"context"
	"errors"
	"time"

	"github.com/ajanata/apstatus/internal/cache"
)

// TTLs configures how long each fact is cached. Zero means the fact is fetched on every access.
type TTLs struct {
	HostLink  time.Duration
	APState   time.Duration
	APSSID    time.Duration
	APClients time.Duration
	VPN       time.Duration
	System    time.Duration
	Geo       time.Duration
	// FailureGrace is how long past its TTL a value may still be served, marked degraded, while fetches fail.
	FailureGrace time.Duration
}

// DefaultTTLs are tuned for a display refreshed about once a second.
func DefaultTTLs() TTLs {
	return TTLs{
		APSSID:       10 * time.Second,
		APClients:    5 * time.Second,
		System:       5 * time.Second,
		Geo:          900 * time.Second,
		FailureGrace: 30 * time.Second,
	}
}

var errAllStatsFailed = errors.New("all system stats unavailable")

// sources holds one cache cell per fact and the policy deciding which collaborator backs which cell.
type sources struct {
	hostLink  *cache.Cell[HostLink]
	apState   *cache.Cell[bool]
	apSSID    *cache.Cell[string]
	apClients *cache.Cell[int]
	vpn       *cache.Cell[VPNStatus] // nil when no VPN collaborator is configured
	system    *cache.Cell[SystemStats]
	geo       *cache.Cell[GeoLocation]

	geoTrigger geoRefreshTrigger
}

func newSources(c Collaborators, opts Options, log Logger) *sources {
	cellOpts := func(ttl time.Duration) cache.Options {
		return cache.Options{
			TTL:      ttl,
			Grace:    opts.TTLs.FailureGrace,
			Clock:    opts.Clock,
			Observer: opts.CacheObserver,
		}
	}
	onFallback := func(source, strategy string, err error) {
		log.Debugf("%s: %s failed, falling back: %v", source, strategy, err)
	}

	s := &sources{
		hostLink: cache.New[HostLink](SourceHostLink, c.Network.HostLinkStatus, cellOpts(opts.TTLs.HostLink)),
		apState: cache.New[bool](SourceAPState, apChain(SourceAPState, c, onFallback, func(r APReader) cache.Fetcher[bool] {
			return r.APActive
		}).Fetch, cellOpts(opts.TTLs.APState)),
		apSSID: cache.New[string](SourceAPSSID, apChain(SourceAPSSID, c, onFallback, func(r APReader) cache.Fetcher[string] {
			return r.APSSID
		}).Fetch, cellOpts(opts.TTLs.APSSID)),
		apClients: cache.New[int](SourceAPClients, apChain(SourceAPClients, c, onFallback, func(r APReader) cache.Fetcher[int] {
			return r.APClientCount
		}).Fetch, cellOpts(opts.TTLs.APClients)),
		system: cache.New[SystemStats](SourceSystem, statsFetcher(c.Stats), cellOpts(opts.TTLs.System)),
		geo: cache.New[GeoLocation](SourceGeo, func(ctx context.Context) (GeoLocation, error) {
			return c.Geo.Lookup(ctx, "")
		}, cellOpts(opts.TTLs.Geo)),
	}
	if c.VPN != nil {
		s.vpn = cache.New[VPNStatus](SourceVPN, c.VPN.Status, cellOpts(opts.TTLs.VPN))
	}
	return s
}

// apChain builds the fallback order for an access point fact: the management API first when one is configured, then
// local system introspection.
func apChain[T any](source string, c Collaborators, onFallback func(string, string, error), pick func(APReader) cache.Fetcher[T]) cache.Chain[T] {
	chain := cache.Chain[T]{Source: source, OnFallback: onFallback}
	if c.API != nil {
		chain.Strategies = append(chain.Strategies, cache.Strategy[T]{Name: "api", Fetch: pick(c.API)})
	}
	chain.Strategies = append(chain.Strategies, cache.Strategy[T]{Name: "system", Fetch: pick(c.Network)})
	return chain
}

// statsFetcher combines the individual samplers. A sampler that fails contributes a zero value; the fetch as a whole
// only fails when every sampler does.
func statsFetcher(r SystemStatsReader) cache.Fetcher[SystemStats] {
	return func(ctx context.Context) (SystemStats, error) {
		var st SystemStats
		var errs []error

		temp, err := r.CPUTempC(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		st.CPUTempC = temp

		usage, err := r.CPUUsagePct(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		st.CPUUsagePct = usage

		memPct, memTotal, err := r.Memory(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		st.MemUsagePct, st.MemTotal = memPct, memTotal

		up, err := r.Uptime(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		st.Uptime = up

		if len(errs) == 4 {
			return SystemStats{}, errors.Join(append([]error{errAllStatsFailed}, errs...)...)
		}
		return st, nil
	}
}

// ap assembles the access point fact from its three cells. SSID and client count are only fetched while the AP is on.
func (s *sources) ap(ctx context.Context) cache.Entry[APStatus] {
	state := s.apState.Get(ctx)
	out := cache.Entry[APStatus]{
		Value:     APStatus{On: state.Value},
		FetchedAt: state.FetchedAt,
		TTL:       state.TTL,
		Status:    state.Status,
	}
	if state.Status == cache.StatusUnavailable || !state.Value {
		return out
	}

	ssid := s.apSSID.Get(ctx)
	clients := s.apClients.Get(ctx)
	out.Value.SSID = ssid.Value
	out.Value.Clients = clients.Value
	for _, st := range []cache.Status{ssid.Status, clients.Status} {
		if st != cache.StatusFresh && out.Status == cache.StatusFresh {
			out.Status = cache.StatusDegraded
		}
	}
	return out
}

// observeVPN feeds a VPN observation to the geolocation refresh rule, invalidating the geolocation entry when the
// rule fires.
func (s *sources) observeVPN(e cache.Entry[VPNStatus]) bool {
	if e.Status != cache.StatusFresh {
		return false
	}
	if !s.geoTrigger.Observe(e.Value) {
		return false
	}
	s.geo.Invalidate()
	return true
}

// geoRefreshTrigger fires when the VPN moves between its settled states: off to active or active to off.
// Transitional states (connecting, ending, error) are ignored, so off -> connecting -> active fires once, while
// connecting -> active with no earlier settled state does not fire. The first settled observation never fires, which
// also makes a disconnect with no prior connection a no-op.
type geoRefreshTrigger struct {
	settled VPNState
	known   bool
}

func (t *geoRefreshTrigger) Observe(v VPNStatus) bool {
	if !v.Settled() {
		return false
	}
	if !t.known {
		t.known = true
		t.settled = v.State
		return false
	}
	fired := v.State != t.settled
	t.settled = v.State
	return fired
}
