// Package metrics provides Prometheus metrics for the status display.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajanata/apstatus"
)

// Recorder implements both the cache observer and the main cycle's event hooks.
type Recorder struct {
	reg *prometheus.Registry

	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	fetchFailures  *prometheus.CounterVec
	redraws        *prometheus.CounterVec
	actions        *prometheus.CounterVec
	touchDiscarded *prometheus.CounterVec
}

// New registers all collectors, plus the Go and process collectors, on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		cacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apstatus_cache_hits_total",
				Help: "Fact reads served from cache",
			},
			[]string{"source"},
		),
		cacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apstatus_cache_misses_total",
				Help: "Fact reads that required a fetch",
			},
			[]string{"source"},
		),
		fetchFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apstatus_fetch_failures_total",
				Help: "Failed fact fetches, after all fallbacks",
			},
			[]string{"source"},
		),
		redraws: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apstatus_redraws_total",
				Help: "Full screen redraws",
			},
			[]string{"screen"},
		),
		actions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apstatus_actions_total",
				Help: "Actions applied, by kind and outcome",
			},
			[]string{"action", "success"},
		),
		touchDiscarded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apstatus_touches_discarded_total",
				Help: "Touches that did not produce an action",
			},
			[]string{"reason"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Recorder) CacheHit(source string) { r.cacheHits.WithLabelValues(source).Inc() }

func (r *Recorder) CacheMiss(source string) { r.cacheMisses.WithLabelValues(source).Inc() }

func (r *Recorder) FetchFailed(source string, _ error) { r.fetchFailures.WithLabelValues(source).Inc() }

func (r *Recorder) Redrawn(screen apstatus.ScreenKind) {
	r.redraws.WithLabelValues(screen.String()).Inc()
}

func (r *Recorder) ActionApplied(a apstatus.Action, err error) {
	r.actions.WithLabelValues(a.Kind.String(), strconv.FormatBool(err == nil)).Inc()
}

func (r *Recorder) TouchDiscarded(reason string) { r.touchDiscarded.WithLabelValues(reason).Inc() }
