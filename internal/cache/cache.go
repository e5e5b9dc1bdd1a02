// Package cache memoizes slow-changing facts with an independent time-to-live per source.
package cache

import (
	"context"
	"sync"
	"time"
)

// Status describes how trustworthy an Entry is.
type Status uint8

const (
	// StatusUnavailable is the sentinel returned when no value has ever been fetched successfully, or the last good
	// value has aged out of the failure grace window. The Entry's Value is the zero value.
	StatusUnavailable Status = iota
	// StatusFresh means the value was fetched within its TTL.
	StatusFresh
	// StatusDegraded means the latest fetch failed and the last known value is being served instead.
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusUnavailable:
		return "unavailable"
	case StatusFresh:
		return "fresh"
	case StatusDegraded:
		return "degraded"
	default:
		return "INVALID"
	}
}

// Entry is a cached value along with the time it was fetched.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
	TTL       time.Duration
	Status    Status
}

// Fresh reports whether the entry may be served at now without refetching.
func (e Entry[T]) Fresh(now time.Time) bool {
	return !e.FetchedAt.IsZero() && now.Sub(e.FetchedAt) < e.TTL
}

// Fetcher retrieves a new value from the backing source.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Observer is notified about cache activity. Implementations must be cheap; they are called with the cell locked.
type Observer interface {
	CacheHit(source string)
	CacheMiss(source string)
	FetchFailed(source string, err error)
}

// Options configures a Cell.
type Options struct {
	// TTL is how long a fetched value is served without refetching. Zero disables caching entirely.
	TTL time.Duration
	// Grace is how long past TTL the last good value may still be served (as degraded) when fetches fail.
	Grace time.Duration
	// Clock defaults to time.Now.
	Clock    func() time.Time
	Observer Observer
}

// Cell caches the value of a single source.
type Cell[T any] struct {
	mu     sync.Mutex
	source string
	ttl    time.Duration
	grace  time.Duration
	fetch  Fetcher[T]
	now    func() time.Time
	obs    Observer

	entry       Entry[T]
	have        bool
	lastSuccess time.Time
}

// New creates a cell for source that fetches through fetch.
func New[T any](source string, fetch Fetcher[T], opts Options) *Cell[T] {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Cell[T]{
		source: source,
		ttl:    opts.TTL,
		grace:  opts.Grace,
		fetch:  fetch,
		now:    opts.Clock,
		obs:    opts.Observer,
	}
}

// Get returns the cached value if it is fresh, fetching a new one otherwise. The lock is held across the fetch so at
// most one fetch per source is in flight.
func (c *Cell[T]) Get(ctx context.Context) Entry[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.have && c.entry.Fresh(now) {
		if c.obs != nil {
			c.obs.CacheHit(c.source)
		}
		return c.entry
	}
	if c.obs != nil {
		c.obs.CacheMiss(c.source)
	}

	v, err := c.fetch(ctx)
	if err == nil {
		c.entry = Entry[T]{
			Value:     v,
			FetchedAt: now,
			TTL:       c.ttl,
			Status:    StatusFresh,
		}
		c.have = true
		c.lastSuccess = now
		return c.entry
	}

	if c.obs != nil {
		c.obs.FetchFailed(c.source, err)
	}
	// failures never advance FetchedAt, so the next Get retries
	if c.have && now.Sub(c.lastSuccess) < c.ttl+c.grace {
		e := c.entry
		e.FetchedAt = c.lastSuccess
		e.Status = StatusDegraded
		return e
	}
	return Entry[T]{TTL: c.ttl, Status: StatusUnavailable}
}

// Peek returns the last stored entry without fetching. The second return value is false if nothing was ever fetched.
func (c *Cell[T]) Peek() (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry, c.have
}

// Invalidate forces the next Get to fetch, regardless of TTL. The last value is kept for failure fallback.
func (c *Cell[T]) Invalidate() {
	c.mu.Lock()
	c.entry.FetchedAt = time.Time{}
	c.mu.Unlock()
}
