package movement

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"merge-and-wander/server/internal/grid"
)

// FeedFunc receives one raw position fix from a live-location source.
type FeedFunc func(t Ticket, p grid.LatLng)

// DefaultPositionRate caps how many position fixes per second reach the
// engine. Device feeds burst far faster than a cell-granular game needs.
const DefaultPositionRate = 2.0

// LiveLocation follows an external position stream. Fixes are throttled
// through a token bucket before they reach the engine; the stream
// frequency is the device's business, not the game's.
type LiveLocation struct {
	mu      sync.Mutex
	forward FeedFunc
	limiter *rate.Limiter
	now     func() time.Time
	ticket  Ticket
	started bool
}

var _ Source = (*LiveLocation)(nil)

// NewLiveLocation builds a live source forwarding at most perSecond fixes
// with the given burst headroom.
func NewLiveLocation(forward FeedFunc, perSecond float64, burst int) *LiveLocation {
	if perSecond <= 0 {
		perSecond = DefaultPositionRate
	}
	if burst < 1 {
		burst = 1
	}
	return &LiveLocation{
		forward: forward,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		now:     time.Now,
	}
}

// Start begins forwarding fixes under the given ticket.
func (l *LiveLocation) Start(t Ticket) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticket = t
	l.started = true
	return nil
}

// Stop ends forwarding.
func (l *LiveLocation) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = false
}

// Name satisfies Source.
func (l *LiveLocation) Name() string { return "live" }

// Feed offers one position fix. It reports whether the fix was forwarded;
// stopped sources and throttled fixes are dropped.
func (l *LiveLocation) Feed(p grid.LatLng) bool {
	if l == nil || l.forward == nil {
		return false
	}
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return false
	}
	ticket := l.ticket
	allowed := l.limiter.AllowN(l.now(), 1)
	l.mu.Unlock()
	if !allowed {
		return false
	}
	l.forward(ticket, p)
	return true
}
