package movement

import "sync"

// StepFunc receives one relative step from a buttons source.
type StepFunc func(t Ticket, di, dj int)

// Buttons turns directional presses into single-cell steps. Presses while
// the source is stopped are swallowed.
type Buttons struct {
	mu      sync.Mutex
	step    StepFunc
	ticket  Ticket
	started bool
}

var _ Source = (*Buttons)(nil)

// NewButtons builds a buttons source forwarding into step.
func NewButtons(step StepFunc) *Buttons {
	return &Buttons{step: step}
}

// Start begins forwarding presses under the given ticket.
func (b *Buttons) Start(t Ticket) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticket = t
	b.started = true
	return nil
}

// Stop ends forwarding. Presses racing with Stop may still reach the
// session, stamped with a ticket the session no longer honors.
func (b *Buttons) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = false
}

// Name satisfies Source.
func (b *Buttons) Name() string { return "buttons" }

// Press forwards one step. It reports whether the press was forwarded.
func (b *Buttons) Press(di, dj int) bool {
	if b == nil || b.step == nil {
		return false
	}
	b.mu.Lock()
	started, ticket := b.started, b.ticket
	b.mu.Unlock()
	if !started {
		return false
	}
	b.step(ticket, di, dj)
	return true
}
