package movement

import (
	"fmt"
	"sync"

	"merge-and-wander/server/internal/game"
)

// Supervisor owns the registered movement sources and enforces that at
// most one is running. Switching always stops the previous source before
// starting the next, and mints a fresh ticket so stale callbacks can be
// told apart from live ones.
type Supervisor struct {
	mu      sync.Mutex
	sources map[game.MovementMode]Source
	active  game.MovementMode
	ticket  Ticket
}

// NewSupervisor returns a supervisor with no sources registered.
func NewSupervisor() *Supervisor {
	return &Supervisor{sources: make(map[game.MovementMode]Source)}
}

// Register binds a source to a mode. Registering over an existing mode
// replaces it; the replacement takes effect on the next switch.
func (s *Supervisor) Register(mode game.MovementMode, src Source) {
	if s == nil || src == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[mode] = src
}

// Switch stops the active source, then starts the one registered for
// mode under a fresh ticket. Unknown modes leave the current source
// running.
func (s *Supervisor) Switch(mode game.MovementMode) (Ticket, error) {
	if s == nil {
		return 0, fmt.Errorf("no movement supervisor")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.sources[mode]
	if !ok {
		return 0, fmt.Errorf("unknown movement mode %q", mode)
	}
	if current, ok := s.sources[s.active]; ok && s.active != "" {
		current.Stop()
	}
	s.ticket++
	s.active = mode
	if err := next.Start(s.ticket); err != nil {
		s.active = ""
		return 0, fmt.Errorf("start movement source %q: %w", mode, err)
	}
	return s.ticket, nil
}

// Active reports the running mode, empty when nothing runs.
func (s *Supervisor) Active() game.MovementMode {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveTicket reports the ticket of the running source. Stimuli stamped
// with any other ticket are stale.
func (s *Supervisor) ActiveTicket() Ticket {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == "" {
		return 0
	}
	return s.ticket
}

// StopAll stops whichever source runs.
func (s *Supervisor) StopAll() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.sources[s.active]; ok && s.active != "" {
		current.Stop()
	}
	s.active = ""
}
