package movement

// Ticket identifies one activation of a movement source. Every stimulus a
// source forwards carries the ticket it was started under; the session
// discards stimuli whose ticket is no longer the active one. That keeps
// the stop guarantee airtight even for callbacks already in flight when
// Stop ran.
type Ticket uint64

// Source is a pluggable origin of movement stimuli. Start hands the source
// the ticket to stamp on everything it forwards; after Stop returns the
// source must not forward anything new.
type Source interface {
	Start(t Ticket) error
	Stop()
	Name() string
}
