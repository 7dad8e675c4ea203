package persistence

import (
	"context"

	"merge-and-wander/server/logging"
)

const (
	// EventLoaded is emitted when a save blob is restored at startup.
	EventLoaded logging.EventType = "persistence.loaded"
	// EventLoadDiscarded is emitted when a blob fails validation and the
	// whole save is abandoned for defaults.
	EventLoadDiscarded logging.EventType = "persistence.load_discarded"
	// EventSaveFailed is emitted when a write to the store fails. The game
	// keeps running; only durability is lost.
	EventSaveFailed logging.EventType = "persistence.save_failed"
	// EventCleared is emitted when the save key is removed on reset.
	EventCleared logging.EventType = "persistence.cleared"
)

// LoadedPayload summarizes a restored save.
type LoadedPayload struct {
	Store     string `json:"store"`
	Overrides int    `json:"overrides"`
	Held      int    `json:"held"`
}

// LoadDiscardedPayload records why the blob was rejected.
type LoadDiscardedPayload struct {
	Store  string `json:"store"`
	Reason string `json:"reason"`
}

// SaveFailedPayload records a failed durable write.
type SaveFailedPayload struct {
	Store  string `json:"store"`
	Reason string `json:"reason"`
}

// ClearedPayload records the wiped key.
type ClearedPayload struct {
	Store string `json:"store"`
	Key   string `json:"key"`
}

// Loaded publishes a successful restore event.
func Loaded(ctx context.Context, pub logging.Publisher, seq uint64, payload LoadedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventLoaded,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// LoadDiscarded publishes a rejected-blob event.
func LoadDiscarded(ctx context.Context, pub logging.Publisher, seq uint64, payload LoadDiscardedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventLoadDiscarded,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SaveFailed publishes a failed-write event.
func SaveFailed(ctx context.Context, pub logging.Publisher, seq uint64, payload SaveFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSaveFailed,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Cleared publishes a wiped-save event.
func Cleared(ctx context.Context, pub logging.Publisher, seq uint64, payload ClearedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCleared,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
