package gameplay

import (
	"context"

	"merge-and-wander/server/logging"
)

const (
	// EventPickup is emitted when the player lifts a token off a cell.
	EventPickup logging.EventType = "gameplay.pickup"
	// EventPlace is emitted when the player sets the held token down on an empty cell.
	EventPlace logging.EventType = "gameplay.place"
	// EventCraft is emitted when two equal tokens combine into one of double value.
	EventCraft logging.EventType = "gameplay.craft"
	// EventWin is emitted once when the held value reaches the win target.
	EventWin logging.EventType = "gameplay.win"
	// EventRejected is emitted when a click is refused without changing state.
	EventRejected logging.EventType = "gameplay.rejected"
	// EventReset is emitted when the whole game is wiped back to defaults.
	EventReset logging.EventType = "gameplay.reset"
)

// PickupPayload describes the cell and value the player picked up.
type PickupPayload struct {
	Cell  string `json:"cell"`
	Value int    `json:"value"`
}

// PlacePayload describes the cell and value the player set down.
type PlacePayload struct {
	Cell  string `json:"cell"`
	Value int    `json:"value"`
}

// CraftPayload describes a merge of two equal tokens.
type CraftPayload struct {
	Cell     string `json:"cell"`
	Combined int    `json:"combined"`
}

// WinPayload records the winning held value against the configured target.
type WinPayload struct {
	Held   int `json:"held"`
	Target int `json:"target"`
}

// RejectedPayload explains why a click changed nothing.
type RejectedPayload struct {
	Cell   string `json:"cell,omitempty"`
	Reason string `json:"reason"`
}

// ResetPayload records how much state the reset discarded.
type ResetPayload struct {
	OverridesCleared int `json:"overridesCleared"`
}

// Pickup publishes a token pickup event.
func Pickup(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload PickupPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPickup,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Place publishes a token placement event.
func Place(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload PlacePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPlace,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Craft publishes a merge event.
func Craft(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload CraftPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCraft,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Win publishes the win event.
func Win(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload WinPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventWin,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Rejected publishes an event for a click that was refused.
func Rejected(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload RejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventRejected,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Reset publishes a full-wipe event.
func Reset(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload ResetPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventReset,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
