package movement

import (
	"context"

	"merge-and-wander/server/logging"
)

const (
	// EventStep is emitted when the player cell changes.
	EventStep logging.EventType = "movement.step"
	// EventModeSwitched is emitted when the active movement source changes.
	EventModeSwitched logging.EventType = "movement.mode_switched"
	// EventSwitchFailed is emitted when a movement source refuses to start.
	EventSwitchFailed logging.EventType = "movement.switch_failed"
	// EventStaleDropped is emitted when a stimulus from a stopped source is discarded.
	EventStaleDropped logging.EventType = "movement.stale_dropped"
)

// StepPayload records a player cell transition.
type StepPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ModeSwitchedPayload records a successful source handover.
type ModeSwitchedPayload struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

// SwitchFailedPayload records why a handover did not happen.
type SwitchFailedPayload struct {
	Mode   string `json:"mode"`
	Reason string `json:"reason"`
}

// StaleDroppedPayload identifies the source whose late delivery was ignored.
type StaleDroppedPayload struct {
	Source string `json:"source"`
}

// Step publishes a player movement event.
func Step(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload StepPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventStep,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryMovement,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ModeSwitched publishes a source handover event.
func ModeSwitched(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload ModeSwitchedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventModeSwitched,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMovement,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SwitchFailed publishes a failed handover event.
func SwitchFailed(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload SwitchFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSwitchFailed,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryMovement,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// StaleDropped publishes an event for a discarded late delivery.
func StaleDropped(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload StaleDroppedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventStaleDropped,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryMovement,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
