package viewport

import (
	"context"

	"merge-and-wander/server/logging"
)

const (
	// EventReconciled is emitted after a viewport rebuild.
	EventReconciled logging.EventType = "viewport.reconciled"
	// EventSurfaceAttached is emitted when a rendering surface connects.
	EventSurfaceAttached logging.EventType = "viewport.surface_attached"
)

// ReconciledPayload summarizes one rebuild of the visible cells.
type ReconciledPayload struct {
	Rendered int  `json:"rendered"`
	Removed  int  `json:"removed"`
	Clipped  bool `json:"clipped,omitempty"`
}

// SurfaceAttachedPayload identifies the new surface.
type SurfaceAttachedPayload struct {
	Client string `json:"client,omitempty"`
}

// Reconciled publishes a rebuild summary.
func Reconciled(ctx context.Context, pub logging.Publisher, seq uint64, payload ReconciledPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventReconciled,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryViewport,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SurfaceAttached publishes a surface connection event.
func SurfaceAttached(ctx context.Context, pub logging.Publisher, seq uint64, payload SurfaceAttachedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSurfaceAttached,
		Seq:      seq,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryViewport,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
