package server

import "time"

const (
	// DefaultSaveKey is the store key the session persists under.
	DefaultSaveKey = "slot-main"

	heartbeatInterval = 2 * time.Second
)

// HeartbeatInterval reports the cadence clients are expected to ping at.
func HeartbeatInterval() time.Duration {
	return heartbeatInterval
}
