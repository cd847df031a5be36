// Package realtime fans group change notifications out to websocket
// subscribers. Subscriptions are keyed by join code; delivery is
// best-effort and never fails the operation that triggered the event.
// Subscribers are expected to re-fetch authoritative state, the payload is
// only a hint of what changed.
package realtime

import (
	"time"
)

// Event kinds emitted after a committed state change.
const (
	EventParticipantsAdded    = "participants:added"
	EventSettingsUpdated      = "settings:updated"
	EventAssignmentsGenerated = "assignments:generated"
	EventWishlistUpdated      = "wishlist:updated"
	EventGroupDeleted         = "group:deleted"
)

// Event is the frame sent to every subscriber of a group topic.
type Event struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emittedAt"`
}

// Publisher is the capability handlers use to notify subscribers. Handlers
// depend on this interface rather than the hub so tests can pass a no-op.
type Publisher interface {
	Publish(joinCode, event string, payload any)
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(joinCode, event string, payload any) {}
