package services

// Socket event names published by the core. The transport layer maps a
// party channel onto whatever live connections that party holds.
const (
	EventSlotAssigned      = "slot-assigned"
	EventMatchResolved     = "match-resolved"
	EventRetryRequested    = "retry-requested"
	EventStreakMilestone   = "streak-milestone"
	EventStarPending       = "star-pending"
	EventStarReceived      = "star-received"
	EventDonationConfirmed = "star-donation-confirmed"
)

// Notifier is the per-party pub/sub channel the core publishes to. The core
// never knows about sockets; it only names the party.
type Notifier interface {
	Publish(partyID string, event string, payload interface{})
}

// NoopNotifier drops every notification. Used in tests and as a default
// before the socket server attaches.
type NoopNotifier struct{}

func (NoopNotifier) Publish(string, string, interface{}) {}
