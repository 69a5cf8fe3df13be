package services

import "errors"

// Typed failure values returned by the core. Controllers and socket handlers
// translate these into protocol responses; the core never panics on bad
// input.
var (
	// invalid-reference failures: the call is rejected with no state change
	ErrUnknownParty     = errors.New("unknown party")
	ErrUnknownRelation  = errors.New("unknown relation")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrUnknownEncounter = errors.New("unknown encounter")
	ErrUnknownStar      = errors.New("unknown pending star")
	ErrUnknownBackup    = errors.New("unknown backup")

	// policy violations: rejected with a specific reason, no partial effect
	ErrSelfPairing        = errors.New("a party cannot pair with itself")
	ErrSelfDonation       = errors.New("a star cannot be donated to its earner")
	ErrDonationCapReached = errors.New("donation cap reached for this recipient")
	ErrInsufficientPoints = errors.New("insufficient spendable points")
	ErrNicknameTaken      = errors.New("nickname already taken")
	ErrIdentityTaken      = errors.New("identity already registered")
	ErrNotPairable        = errors.New("profile not complete enough to pair")
	ErrNoSharedEvent      = errors.New("parties do not share an active event")
	ErrNoConnectRequest   = errors.New("no open connect request from this party")
	ErrNotEventCreator    = errors.New("party is not the creator of this event")
)
