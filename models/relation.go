package models

import "time"

// Relation is the ephemeral, time-boxed connection between two parties.
// PartyA/PartyB are stored in sorted order so the pair key is stable.
type Relation struct {
	RelationID     string    `dynamodbav:"relationId" json:"relationId"`
	PartyA         string    `dynamodbav:"partyA" json:"partyA"`
	PartyB         string    `dynamodbav:"partyB" json:"partyB"`
	Phrase         string    `dynamodbav:"phrase" json:"phrase"` // shared pairing phrase, refreshed on renewal
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
	ExpiresAt      time.Time `dynamodbav:"expiresAt" json:"expiresAt"`
	RenewedCount   int       `dynamodbav:"renewedCount" json:"renewedCount"`
	EventID        string    `dynamodbav:"eventId,omitempty" json:"eventId,omitempty"`
	IsEventCheckin bool      `dynamodbav:"isEventCheckin" json:"isEventCheckin"`
}

// IsActive reports whether the relation has not yet expired at the given
// instant. Expired relations are treated as absent everywhere.
func (r *Relation) IsActive(now time.Time) bool {
	return r.ExpiresAt.After(now)
}

// Counterpart returns the other endpoint of the relation.
func (r *Relation) Counterpart(partyID string) string {
	if r.PartyA == partyID {
		return r.PartyB
	}
	return r.PartyA
}
