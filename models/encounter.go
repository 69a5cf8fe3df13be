package models

import "time"

// Encounter is one recorded pairing event in a person's history log.
// Entries are append-only; the only mutation ever allowed is deletion by
// explicit user action.
type Encounter struct {
	EncounterID   string    `dynamodbav:"encounterId" json:"encounterId"`
	PartyID       string    `dynamodbav:"partyId" json:"partyId"` // owner of this history entry
	WithPartyID   string    `dynamodbav:"withPartyId" json:"withPartyId"`
	Timestamp     time.Time `dynamodbav:"timestamp" json:"timestamp"`
	Date          string    `dynamodbav:"date" json:"date"` // calendar day, YYYY-MM-DD
	Type          string    `dynamodbav:"type" json:"type"` // physical, digital, service, checkin
	ScoreType     string    `dynamodbav:"scoreType" json:"scoreType"`
	PointsAwarded float64   `dynamodbav:"pointsAwarded" json:"pointsAwarded"`
	RelationID    string    `dynamodbav:"relationId" json:"relationId"`
}

// PointEntry is one append-only score ledger line. Entries older than the
// decay window are pruned by a periodic sweep; the undecayed lifetime total
// lives on the Party record so pruning never shrinks spendable balance.
type PointEntry struct {
	Value       float64   `dynamodbav:"value" json:"value"`
	Type        string    `dynamodbav:"type" json:"type"` // score type that earned it
	Timestamp   time.Time `dynamodbav:"timestamp" json:"timestamp"`
	WithPartyID string    `dynamodbav:"withPartyId,omitempty" json:"withPartyId,omitempty"`
}
