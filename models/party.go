package models

import "time"

// Party is any endpoint a relation can attach to: a person, a synthetic
// event, or a synthetic service provider.
type Party struct {
	PartyID           string    `dynamodbav:"partyId" json:"partyId"`
	Type              string    `dynamodbav:"type" json:"type"`                 // person, event, service
	Nickname          string    `dynamodbav:"nickname" json:"nickname"`         // unique across parties
	Identity          string    `dynamodbav:"identity" json:"identity"`         // external identity (email), persons only
	DisplayName       string    `dynamodbav:"displayName" json:"displayName"`
	PhotoURL          string    `dynamodbav:"photoUrl" json:"photoUrl"`
	Bio               string    `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	LifetimeEarned    float64   `dynamodbav:"lifetimeEarned" json:"lifetimeEarned"`       // undecayed points ever awarded
	PointsSpent       float64   `dynamodbav:"pointsSpent" json:"pointsSpent"`             // raw points spent in the star shop
	MilestonesAwarded int       `dynamodbav:"milestonesAwarded" json:"milestonesAwarded"` // unique-partner milestones already credited
	CreatedAt         time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

// IsPerson reports whether the party is a real human account rather than a
// synthetic event or service-provider endpoint.
func (p *Party) IsPerson() bool {
	return p.Type == PartyTypePerson
}

// IsPairable answers whether the profile is complete enough to take part in a
// pairing. Synthetic parties are always pairable.
func (p *Party) IsPairable() bool {
	if !p.IsPerson() {
		return true
	}
	return p.Nickname != "" && p.DisplayName != ""
}
