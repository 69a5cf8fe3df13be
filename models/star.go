package models

import "time"

// Star is a scarce reward permanently attached to its recipient. Stars are
// never removed automatically.
type Star struct {
	StarID      string    `dynamodbav:"starId" json:"starId"`
	RecipientID string    `dynamodbav:"recipientId" json:"recipientId"`
	FromPartyID string    `dynamodbav:"fromPartyId" json:"fromPartyId"`
	DonatedAt   time.Time `dynamodbav:"donatedAt" json:"donatedAt"`
	Kind        string    `dynamodbav:"kind" json:"kind"` // earned, purchased
}

// PendingStar is a minted reward waiting for its earner to pick a recipient.
// It becomes a Star only through an explicit donation.
type PendingStar struct {
	PendingStarID string    `dynamodbav:"pendingStarId" json:"pendingStarId"`
	OwnerID       string    `dynamodbav:"ownerId" json:"ownerId"`
	Reason        string    `dynamodbav:"reason" json:"reason"`   // streak, milestone
	Context       string    `dynamodbav:"context" json:"context"` // pair key or partner count, depending on reason
	EarnedAt      time.Time `dynamodbav:"earnedAt" json:"earnedAt"`
}
