package models

import "time"

// Event is an operator-owned place/occasion. A synthetic event Party with
// the same id holds the visitor relations; the Event record carries the
// descriptive attributes.
type Event struct {
	EventID   string    `dynamodbav:"eventId" json:"eventId"`
	CreatorID string    `dynamodbav:"creatorId" json:"creatorId"`
	Name      string    `dynamodbav:"name" json:"name"`
	Venue     string    `dynamodbav:"venue,omitempty" json:"venue,omitempty"`
	CreatedAt time.Time `dynamodbav:"createdAt" json:"createdAt"`
}
