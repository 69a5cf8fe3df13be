package models

// StreakDay is one credited calendar day in a pair's streak history.
type StreakDay struct {
	Date   string `dynamodbav:"date" json:"date"`
	Streak int    `dynamodbav:"streak" json:"streak"`
}

// Streak tracks consecutive calendar days a pair has met. Keyed by the
// sorted pair key. StarsAwarded counts stars already minted for the current
// run so threshold crossings are credited exactly once; it resets with the
// streak.
type Streak struct {
	PairKey       string      `dynamodbav:"pairKey" json:"pairKey"`
	CurrentStreak int         `dynamodbav:"currentStreak" json:"currentStreak"`
	BestStreak    int         `dynamodbav:"bestStreak" json:"bestStreak"`
	LastDate      string      `dynamodbav:"lastDate" json:"lastDate"`
	History       []StreakDay `dynamodbav:"history" json:"history"`
	StarsAwarded  int         `dynamodbav:"starsAwarded" json:"starsAwarded"`
}
