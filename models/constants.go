package models

// Party types
const (
	PartyTypePerson  = "person"
	PartyTypeEvent   = "event"
	PartyTypeService = "service"
)

// Encounter types
const (
	EncounterTypePhysical = "physical"
	EncounterTypeDigital  = "digital"
	EncounterTypeService  = "service"
	EncounterTypeCheckin  = "checkin"
)

// Score types assigned by the encounter classifier
const (
	ScoreTypeFirstEncounter     = "first_encounter"
	ScoreTypeReEncounterDiffDay = "re_encounter_diff_day"
	ScoreTypeReEncounterSameDay = "re_encounter_same_day"
	ScoreTypeSpam               = "spam"
)

// Star kinds
const (
	StarKindEarned    = "earned"
	StarKindPurchased = "purchased"
)

// Pending star reasons
const (
	StarReasonStreak    = "streak"
	StarReasonMilestone = "milestone"
)

// Collection names used by the store, the durable mirror and the indexes
const (
	CollectionParties      = "parties"
	CollectionRelations    = "relations"
	CollectionEncounters   = "encounters"
	CollectionPointLogs    = "pointLogs"
	CollectionStreaks      = "streaks"
	CollectionStars        = "stars"
	CollectionPendingStars = "pendingStars"
	CollectionEvents       = "events"
)

// CollectionsTable is the DynamoDB table mirroring the in-memory collections,
// one item per collection.
const CollectionsTable = "SonarCollections"

// CollectionRecord is the durable form of one collection: its name plus the
// JSON payload of every record in it.
type CollectionRecord struct {
	Name      string `dynamodbav:"name" json:"name"`
	Payload   string `dynamodbav:"payload" json:"payload"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updatedAt"`
}
