package services

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"sonar_server/models"
	"sonar_server/utils"
)

var phraseAdjectives = []string{
	"amber", "breezy", "cobalt", "dusky", "electric", "fuzzy", "golden",
	"hidden", "ivory", "jolly", "kindred", "lunar", "mellow", "neon",
	"opal", "plucky", "quiet", "rosy", "silver", "twilight",
}

var phraseNouns = []string{
	"anchor", "beacon", "comet", "drum", "ember", "fjord", "garnet",
	"harbor", "island", "jasmine", "kite", "lantern", "meadow", "nebula",
	"orchid", "pebble", "quartz", "river", "sparrow", "tide",
}

// RelationService owns the relation lifecycle: creation on first pairing,
// renewal on repeat pairing before expiry, lazy expiry on read and the
// periodic reclaim sweep. It is also the single entry point every pairing
// flows through, sonic or digital.
type RelationService struct {
	Store     *Store
	Index     *IndexService
	Config    *ConfigService
	Encounter *EncounterService
	Stars     *StarService
	Party     *PartyService
	Notifier  Notifier

	connectRequests *cache.Cache // directed pair key → connect request, TTL-bounded
}

// NewRelationService wires the lifecycle manager and its transient
// connect-request queue.
func NewRelationService(store *Store, index *IndexService, config *ConfigService, encounter *EncounterService, stars *StarService, party *PartyService, notifier Notifier) *RelationService {
	return &RelationService{
		Store:           store,
		Index:           index,
		Config:          config,
		Encounter:       encounter,
		Stars:           stars,
		Party:           party,
		Notifier:        notifier,
		connectRequests: cache.New(config.ConnectRequestTTL(), time.Minute),
	}
}

// PairingSide is one party's view of a resolved pairing.
type PairingSide struct {
	PartyID     string  `json:"partyId"`
	ScoreType   string  `json:"scoreType"`
	Points      float64 `json:"points"`
	Counterpart Summary `json:"counterpart"`
}

// PairingResult is the committed outcome of one pairing event.
type PairingResult struct {
	Relation *models.Relation `json:"relation"`
	Renewed  bool             `json:"renewed"`
	SideA    PairingSide      `json:"sideA"` // the initiating/visiting party
	SideB    PairingSide      `json:"sideB"` // the counterpart (synthetic for checkins)
	Streak   *StreakUpdate    `json:"streak,omitempty"`
}

func newPhrase() string {
	adj := phraseAdjectives[rand.Intn(len(phraseAdjectives))]
	noun := phraseNouns[rand.Intn(len(phraseNouns))]
	return fmt.Sprintf("%s-%s-%02d", adj, noun, rand.Intn(100))
}

func (rs *RelationService) ttlFor(encounterType string) time.Duration {
	if encounterType == models.EncounterTypeDigital {
		return rs.Config.DigitalRelationTTL()
	}
	return rs.Config.RelationTTL()
}

// RecordPairing validates, commits and classifies one pairing event between
// two parties, then publishes the resulting notifications. This is the
// public entry; the whole decision commits under one lock acquisition before
// any notification or persistence work happens.
func (rs *RelationService) RecordPairing(aID, bID, encounterType, eventID string, now time.Time) (*PairingResult, error) {
	rs.Store.Lock()
	result, notices, err := rs.recordPairing(aID, bID, encounterType, eventID, now)
	rs.Store.Unlock()
	if err != nil {
		return nil, err
	}

	rs.Stars.publishNotices(notices)
	return result, nil
}

// recordPairing is the locked core of RecordPairing. Callers hold the store
// lock and publish the returned notices after releasing it.
func (rs *RelationService) recordPairing(aID, bID, encounterType, eventID string, now time.Time) (*PairingResult, []pendingNotice, error) {
	if aID == bID {
		return nil, nil, ErrSelfPairing
	}
	partyA, ok := rs.Store.Parties[aID]
	if !ok {
		return nil, nil, ErrUnknownParty
	}
	partyB, ok := rs.Store.Parties[bID]
	if !ok {
		return nil, nil, ErrUnknownParty
	}
	if !partyA.IsPairable() || !partyB.IsPairable() {
		return nil, nil, ErrNotPairable
	}

	isCheckin := encounterType == models.EncounterTypeCheckin
	ttl := rs.ttlFor(encounterType)

	relation := rs.Index.ActiveRelationForPair(aID, bID, now)
	renewed := relation != nil
	if renewed {
		// renewal only ever pushes expiry forward; a short-TTL pairing must
		// not cut short a relation that already outlives it
		if expiry := now.Add(ttl); expiry.After(relation.ExpiresAt) {
			relation.ExpiresAt = expiry
		}
		relation.RenewedCount++
		relation.Phrase = newPhrase()
	} else {
		// an expired relation may still occupy the pair slot; clear it first
		if staleID, ok := rs.Index.pairToRelation[utils.PairKey(aID, bID)]; ok {
			if stale, ok := rs.Store.Relations[staleID]; ok {
				rs.Index.RemoveRelation(stale)
				delete(rs.Store.Relations, staleID)
			}
		}
		sortedA, sortedB := utils.SortPair(aID, bID)
		relation = &models.Relation{
			RelationID:     uuid.NewString(),
			PartyA:         sortedA,
			PartyB:         sortedB,
			Phrase:         newPhrase(),
			CreatedAt:      now,
			ExpiresAt:      now.Add(ttl),
			EventID:        eventID,
			IsEventCheckin: isCheckin,
		}
		rs.Store.Relations[relation.RelationID] = relation
		rs.Index.RegisterRelation(relation)
	}
	rs.Store.MarkDirty(models.CollectionRelations)

	result := &PairingResult{
		Relation: relation,
		Renewed:  renewed,
		SideA:    PairingSide{PartyID: aID, Counterpart: rs.Party.summarize(bID)},
		SideB:    PairingSide{PartyID: bID, Counterpart: rs.Party.summarize(aID)},
	}

	if partyA.IsPerson() {
		enc := rs.Encounter.recordEncounter(aID, bID, encounterType, relation.RelationID, now)
		result.SideA.ScoreType = enc.ScoreType
		result.SideA.Points = enc.PointsAwarded
	}
	if partyB.IsPerson() {
		enc := rs.Encounter.recordEncounter(bID, aID, encounterType, relation.RelationID, now)
		result.SideB.ScoreType = enc.ScoreType
		result.SideB.Points = enc.PointsAwarded
	}

	var notices []pendingNotice
	if partyA.IsPerson() && partyB.IsPerson() {
		result.Streak, notices = rs.Stars.afterPairing(aID, bID, now)
	} else if partyA.IsPerson() {
		_, notices = rs.Stars.afterPairing(aID, bID, now)
	}

	log.Printf("🤝 Pairing committed: %s ↔ %s (%s, renewed=%v)", aID, bID, encounterType, renewed)
	return result, notices, nil
}

// RelationView is a relation seen from one party's side, with the other
// endpoint resolved to its public summary.
type RelationView struct {
	*models.Relation
	Counterpart Summary `json:"counterpart"`
}

// GetActiveRelations returns the live relations a party holds, each with the
// counterpart resolved.
func (rs *RelationService) GetActiveRelations(partyID string, now time.Time) ([]RelationView, error) {
	rs.Store.Lock()
	defer rs.Store.Unlock()
	if _, ok := rs.Store.Parties[partyID]; !ok {
		return nil, ErrUnknownParty
	}

	var views []RelationView
	for _, relation := range rs.Index.ActiveRelationsForParty(partyID, now) {
		views = append(views, RelationView{
			Relation:    relation,
			Counterpart: rs.Party.summarize(relation.Counterpart(partyID)),
		})
	}
	return views, nil
}

// GetRelation looks one relation up by id. An expired relation reads as
// absent, like everywhere else.
func (rs *RelationService) GetRelation(relationID string, now time.Time) (*models.Relation, error) {
	rs.Store.Lock()
	defer rs.Store.Unlock()
	relation, ok := rs.Store.Relations[relationID]
	if !ok || !relation.IsActive(now) {
		return nil, ErrUnknownRelation
	}
	return relation, nil
}

// sharedEventIDs returns the events both parties currently hold a checkin
// relation with. Lock held by caller.
func (rs *RelationService) sharedEventIDs(aID, bID string, now time.Time) []string {
	eventsOf := func(partyID string) map[string]bool {
		set := make(map[string]bool)
		for _, rel := range rs.Index.ActiveRelationsForParty(partyID, now) {
			if rel.IsEventCheckin && rel.EventID != "" {
				set[rel.EventID] = true
			}
		}
		return set
	}

	aEvents := eventsOf(aID)
	var shared []string
	for eventID := range eventsOf(bID) {
		if aEvents[eventID] {
			shared = append(shared, eventID)
		}
	}
	return shared
}

// RequestConnect opens a digital connect request from one party to another.
// Both must currently share an event context; the request itself lives in a
// TTL-bounded queue, not the store.
func (rs *RelationService) RequestConnect(fromID, toID string, now time.Time) error {
	rs.Store.Lock()
	if fromID == toID {
		rs.Store.Unlock()
		return ErrSelfPairing
	}
	if _, ok := rs.Store.Parties[fromID]; !ok {
		rs.Store.Unlock()
		return ErrUnknownParty
	}
	if _, ok := rs.Store.Parties[toID]; !ok {
		rs.Store.Unlock()
		return ErrUnknownParty
	}
	shared := rs.sharedEventIDs(fromID, toID, now)
	rs.Store.Unlock()

	if len(shared) == 0 {
		return ErrNoSharedEvent
	}
	rs.connectRequests.Set(utils.DirectedKey(fromID, toID), shared[0], cache.DefaultExpiration)
	log.Printf("🔗 Connect request %s → %s (event %s)", fromID, toID, shared[0])
	return nil
}

// AcceptConnect turns an open connect request into a short-lived digital
// relation. The shared-event precondition is re-checked at accept time.
func (rs *RelationService) AcceptConnect(toID, fromID string, now time.Time) (*PairingResult, error) {
	key := utils.DirectedKey(fromID, toID)
	eventID, found := rs.connectRequests.Get(key)
	if !found {
		return nil, ErrNoConnectRequest
	}

	rs.Store.Lock()
	if len(rs.sharedEventIDs(fromID, toID, now)) == 0 {
		rs.Store.Unlock()
		return nil, ErrNoSharedEvent
	}
	result, notices, err := rs.recordPairing(fromID, toID, models.EncounterTypeDigital, eventID.(string), now)
	rs.Store.Unlock()
	if err != nil {
		return nil, err
	}
	rs.connectRequests.Delete(key)

	rs.Stars.publishNotices(notices)
	rs.Notifier.Publish(fromID, EventMatchResolved, result.SideA)
	rs.Notifier.Publish(toID, EventMatchResolved, result.SideB)
	return result, nil
}

// SweepExpired reclaims expired relations and their index entries.
func (rs *RelationService) SweepExpired(now time.Time) int {
	rs.Store.Lock()
	defer rs.Store.Unlock()

	removed := 0
	for id, relation := range rs.Store.Relations {
		if !relation.IsActive(now) {
			rs.Index.RemoveRelation(relation)
			delete(rs.Store.Relations, id)
			removed++
		}
	}
	if removed > 0 {
		rs.Store.MarkDirty(models.CollectionRelations)
		log.Printf("🧹 Swept %d expired relations", removed)
	}
	return removed
}
