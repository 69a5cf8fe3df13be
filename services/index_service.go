package services

import (
	"log"
	"time"

	"sonar_server/models"
	"sonar_server/utils"
)

// IndexService maintains the reverse lookup tables over the store. Indexes
// are mutated in the same locked step as the primary record they mirror, so
// there is never a reindex pass on the hot path; Rebuild exists only for
// startup and restore. Every method below except Rebuild assumes the caller
// holds the store lock.
type IndexService struct {
	Store *Store

	identityToParty   map[string]string
	nicknameToParty   map[string]string
	pairToRelation    map[string]string          // sorted pair key → relationId
	partyRelations    map[string]map[string]bool // partyId → relationId set
	donorStars        map[string][]string        // donor partyId → star ids given
	directedDonations map[string]int             // donor>recipient → count
	creatorEvents     map[string][]string        // creator partyId → event ids
}

// NewIndexService returns empty indexes; call Rebuild after the store loads.
func NewIndexService(store *Store) *IndexService {
	is := &IndexService{Store: store}
	is.reset()
	return is
}

func (is *IndexService) reset() {
	is.identityToParty = make(map[string]string)
	is.nicknameToParty = make(map[string]string)
	is.pairToRelation = make(map[string]string)
	is.partyRelations = make(map[string]map[string]bool)
	is.donorStars = make(map[string][]string)
	is.directedDonations = make(map[string]int)
	is.creatorEvents = make(map[string][]string)
}

// Rebuild repopulates every index from the source-of-truth collections.
func (is *IndexService) Rebuild() {
	is.Store.Lock()
	defer is.Store.Unlock()
	is.reset()

	for _, party := range is.Store.Parties {
		is.RegisterParty(party)
	}
	for _, relation := range is.Store.Relations {
		is.RegisterRelation(relation)
	}
	for _, stars := range is.Store.Stars {
		for _, star := range stars {
			is.RegisterDonation(star)
		}
	}
	for _, event := range is.Store.Events {
		is.RegisterEvent(event)
	}
	log.Printf("🔎 Indexes rebuilt: %d parties, %d relations", len(is.Store.Parties), len(is.Store.Relations))
}

// RegisterParty mirrors a new or renamed party into the identity and
// nickname maps.
func (is *IndexService) RegisterParty(p *models.Party) {
	if p.Identity != "" {
		is.identityToParty[p.Identity] = p.PartyID
	}
	if p.Nickname != "" {
		is.nicknameToParty[p.Nickname] = p.PartyID
	}
}

// UnregisterNickname frees a nickname during a rename.
func (is *IndexService) UnregisterNickname(nickname string) {
	delete(is.nicknameToParty, nickname)
}

// RegisterRelation mirrors a relation into the pair and per-party maps.
func (is *IndexService) RegisterRelation(r *models.Relation) {
	key := utils.PairKey(r.PartyA, r.PartyB)
	is.pairToRelation[key] = r.RelationID
	for _, id := range []string{r.PartyA, r.PartyB} {
		if is.partyRelations[id] == nil {
			is.partyRelations[id] = make(map[string]bool)
		}
		is.partyRelations[id][r.RelationID] = true
	}
}

// RemoveRelation drops a relation from the pair and per-party maps.
func (is *IndexService) RemoveRelation(r *models.Relation) {
	key := utils.PairKey(r.PartyA, r.PartyB)
	if is.pairToRelation[key] == r.RelationID {
		delete(is.pairToRelation, key)
	}
	for _, id := range []string{r.PartyA, r.PartyB} {
		delete(is.partyRelations[id], r.RelationID)
	}
}

// RegisterDonation mirrors a star into the donor maps.
func (is *IndexService) RegisterDonation(star *models.Star) {
	is.donorStars[star.FromPartyID] = append(is.donorStars[star.FromPartyID], star.StarID)
	is.directedDonations[utils.DirectedKey(star.FromPartyID, star.RecipientID)]++
}

// RegisterEvent mirrors an event into the creator map.
func (is *IndexService) RegisterEvent(e *models.Event) {
	is.creatorEvents[e.CreatorID] = append(is.creatorEvents[e.CreatorID], e.EventID)
}

// PartyByIdentity resolves an external identity to a party id.
func (is *IndexService) PartyByIdentity(identity string) (string, bool) {
	id, ok := is.identityToParty[identity]
	return id, ok
}

// PartyByNickname resolves a nickname to a party id.
func (is *IndexService) PartyByNickname(nickname string) (string, bool) {
	id, ok := is.nicknameToParty[nickname]
	return id, ok
}

// ActiveRelationForPair returns the live relation between two parties, or
// nil. Expired relations are treated as absent; the sweep reclaims them
// later.
func (is *IndexService) ActiveRelationForPair(a, b string, now time.Time) *models.Relation {
	relationID, ok := is.pairToRelation[utils.PairKey(a, b)]
	if !ok {
		return nil
	}
	relation, ok := is.Store.Relations[relationID]
	if !ok || !relation.IsActive(now) {
		return nil
	}
	return relation
}

// ActiveRelationsForParty returns every live relation a party holds.
func (is *IndexService) ActiveRelationsForParty(partyID string, now time.Time) []*models.Relation {
	var out []*models.Relation
	for relationID := range is.partyRelations[partyID] {
		relation, ok := is.Store.Relations[relationID]
		if ok && relation.IsActive(now) {
			out = append(out, relation)
		}
	}
	return out
}

// DonationCount returns the number of stars a donor has given a recipient.
func (is *IndexService) DonationCount(from, to string) int {
	return is.directedDonations[utils.DirectedKey(from, to)]
}

// StarsGivenBy returns the ids of every star a donor has given.
func (is *IndexService) StarsGivenBy(donorID string) []string {
	return is.donorStars[donorID]
}

// EventsByCreator returns the event ids a party has created.
func (is *IndexService) EventsByCreator(creatorID string) []string {
	return is.creatorEvents[creatorID]
}
