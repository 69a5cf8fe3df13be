package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"sonar_server/models"
)

// PartyService is the party directory: person profiles, synthetic event and
// service-provider parties, nickname uniqueness and the pairability check.
type PartyService struct {
	Store *Store
	Index *IndexService
}

// CreateParty registers a person profile. Identity and nickname must both be
// unused.
func (ps *PartyService) CreateParty(identity, nickname, displayName, photoURL string, now time.Time) (*models.Party, error) {
	ps.Store.Lock()
	defer ps.Store.Unlock()

	if _, taken := ps.Index.PartyByIdentity(identity); taken {
		return nil, ErrIdentityTaken
	}
	if _, taken := ps.Index.PartyByNickname(nickname); taken {
		return nil, ErrNicknameTaken
	}

	party := &models.Party{
		PartyID:     uuid.NewString(),
		Type:        models.PartyTypePerson,
		Identity:    identity,
		Nickname:    nickname,
		DisplayName: displayName,
		PhotoURL:    photoURL,
		CreatedAt:   now,
	}
	ps.Store.Parties[party.PartyID] = party
	ps.Index.RegisterParty(party)
	ps.Store.MarkDirty(models.CollectionParties)

	log.Printf("👤 Created party %s (%s)", party.PartyID, nickname)
	return party, nil
}

// GetParty returns a party by id.
func (ps *PartyService) GetParty(partyID string) (*models.Party, error) {
	ps.Store.Lock()
	defer ps.Store.Unlock()
	party, ok := ps.Store.Parties[partyID]
	if !ok {
		return nil, ErrUnknownParty
	}
	return party, nil
}

// GetPartyByIdentity resolves an external identity to its profile.
func (ps *PartyService) GetPartyByIdentity(identity string) (*models.Party, error) {
	ps.Store.Lock()
	defer ps.Store.Unlock()
	partyID, ok := ps.Index.PartyByIdentity(identity)
	if !ok {
		return nil, ErrUnknownParty
	}
	return ps.Store.Parties[partyID], nil
}

// IsNicknameAvailable answers the nickname-uniqueness check.
func (ps *PartyService) IsNicknameAvailable(nickname string) bool {
	ps.Store.Lock()
	defer ps.Store.Unlock()
	_, taken := ps.Index.PartyByNickname(nickname)
	return !taken
}

// Rename changes a party's nickname, keeping the nickname index in step.
func (ps *PartyService) Rename(partyID, nickname string) (*models.Party, error) {
	ps.Store.Lock()
	defer ps.Store.Unlock()

	party, ok := ps.Store.Parties[partyID]
	if !ok {
		return nil, ErrUnknownParty
	}
	if takenBy, taken := ps.Index.PartyByNickname(nickname); taken && takenBy != partyID {
		return nil, ErrNicknameTaken
	}

	ps.Index.UnregisterNickname(party.Nickname)
	party.Nickname = nickname
	ps.Index.RegisterParty(party)
	ps.Store.MarkDirty(models.CollectionParties)
	return party, nil
}

// CreateEvent registers an event and its synthetic party endpoint under one
// id, so visitors can hold relations with "the event" itself.
func (ps *PartyService) CreateEvent(creatorID, name, venue string, now time.Time) (*models.Event, error) {
	ps.Store.Lock()
	defer ps.Store.Unlock()

	creator, ok := ps.Store.Parties[creatorID]
	if !ok || !creator.IsPerson() {
		return nil, ErrUnknownParty
	}

	event := &models.Event{
		EventID:   uuid.NewString(),
		CreatorID: creatorID,
		Name:      name,
		Venue:     venue,
		CreatedAt: now,
	}
	party := &models.Party{
		PartyID:     event.EventID,
		Type:        models.PartyTypeEvent,
		DisplayName: name,
		CreatedAt:   now,
	}

	ps.Store.Events[event.EventID] = event
	ps.Store.Parties[party.PartyID] = party
	ps.Index.RegisterEvent(event)
	ps.Store.MarkDirty(models.CollectionEvents, models.CollectionParties)

	log.Printf("🎪 Created event %s (%s) for %s", event.EventID, name, creatorID)
	return event, nil
}

// GetEventsByCreator lists a party's events.
func (ps *PartyService) GetEventsByCreator(creatorID string) []*models.Event {
	ps.Store.Lock()
	defer ps.Store.Unlock()
	var out []*models.Event
	for _, eventID := range ps.Index.EventsByCreator(creatorID) {
		if event, ok := ps.Store.Events[eventID]; ok {
			out = append(out, event)
		}
	}
	return out
}

// CreateServiceProvider registers a synthetic service-provider party.
func (ps *PartyService) CreateServiceProvider(displayName string, now time.Time) (*models.Party, error) {
	ps.Store.Lock()
	defer ps.Store.Unlock()

	party := &models.Party{
		PartyID:     uuid.NewString(),
		Type:        models.PartyTypeService,
		DisplayName: displayName,
		CreatedAt:   now,
	}
	ps.Store.Parties[party.PartyID] = party
	ps.Store.MarkDirty(models.CollectionParties)
	return party, nil
}

// Summary is the counterpart view shared in match notifications.
type Summary struct {
	PartyID     string `json:"partyId"`
	Type        string `json:"type"`
	Nickname    string `json:"nickname,omitempty"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// summarize builds the public view of a party. Callers hold the store lock.
func (ps *PartyService) summarize(partyID string) Summary {
	party, ok := ps.Store.Parties[partyID]
	if !ok {
		return Summary{PartyID: partyID}
	}
	return Summary{
		PartyID:     party.PartyID,
		Type:        party.Type,
		Nickname:    party.Nickname,
		DisplayName: party.DisplayName,
		PhotoURL:    party.PhotoURL,
	}
}
