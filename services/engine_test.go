package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sonar_server/models"
)

// baseTime is the fixed reference instant tests build timelines from.
var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// testEngine wires the full service graph over an empty store with a
// dropped notifier, the way main.go does it against real transports.
type testEngine struct {
	store     *Store
	index     *IndexService
	config    *ConfigService
	party     *PartyService
	encounter *EncounterService
	stars     *StarService
	relations *RelationService
	sonic     *SonicService
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	store := NewStore()
	index := NewIndexService(store)
	config := NewConfigService()
	notifier := NoopNotifier{}

	party := &PartyService{Store: store, Index: index}
	encounter := &EncounterService{Store: store, Config: config}
	stars := &StarService{Store: store, Index: index, Config: config, Encounter: encounter, Notifier: notifier}
	relations := NewRelationService(store, index, config, encounter, stars, party, notifier)
	sonic := NewSonicService(relations, config, notifier)

	return &testEngine{
		store:     store,
		index:     index,
		config:    config,
		party:     party,
		encounter: encounter,
		stars:     stars,
		relations: relations,
		sonic:     sonic,
	}
}

// addPerson registers a pairable person keyed by nickname.
func (e *testEngine) addPerson(t *testing.T, nickname string) *models.Party {
	t.Helper()
	party, err := e.party.CreateParty(nickname+"@example.com", nickname, "The "+nickname, "", baseTime)
	require.NoError(t, err)
	return party
}

// addEvent registers an event (and its synthetic party) owned by creator.
func (e *testEngine) addEvent(t *testing.T, creatorID, name string) *models.Event {
	t.Helper()
	event, err := e.party.CreateEvent(creatorID, name, "", baseTime)
	require.NoError(t, err)
	return event
}
