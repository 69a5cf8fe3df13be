package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar_server/models"
)

func TestIndex_PartyLookups(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")

	e.store.Lock()
	defer e.store.Unlock()

	id, ok := e.index.PartyByIdentity("alice@example.com")
	require.True(t, ok)
	assert.Equal(t, alice.PartyID, id)

	id, ok = e.index.PartyByNickname("alice")
	require.True(t, ok)
	assert.Equal(t, alice.PartyID, id)

	_, ok = e.index.PartyByNickname("nobody")
	assert.False(t, ok)
}

func TestIndex_RenameKeepsNicknameUnique(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	e.addPerson(t, "bob")

	_, err := e.party.Rename(alice.PartyID, "bob")
	assert.ErrorIs(t, err, ErrNicknameTaken)

	_, err = e.party.Rename(alice.PartyID, "alicia")
	require.NoError(t, err)

	assert.True(t, e.party.IsNicknameAvailable("alice"), "the old nickname is freed")
	assert.False(t, e.party.IsNicknameAvailable("alicia"))
}

func TestIndex_EventsByCreator(t *testing.T) {
	e := newTestEngine(t)
	operator := e.addPerson(t, "operator")
	first := e.addEvent(t, operator.PartyID, "Open Mic")
	second := e.addEvent(t, operator.PartyID, "Quiz Night")

	events := e.party.GetEventsByCreator(operator.PartyID)
	require.Len(t, events, 2)
	ids := []string{events[0].EventID, events[1].EventID}
	assert.Contains(t, ids, first.EventID)
	assert.Contains(t, ids, second.EventID)
}

func TestIndex_RebuildMatchesIncrementalState(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	carol := e.addPerson(t, "carol")
	operator := e.addPerson(t, "operator")
	event := e.addEvent(t, operator.PartyID, "Street Fair")

	_, err := e.relations.RecordPairing(alice.PartyID, bob.PartyID, models.EncounterTypePhysical, "", baseTime)
	require.NoError(t, err)
	_, err = e.relations.RecordPairing(carol.PartyID, event.EventID, models.EncounterTypeCheckin, event.EventID, baseTime)
	require.NoError(t, err)

	e.store.Lock()
	pending := e.stars.mintPendingStar(alice.PartyID, models.StarReasonStreak, "test", baseTime)
	e.store.Unlock()
	_, err = e.stars.Donate(alice.PartyID, pending.PendingStarID, bob.PartyID, baseTime)
	require.NoError(t, err)

	now := baseTime.Add(time.Minute)
	snapshot := func() (relA, relC string, donations int, events []string) {
		e.store.Lock()
		defer e.store.Unlock()
		if rel := e.index.ActiveRelationForPair(alice.PartyID, bob.PartyID, now); rel != nil {
			relA = rel.RelationID
		}
		if rel := e.index.ActiveRelationForPair(carol.PartyID, event.EventID, now); rel != nil {
			relC = rel.RelationID
		}
		donations = e.index.DonationCount(alice.PartyID, bob.PartyID)
		events = e.index.EventsByCreator(operator.PartyID)
		return
	}

	beforeA, beforeC, beforeDonations, beforeEvents := snapshot()
	require.NotEmpty(t, beforeA)
	require.NotEmpty(t, beforeC)
	require.Equal(t, 1, beforeDonations)

	// a full rebuild from the source collections reproduces the
	// incrementally maintained state
	e.index.Rebuild()
	afterA, afterC, afterDonations, afterEvents := snapshot()
	assert.Equal(t, beforeA, afterA)
	assert.Equal(t, beforeC, afterC)
	assert.Equal(t, beforeDonations, afterDonations)
	assert.ElementsMatch(t, beforeEvents, afterEvents)
}
