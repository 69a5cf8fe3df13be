package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar_server/models"
)

func TestAnnounce_RoundRobinSlots(t *testing.T) {
	e := newTestEngine(t)

	slotCount := e.config.SlotCount()
	seen := make(map[int]bool)
	for i := 0; i < slotCount; i++ {
		p := e.addPerson(t, fmt.Sprintf("announcer%02d", i))
		assignment, err := e.sonic.Announce(p.PartyID, "", baseTime)
		require.NoError(t, err)
		assert.False(t, seen[assignment.Slot], "slot %d assigned twice within one ring pass", assignment.Slot)
		seen[assignment.Slot] = true
		assert.GreaterOrEqual(t, assignment.FrequencyHz, e.config.BaseFrequencyHz())
	}
	assert.Len(t, seen, slotCount)
}

func TestAnnounce_Rejections(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")

	_, err := e.sonic.Announce("nobody", "", baseTime)
	assert.ErrorIs(t, err, ErrUnknownParty)

	_, err = e.sonic.Announce(alice.PartyID, "no-such-event", baseTime)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	bob := e.addPerson(t, "bob")
	event := e.addEvent(t, bob.PartyID, "Garage Night")
	_, err = e.sonic.Announce(alice.PartyID, event.EventID, baseTime)
	assert.ErrorIs(t, err, ErrNotEventCreator)
}

func TestReport_VisitorToVisitorMatch(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")

	assignment, err := e.sonic.Announce(alice.PartyID, "", baseTime)
	require.NoError(t, err)
	_, err = e.sonic.Announce(bob.PartyID, "", baseTime)
	require.NoError(t, err)

	outcome, err := e.sonic.Report(bob.PartyID, assignment.Slot, baseTime)
	require.NoError(t, err)
	require.True(t, outcome.Matched)

	assert.Equal(t, models.ScoreTypeFirstEncounter, outcome.Result.SideA.ScoreType)
	assert.Equal(t, models.ScoreTypeFirstEncounter, outcome.Result.SideB.ScoreType)
	assert.Equal(t, e.config.FirstEncounterPoints(), outcome.Result.SideA.Points)

	// both visitor entries are consumed by the match
	assert.Equal(t, 0, e.sonic.QueueSize())

	// a second report for the same slot observes "already matched" as absence
	second, err := e.sonic.Report(alice.PartyID, assignment.Slot, baseTime)
	require.NoError(t, err)
	assert.False(t, second.Matched)
}

func TestReport_UnknownReporterLeavesQueueIntact(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")

	assignment, err := e.sonic.Announce(alice.PartyID, "", baseTime)
	require.NoError(t, err)

	_, err = e.sonic.Report("nobody", assignment.Slot, baseTime)
	assert.ErrorIs(t, err, ErrUnknownParty)
	assert.Equal(t, 1, e.sonic.QueueSize(), "a rejected report must not consume the announcer's entry")

	// the announcer can still be matched afterwards
	bob := e.addPerson(t, "bob")
	_, err = e.sonic.Announce(bob.PartyID, "", baseTime)
	require.NoError(t, err)
	outcome, err := e.sonic.Report(bob.PartyID, assignment.Slot, baseTime)
	require.NoError(t, err)
	assert.True(t, outcome.Matched)
}

func TestReport_RetryOutcomes(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")

	outcome, err := e.sonic.Report(alice.PartyID, 3, baseTime)
	require.NoError(t, err)
	assert.False(t, outcome.Matched)
	assert.NotEmpty(t, outcome.Reason)

	assignment, err := e.sonic.Announce(alice.PartyID, "", baseTime)
	require.NoError(t, err)
	outcome, err = e.sonic.Report(alice.PartyID, assignment.Slot, baseTime)
	require.NoError(t, err)
	assert.False(t, outcome.Matched, "detecting your own signal must not match")
}

func TestReport_OperatorSuppressesVisitorMatch(t *testing.T) {
	e := newTestEngine(t)
	operator := e.addPerson(t, "operator")
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	event := e.addEvent(t, operator.PartyID, "Rooftop Social")

	opAssignment, err := e.sonic.Announce(operator.PartyID, event.EventID, baseTime)
	require.NoError(t, err)
	aliceAssignment, err := e.sonic.Announce(alice.PartyID, "", baseTime)
	require.NoError(t, err)
	_, err = e.sonic.Announce(bob.PartyID, "", baseTime)
	require.NoError(t, err)

	// visitor detecting another visitor is told to retry while the
	// operator is open
	outcome, err := e.sonic.Report(bob.PartyID, aliceAssignment.Slot, baseTime)
	require.NoError(t, err)
	assert.False(t, outcome.Matched)

	// visitor detecting the operator checks in against the event party
	outcome, err = e.sonic.Report(alice.PartyID, opAssignment.Slot, baseTime)
	require.NoError(t, err)
	require.True(t, outcome.Matched)
	assert.True(t, outcome.Result.Relation.IsEventCheckin)
	assert.Equal(t, event.EventID, outcome.Result.Relation.EventID)
	assert.Equal(t, event.EventID, outcome.Result.SideA.Counterpart.PartyID)

	// the operator entry survives the match, the visitor's is gone
	assert.Equal(t, 2, e.sonic.QueueSize()) // operator + bob

	// a second visitor can check in against the same operator
	outcome, err = e.sonic.Report(bob.PartyID, opAssignment.Slot, baseTime)
	require.NoError(t, err)
	assert.True(t, outcome.Matched)
	assert.Equal(t, 1, e.sonic.QueueSize())
}

func TestReport_ServiceProviderEncounterType(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	barber, err := e.party.CreateServiceProvider("Corner Barber", baseTime)
	require.NoError(t, err)

	assignment, err := e.sonic.Announce(barber.PartyID, "", baseTime)
	require.NoError(t, err)

	outcome, err := e.sonic.Report(alice.PartyID, assignment.Slot, baseTime)
	require.NoError(t, err)
	require.True(t, outcome.Matched)

	encounters, err := e.encounter.GetEncounters(alice.PartyID)
	require.NoError(t, err)
	require.Len(t, encounters, 1)
	assert.Equal(t, models.EncounterTypeService, encounters[0].Type)
}

func TestStopPresence(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	operator := e.addPerson(t, "operator")
	event := e.addEvent(t, operator.PartyID, "Night Market")

	_, err := e.sonic.Announce(alice.PartyID, "", baseTime)
	require.NoError(t, err)
	_, err = e.sonic.Announce(operator.PartyID, event.EventID, baseTime)
	require.NoError(t, err)
	require.Equal(t, 2, e.sonic.QueueSize())

	e.sonic.StopPresence(alice.PartyID)
	assert.Equal(t, 1, e.sonic.QueueSize())

	// operators can be stopped by their event id
	e.sonic.StopPresence(event.EventID)
	assert.Equal(t, 0, e.sonic.QueueSize())
}
