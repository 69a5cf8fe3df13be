package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar_server/models"
)

// record writes one side of a pairing directly, bypassing the relation
// pipeline, to build history at controlled instants.
func (e *testEngine) record(observerID, partnerID string, at time.Time) *models.Encounter {
	e.store.Lock()
	defer e.store.Unlock()
	return e.encounter.recordEncounter(observerID, partnerID, models.EncounterTypePhysical, "rel-1", at)
}

func TestClassify(t *testing.T) {
	day2 := baseTime.Add(26 * time.Hour)

	tests := []struct {
		name     string
		history  []time.Time // prior encounter instants with the partner
		now      time.Time
		expected string
	}{
		{
			name:     "no history is a first encounter",
			now:      baseTime,
			expected: models.ScoreTypeFirstEncounter,
		},
		{
			name:     "prior day only is a different-day re-encounter",
			history:  []time.Time{baseTime},
			now:      day2,
			expected: models.ScoreTypeReEncounterDiffDay,
		},
		{
			name:     "second meeting today is a same-day re-encounter",
			history:  []time.Time{baseTime},
			now:      baseTime.Add(10 * time.Minute),
			expected: models.ScoreTypeReEncounterSameDay,
		},
		{
			name:     "third meeting today is spam",
			history:  []time.Time{baseTime, baseTime.Add(10 * time.Minute)},
			now:      baseTime.Add(20 * time.Minute),
			expected: models.ScoreTypeSpam,
		},
		{
			name: "two scoring events in the trailing 24h hit the anti-farm cap",
			// late-evening meetings on day one, report just after midnight
			history: []time.Time{
				time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC),
				time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC),
			},
			now:      time.Date(2025, 6, 2, 0, 30, 0, 0, time.UTC),
			expected: models.ScoreTypeSpam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			alice := e.addPerson(t, "alice")
			bob := e.addPerson(t, "bob")
			for _, at := range tt.history {
				e.record(alice.PartyID, bob.PartyID, at)
			}

			e.store.Lock()
			got := e.encounter.Classify(alice.PartyID, bob.PartyID, tt.now)
			e.store.Unlock()
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassify_ThirdSameDayAlwaysSpam(t *testing.T) {
	e := newTestEngine(t)
	e.config.Set("score.antifarm_cap", 50) // cap out of the way
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")

	e.record(alice.PartyID, bob.PartyID, baseTime)
	e.record(alice.PartyID, bob.PartyID, baseTime.Add(time.Hour))

	for i := 0; i < 3; i++ {
		enc := e.record(alice.PartyID, bob.PartyID, baseTime.Add(time.Duration(2+i)*time.Hour))
		assert.Equal(t, models.ScoreTypeSpam, enc.ScoreType)
		assert.Zero(t, enc.PointsAwarded)
	}
}

func TestClassify_HistoriesAreIndependent(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	carol := e.addPerson(t, "carol")

	// alice already met bob today; bob's only history is with carol
	e.record(alice.PartyID, bob.PartyID, baseTime)
	e.record(bob.PartyID, carol.PartyID, baseTime)

	e.store.Lock()
	defer e.store.Unlock()
	assert.Equal(t, models.ScoreTypeReEncounterSameDay, e.encounter.Classify(alice.PartyID, bob.PartyID, baseTime.Add(time.Minute)))
	assert.Equal(t, models.ScoreTypeFirstEncounter, e.encounter.Classify(bob.PartyID, alice.PartyID, baseTime.Add(time.Minute)))
}

func TestScore_LinearDecay(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	e.record(alice.PartyID, bob.PartyID, baseTime) // first encounter, 100 points

	window := e.config.DecayWindow()

	assert.InDelta(t, 100, e.encounter.Score(alice.PartyID, baseTime), 0.001)
	assert.InDelta(t, 50, e.encounter.Score(alice.PartyID, baseTime.Add(window/2)), 0.001)
	assert.Zero(t, e.encounter.Score(alice.PartyID, baseTime.Add(window)))
	assert.Zero(t, e.encounter.Score(alice.PartyID, baseTime.Add(2*window)))
}

func TestScore_Monotonicity(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	e.record(alice.PartyID, bob.PartyID, baseTime)
	e.record(alice.PartyID, bob.PartyID, baseTime.Add(time.Hour))

	prev := e.encounter.Score(alice.PartyID, baseTime.Add(2*time.Hour))
	for step := 1; step <= 40; step++ {
		now := baseTime.Add(2*time.Hour + time.Duration(step)*24*time.Hour)
		current := e.encounter.Score(alice.PartyID, now)
		assert.LessOrEqual(t, current, prev, "score must never grow without new events")
		prev = current
	}
}

func TestRawScore_SurvivesPruning(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	e.record(alice.PartyID, bob.PartyID, baseTime)

	afterWindow := baseTime.Add(e.config.DecayWindow() + time.Hour)
	pruned := e.encounter.PrunePointLogs(afterWindow)
	assert.Equal(t, 1, pruned)
	assert.Empty(t, e.store.PointLogs[alice.PartyID])

	// the undecayed balance is tracked on the party, not the pruned log
	raw, err := e.encounter.RawScore(alice.PartyID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, raw)
}

func TestPrunePointLogs_KeepsRecentEntries(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	carol := e.addPerson(t, "carol")

	e.record(alice.PartyID, bob.PartyID, baseTime)
	recent := baseTime.Add(29 * 24 * time.Hour)
	e.record(alice.PartyID, carol.PartyID, recent)

	pruned := e.encounter.PrunePointLogs(baseTime.Add(e.config.DecayWindow() + time.Hour))
	assert.Equal(t, 1, pruned)
	require.Len(t, e.store.PointLogs[alice.PartyID], 1)
	assert.Equal(t, recent, e.store.PointLogs[alice.PartyID][0].Timestamp)
}

func TestDeleteEncounter(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	enc := e.record(alice.PartyID, bob.PartyID, baseTime)

	assert.ErrorIs(t, e.encounter.DeleteEncounter(alice.PartyID, "nope"), ErrUnknownEncounter)

	require.NoError(t, e.encounter.DeleteEncounter(alice.PartyID, enc.EncounterID))
	history, err := e.encounter.GetEncounters(alice.PartyID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
