package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar_server/models"
)

func TestStore_DirtyTracking(t *testing.T) {
	s := NewStore()

	s.Lock()
	assert.Empty(t, s.TakeDirty())

	s.MarkDirty(models.CollectionParties)
	s.MarkDirty(models.CollectionParties, models.CollectionStreaks)
	dirty := s.TakeDirty()
	s.Unlock()

	// duplicates collapse, and taking clears the set
	assert.ElementsMatch(t, []string{models.CollectionParties, models.CollectionStreaks}, dirty)

	s.Lock()
	assert.Empty(t, s.TakeDirty())
	s.Unlock()
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	_, err := e.relations.RecordPairing(alice.PartyID, bob.PartyID, models.EncounterTypePhysical, "", baseTime)
	require.NoError(t, err)

	snapshot, err := e.store.Export()
	require.NoError(t, err)

	restored := NewStore()
	require.NoError(t, restored.Import(snapshot))

	assert.Len(t, restored.Parties, 2)
	assert.Len(t, restored.Relations, 1)
	assert.Len(t, restored.Encounters[alice.PartyID], 1)
	assert.Len(t, restored.PointLogs[bob.PartyID], 1)
	assert.Equal(t, alice.Nickname, restored.Parties[alice.PartyID].Nickname)

	// an import is a full replacement, so everything is dirty again
	restored.Lock()
	dirty := restored.TakeDirty()
	restored.Unlock()
	assert.Len(t, dirty, 8)
}

func TestStore_UnknownCollectionRejected(t *testing.T) {
	s := NewStore()
	s.Lock()
	defer s.Unlock()

	_, err := s.marshalCollection("nope")
	assert.Error(t, err)
	assert.Error(t, s.unmarshalCollection("nope", "{}"))
}
