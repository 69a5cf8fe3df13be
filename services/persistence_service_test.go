package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar_server/models"
	"sonar_server/utils"
)

// fakeDynamo keeps items in memory, keyed by the "name" attribute.
type fakeDynamo struct {
	items    map[string]map[string]types.AttributeValue
	failPuts bool
	puts     int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts++
	if f.failPuts {
		return nil, errors.New("simulated outage")
	}
	f.items[utils.ExtractString(params.Item, "name")] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	var items []map[string]types.AttributeValue
	for _, item := range f.items {
		items = append(items, item)
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func TestPersistence_FlushAndLoadRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")
	bob := e.addPerson(t, "bob")
	_, err := e.relations.RecordPairing(alice.PartyID, bob.PartyID, models.EncounterTypePhysical, "", baseTime)
	require.NoError(t, err)

	fake := newFakeDynamo()
	persistence := &PersistenceService{Store: e.store, Dynamo: &DynamoService{Client: fake}}
	persistence.Flush(context.Background())

	// all touched collections were mirrored
	assert.Contains(t, fake.items, models.CollectionParties)
	assert.Contains(t, fake.items, models.CollectionRelations)
	assert.Contains(t, fake.items, models.CollectionEncounters)

	// a fresh store loads back the same state
	restored := NewStore()
	restoredIndex := NewIndexService(restored)
	loader := &PersistenceService{Store: restored, Dynamo: &DynamoService{Client: fake}}
	loaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, loaded, 3)
	restoredIndex.Rebuild()

	assert.Len(t, restored.Parties, 2)
	assert.Len(t, restored.Relations, 1)
	assert.Len(t, restored.Encounters[alice.PartyID], 1)

	restored.Lock()
	rel := restoredIndex.ActiveRelationForPair(alice.PartyID, bob.PartyID, baseTime.Add(time.Minute))
	restored.Unlock()
	assert.NotNil(t, rel)
}

func TestPersistence_FlushIsIncremental(t *testing.T) {
	e := newTestEngine(t)
	e.addPerson(t, "alice")

	fake := newFakeDynamo()
	persistence := &PersistenceService{Store: e.store, Dynamo: &DynamoService{Client: fake}}

	persistence.Flush(context.Background())
	written := fake.puts
	assert.Greater(t, written, 0)

	// nothing dirty: the next flush writes nothing
	persistence.Flush(context.Background())
	assert.Equal(t, written, fake.puts)
}

func TestPersistence_OutageFallsBackToLocalSnapshot(t *testing.T) {
	e := newTestEngine(t)
	e.addPerson(t, "alice")

	fallback := filepath.Join(t.TempDir(), "fallback.json")
	fake := newFakeDynamo()
	fake.failPuts = true
	persistence := &PersistenceService{
		Store:        e.store,
		Dynamo:       &DynamoService{Client: fake},
		FallbackPath: fallback,
	}
	persistence.Flush(context.Background())

	// the snapshot landed locally and the collection stays dirty
	_, err := os.Stat(fallback)
	require.NoError(t, err)

	e.store.Lock()
	dirty := e.store.TakeDirty()
	e.store.Unlock()
	assert.Contains(t, dirty, models.CollectionParties)

	// the fallback restores into a fresh store
	restored := NewStore()
	loader := &PersistenceService{Store: restored, FallbackPath: fallback}
	require.NoError(t, loader.LoadFallback())
	assert.Len(t, restored.Parties, 1)
}

func TestPersistence_BootstrapRestoresFallbackAfterOutage(t *testing.T) {
	e := newTestEngine(t)
	alice := e.addPerson(t, "alice")

	// an outage leaves the state only in the local snapshot
	fallback := filepath.Join(t.TempDir(), "fallback.json")
	down := newFakeDynamo()
	down.failPuts = true
	writer := &PersistenceService{Store: e.store, Dynamo: &DynamoService{Client: down}, FallbackPath: fallback}
	writer.Flush(context.Background())

	// a restart against an empty mirror picks the snapshot up
	restored := NewStore()
	boot := &PersistenceService{Store: restored, Dynamo: &DynamoService{Client: newFakeDynamo()}, FallbackPath: fallback}
	boot.Bootstrap(context.Background())

	require.Len(t, restored.Parties, 1)
	assert.Equal(t, alice.Nickname, restored.Parties[alice.PartyID].Nickname)
}

func TestPersistence_BootstrapPrefersMirrorOverFallback(t *testing.T) {
	e := newTestEngine(t)
	e.addPerson(t, "alice")

	fake := newFakeDynamo()
	persistence := &PersistenceService{Store: e.store, Dynamo: &DynamoService{Client: fake}}
	persistence.Flush(context.Background())

	// a stale snapshot with different contents sits beside a healthy mirror
	stale := newTestEngine(t)
	stale.addPerson(t, "bob")
	fallback := filepath.Join(t.TempDir(), "fallback.json")
	staleWriter := &PersistenceService{Store: stale.store, Dynamo: &DynamoService{Client: newFakeDynamo()}, FallbackPath: fallback}
	snapshot, err := stale.store.Export()
	require.NoError(t, err)
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(staleWriter.FallbackPath, data, 0o600))

	restored := NewStore()
	boot := &PersistenceService{Store: restored, Dynamo: &DynamoService{Client: fake}, FallbackPath: fallback}
	boot.Bootstrap(context.Background())

	// the mirror wins; the stale snapshot is ignored
	require.Len(t, restored.Parties, 1)
	e.store.Lock()
	defer e.store.Unlock()
	for id := range e.store.Parties {
		assert.Contains(t, restored.Parties, id)
	}
}
