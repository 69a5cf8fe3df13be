package services

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"sonar_server/models"
	"sonar_server/utils"
)

// PersistenceService mirrors the in-memory store into DynamoDB, one item per
// collection. The mirror is best-effort and asynchronous: nothing in the
// matching path ever waits on it. On startup the mirror is the source the
// store loads from; at runtime the store is authoritative and the mirror
// only has to catch up eventually.
type PersistenceService struct {
	Store        *Store
	Dynamo       *DynamoService
	FallbackPath string // local snapshot written when DynamoDB stays unreachable
}

// Load reads every collection item from the mirror table into the store and
// reports how many collections it found. A missing table or empty scan
// yields an empty store, which is a valid first boot.
func (ps *PersistenceService) Load(ctx context.Context) (int, error) {
	items, err := ps.Dynamo.ScanItems(ctx, models.CollectionsTable)
	if err != nil {
		return 0, err
	}

	collections := make(map[string]string, len(items))
	for _, item := range items {
		name := utils.ExtractString(item, "name")
		payload := utils.ExtractString(item, "payload")
		if name == "" || payload == "" {
			continue
		}
		collections[name] = payload
	}

	if len(collections) == 0 {
		log.Println("💾 No durable collections found")
		return 0, nil
	}

	ps.Store.Lock()
	defer ps.Store.Unlock()
	for name, payload := range collections {
		if err := ps.Store.unmarshalCollection(name, payload); err != nil {
			return 0, err
		}
	}
	log.Printf("💾 Loaded %d collections from DynamoDB", len(collections))
	return len(collections), nil
}

// Bootstrap fills the store at startup: the mirror is the preferred source,
// the local fallback snapshot covers the outage-then-restart case where the
// mirror is unreachable or never caught up. A missing fallback file on a
// true first boot is not an error.
func (ps *PersistenceService) Bootstrap(ctx context.Context) {
	loaded, err := ps.Load(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to load durable collections: %v", err)
	}
	if loaded > 0 || ps.FallbackPath == "" {
		return
	}

	if err := ps.LoadFallback(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read local fallback snapshot: %v", err)
		}
		return
	}
	log.Printf("💾 Restored store from local fallback snapshot %s", ps.FallbackPath)
}

// Flush writes every dirty collection to the mirror. Each write is retried
// with exponential backoff; a collection that still fails is re-marked dirty
// for the next cycle and the whole store is snapshotted to the local
// fallback file so an outage cannot lose state.
func (ps *PersistenceService) Flush(ctx context.Context) {
	ps.Store.Lock()
	names := ps.Store.TakeDirty()
	payloads := make(map[string]string, len(names))
	for _, name := range names {
		payload, err := ps.Store.marshalCollection(name)
		if err != nil {
			log.Printf("❌ Skipping unflushable collection %s: %v", name, err)
			continue
		}
		payloads[name] = payload
	}
	ps.Store.Unlock()

	if len(payloads) == 0 {
		return
	}

	failed := false
	for name, payload := range payloads {
		record := models.CollectionRecord{
			Name:      name,
			Payload:   payload,
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		op := func() error {
			return ps.Dynamo.PutItem(ctx, models.CollectionsTable, record)
		}
		err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4))
		if err != nil {
			log.Printf("❌ Failed to flush collection %s after retries: %v", name, err)
			ps.Store.Lock()
			ps.Store.MarkDirty(name)
			ps.Store.Unlock()
			failed = true
			continue
		}
	}

	if failed && ps.FallbackPath != "" {
		ps.writeFallback()
	}
}

// FlushLoop runs Flush on a fixed cadence until the context is cancelled,
// then performs one final flush on the way out.
func (ps *PersistenceService) FlushLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			ps.Flush(context.Background())
			return
		case <-ticker.C:
			ps.Flush(ctx)
		}
	}
}

func (ps *PersistenceService) writeFallback() {
	snapshot, err := ps.Store.Export()
	if err != nil {
		log.Printf("❌ Failed to build fallback snapshot: %v", err)
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("❌ Failed to marshal fallback snapshot: %v", err)
		return
	}
	if err := os.WriteFile(ps.FallbackPath, data, 0o600); err != nil {
		log.Printf("❌ Failed to write fallback snapshot to %s: %v", ps.FallbackPath, err)
		return
	}
	log.Printf("💾 Wrote local fallback snapshot to %s", ps.FallbackPath)
}

// LoadFallback restores the store from the local fallback snapshot, for
// recovery when the mirror table is empty but a fallback file exists.
func (ps *PersistenceService) LoadFallback() error {
	data, err := os.ReadFile(ps.FallbackPath)
	if err != nil {
		return err
	}
	var snapshot map[string]string
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	return ps.Store.Import(snapshot)
}
