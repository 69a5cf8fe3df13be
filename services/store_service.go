package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"sonar_server/models"
)

// Store is the single authoritative in-memory state of the engine. Every
// handler computes and commits its decision under the store lock before any
// external I/O happens; the DynamoDB mirror and the socket fan-out both run
// after commit. That lock-then-commit discipline is what keeps a slow
// external call from racing a concurrently arriving event for the same
// party.
type Store struct {
	mu sync.Mutex

	Parties      map[string]*models.Party
	Relations    map[string]*models.Relation
	Encounters   map[string][]*models.Encounter  // keyed by owner partyId
	PointLogs    map[string][]*models.PointEntry // keyed by partyId
	Streaks      map[string]*models.Streak       // keyed by sorted pair key
	Stars        map[string][]*models.Star       // keyed by recipient partyId
	PendingStars map[string][]*models.PendingStar
	Events       map[string]*models.Event

	dirty map[string]struct{}
}

// NewStore returns an empty store with every collection initialized.
func NewStore() *Store {
	return &Store{
		Parties:      make(map[string]*models.Party),
		Relations:    make(map[string]*models.Relation),
		Encounters:   make(map[string][]*models.Encounter),
		PointLogs:    make(map[string][]*models.PointEntry),
		Streaks:      make(map[string]*models.Streak),
		Stars:        make(map[string][]*models.Star),
		PendingStars: make(map[string][]*models.PendingStar),
		Events:       make(map[string]*models.Event),
		dirty:        make(map[string]struct{}),
	}
}

func (s *Store) Lock()   { s.mu.Lock() }
func (s *Store) Unlock() { s.mu.Unlock() }

// MarkDirty flags a collection for the next mirror flush. Callers hold the
// store lock.
func (s *Store) MarkDirty(collections ...string) {
	for _, c := range collections {
		s.dirty[c] = struct{}{}
	}
}

// MarkAllDirty flags every collection, used after a backup restore.
func (s *Store) MarkAllDirty() {
	s.MarkDirty(
		models.CollectionParties,
		models.CollectionRelations,
		models.CollectionEncounters,
		models.CollectionPointLogs,
		models.CollectionStreaks,
		models.CollectionStars,
		models.CollectionPendingStars,
		models.CollectionEvents,
	)
}

// TakeDirty returns and clears the dirty set. Callers hold the store lock.
func (s *Store) TakeDirty() []string {
	names := make([]string, 0, len(s.dirty))
	for name := range s.dirty {
		names = append(names, name)
	}
	s.dirty = make(map[string]struct{})
	return names
}

// marshalCollection serializes one collection to JSON. Lock held by caller.
func (s *Store) marshalCollection(name string) (string, error) {
	var v interface{}
	switch name {
	case models.CollectionParties:
		v = s.Parties
	case models.CollectionRelations:
		v = s.Relations
	case models.CollectionEncounters:
		v = s.Encounters
	case models.CollectionPointLogs:
		v = s.PointLogs
	case models.CollectionStreaks:
		v = s.Streaks
	case models.CollectionStars:
		v = s.Stars
	case models.CollectionPendingStars:
		v = s.PendingStars
	case models.CollectionEvents:
		v = s.Events
	default:
		return "", fmt.Errorf("unknown collection %q", name)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal collection %q: %w", name, err)
	}
	return string(payload), nil
}

// unmarshalCollection replaces one collection from its JSON payload. Lock
// held by caller.
func (s *Store) unmarshalCollection(name, payload string) error {
	var err error
	switch name {
	case models.CollectionParties:
		m := make(map[string]*models.Party)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.Parties = m
		}
	case models.CollectionRelations:
		m := make(map[string]*models.Relation)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.Relations = m
		}
	case models.CollectionEncounters:
		m := make(map[string][]*models.Encounter)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.Encounters = m
		}
	case models.CollectionPointLogs:
		m := make(map[string][]*models.PointEntry)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.PointLogs = m
		}
	case models.CollectionStreaks:
		m := make(map[string]*models.Streak)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.Streaks = m
		}
	case models.CollectionStars:
		m := make(map[string][]*models.Star)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.Stars = m
		}
	case models.CollectionPendingStars:
		m := make(map[string][]*models.PendingStar)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.PendingStars = m
		}
	case models.CollectionEvents:
		m := make(map[string]*models.Event)
		err = json.Unmarshal([]byte(payload), &m)
		if err == nil {
			s.Events = m
		}
	default:
		return fmt.Errorf("unknown collection %q", name)
	}
	if err != nil {
		return fmt.Errorf("failed to unmarshal collection %q: %w", name, err)
	}
	return nil
}

// Export serializes every collection, for backups and the local fallback
// snapshot.
func (s *Store) Export() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for _, name := range []string{
		models.CollectionParties,
		models.CollectionRelations,
		models.CollectionEncounters,
		models.CollectionPointLogs,
		models.CollectionStreaks,
		models.CollectionStars,
		models.CollectionPendingStars,
		models.CollectionEvents,
	} {
		payload, err := s.marshalCollection(name)
		if err != nil {
			return nil, err
		}
		out[name] = payload
	}
	return out, nil
}

// Import replaces the store contents from an exported snapshot and flags
// everything dirty so the mirror catches up.
func (s *Store) Import(collections map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, payload := range collections {
		if err := s.unmarshalCollection(name, payload); err != nil {
			return err
		}
	}
	s.MarkAllDirty()
	return nil
}
