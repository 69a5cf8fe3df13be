package services

import (
	"log"
	"time"

	"github.com/google/uuid"

	"sonar_server/models"
	"sonar_server/utils"
)

// EncounterService classifies pairing events against each person's history
// and keeps the time-decayed score. Scores are recomputed on read, never
// stored.
type EncounterService struct {
	Store  *Store
	Config *ConfigService
}

// Classify inspects the observer's history with one specific partner and
// names the encounter. Spam comes first: two or more scoring events with
// this partner in the trailing 24h, or a third-or-later meeting on the same
// calendar day, both award nothing.
func (es *EncounterService) Classify(observerID, partnerID string, now time.Time) string {
	history := es.Store.Encounters[observerID]
	today := utils.DayString(now)

	var total, sameDay, scoring24h int
	for _, enc := range history {
		if enc.WithPartyID != partnerID {
			continue
		}
		total++
		if enc.Date == today {
			sameDay++
		}
		if enc.ScoreType != models.ScoreTypeSpam && now.Sub(enc.Timestamp) < 24*time.Hour {
			scoring24h++
		}
	}

	switch {
	case scoring24h >= es.Config.AntiFarmCap():
		return models.ScoreTypeSpam
	case sameDay >= 2:
		return models.ScoreTypeSpam
	case sameDay == 1:
		return models.ScoreTypeReEncounterSameDay
	case total > 0:
		return models.ScoreTypeReEncounterDiffDay
	default:
		return models.ScoreTypeFirstEncounter
	}
}

// pointsFor maps a score type to its configured value.
func (es *EncounterService) pointsFor(scoreType string) float64 {
	switch scoreType {
	case models.ScoreTypeFirstEncounter:
		return es.Config.FirstEncounterPoints()
	case models.ScoreTypeReEncounterDiffDay:
		return es.Config.ReEncounterDiffDayPoints()
	case models.ScoreTypeReEncounterSameDay:
		return es.Config.ReEncounterSameDayPoints()
	default:
		return 0
	}
}

// recordEncounter classifies and logs one side of a pairing, appending to
// the observer's trace and point log and crediting lifetime points. Spam is
// logged for history but awards zero. Callers hold the store lock.
func (es *EncounterService) recordEncounter(observerID, partnerID, encounterType, relationID string, now time.Time) *models.Encounter {
	scoreType := es.Classify(observerID, partnerID, now)
	points := es.pointsFor(scoreType)

	encounter := &models.Encounter{
		EncounterID:   uuid.NewString(),
		PartyID:       observerID,
		WithPartyID:   partnerID,
		Timestamp:     now,
		Date:          utils.DayString(now),
		Type:          encounterType,
		ScoreType:     scoreType,
		PointsAwarded: points,
		RelationID:    relationID,
	}
	es.Store.Encounters[observerID] = append(es.Store.Encounters[observerID], encounter)
	es.Store.MarkDirty(models.CollectionEncounters)

	if points > 0 {
		es.Store.PointLogs[observerID] = append(es.Store.PointLogs[observerID], &models.PointEntry{
			Value:       points,
			Type:        scoreType,
			Timestamp:   now,
			WithPartyID: partnerID,
		})
		if party, ok := es.Store.Parties[observerID]; ok {
			party.LifetimeEarned += points
		}
		es.Store.MarkDirty(models.CollectionPointLogs, models.CollectionParties)
	}

	return encounter
}

// Score returns the decayed score: each point entry contributes
// value × max(0, 1 − age/decayWindow), fading linearly to zero.
func (es *EncounterService) Score(partyID string, now time.Time) float64 {
	es.Store.Lock()
	defer es.Store.Unlock()
	return es.score(partyID, now)
}

func (es *EncounterService) score(partyID string, now time.Time) float64 {
	window := es.Config.DecayWindow()
	var total float64
	for _, entry := range es.Store.PointLogs[partyID] {
		age := now.Sub(entry.Timestamp)
		if age >= window {
			continue
		}
		factor := 1 - float64(age)/float64(window)
		if factor < 0 {
			factor = 0
		}
		total += entry.Value * factor
	}
	return total
}

// RawScore is the undecayed lifetime total minus what the party has already
// spent in the star shop. Decay never revokes spent currency.
func (es *EncounterService) RawScore(partyID string) (float64, error) {
	es.Store.Lock()
	defer es.Store.Unlock()
	party, ok := es.Store.Parties[partyID]
	if !ok {
		return 0, ErrUnknownParty
	}
	return es.rawScore(party), nil
}

func (es *EncounterService) rawScore(party *models.Party) float64 {
	return party.LifetimeEarned - party.PointsSpent
}

// GetEncounters returns a party's encounter trace, newest last.
func (es *EncounterService) GetEncounters(partyID string) ([]*models.Encounter, error) {
	es.Store.Lock()
	defer es.Store.Unlock()
	if _, ok := es.Store.Parties[partyID]; !ok {
		return nil, ErrUnknownParty
	}
	return append([]*models.Encounter(nil), es.Store.Encounters[partyID]...), nil
}

// DeleteEncounter removes one trace entry by explicit user action, the only
// mutation the append-only trace allows.
func (es *EncounterService) DeleteEncounter(partyID, encounterID string) error {
	es.Store.Lock()
	defer es.Store.Unlock()

	history := es.Store.Encounters[partyID]
	for i, enc := range history {
		if enc.EncounterID == encounterID {
			es.Store.Encounters[partyID] = append(history[:i], history[i+1:]...)
			es.Store.MarkDirty(models.CollectionEncounters)
			return nil
		}
	}
	return ErrUnknownEncounter
}

// PrunePointLogs drops point entries older than the decay window. Their
// decayed contribution is already zero; this bounds memory.
func (es *EncounterService) PrunePointLogs(now time.Time) int {
	es.Store.Lock()
	defer es.Store.Unlock()

	window := es.Config.DecayWindow()
	pruned := 0
	for partyID, entries := range es.Store.PointLogs {
		kept := entries[:0]
		for _, entry := range entries {
			if now.Sub(entry.Timestamp) < window {
				kept = append(kept, entry)
			} else {
				pruned++
			}
		}
		if len(kept) == 0 {
			delete(es.Store.PointLogs, partyID)
		} else {
			es.Store.PointLogs[partyID] = kept
		}
	}
	if pruned > 0 {
		es.Store.MarkDirty(models.CollectionPointLogs)
		log.Printf("🧹 Pruned %d decayed point entries", pruned)
	}
	return pruned
}
