package services

import (
	"log"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"sonar_server/models"
)

// QueueEntry is one announcing session in the sonic queue. Entries are
// transient: they live in a TTL cache and are never persisted.
type QueueEntry struct {
	PartyID        string    `json:"partyId"`
	Slot           int       `json:"slot"`
	FrequencyHz    int       `json:"frequencyHz"`
	JoinedAt       time.Time `json:"joinedAt"`
	IsEventContext bool      `json:"isEventContext"`
	EventID        string    `json:"eventId,omitempty"`
}

// SlotAssignment is the reply to an announce.
type SlotAssignment struct {
	Slot        int `json:"slot"`
	FrequencyHz int `json:"frequencyHz"`
}

// ReportOutcome is the detector's answer to a detection report. A failed
// resolution is a retry signal, never a hard error: proximity matching is
// noisy by nature.
type ReportOutcome struct {
	Matched bool           `json:"matched"`
	Reason  string         `json:"reason,omitempty"` // set when Matched is false
	Result  *PairingResult `json:"result,omitempty"`
}

// SonicService assigns acoustic frequency slots to announcing sessions and
// resolves detection reports into pairings. The slot ring is shared by
// everyone; assignment is a plain round-robin counter with no affinity.
// A single service mutex serializes announce/report/stop, so the first of
// two racing reports wins and the second simply finds the slot empty.
type SonicService struct {
	Relations *RelationService
	Config    *ConfigService
	Notifier  Notifier

	mu          sync.Mutex
	queue       *cache.Cache
	slotCounter int
}

// NewSonicService builds the detector with its janitored announce queue.
func NewSonicService(relations *RelationService, config *ConfigService, notifier Notifier) *SonicService {
	return &SonicService{
		Relations: relations,
		Config:    config,
		Notifier:  notifier,
		queue:     cache.New(config.VisitorQueueTTL(), config.SonicSweepInterval()),
	}
}

// Announce places a session in the queue and returns its frequency slot.
// Operators announcing for an event get the long idle timeout; everyone
// else gets the short one.
func (ss *SonicService) Announce(partyID, eventID string, now time.Time) (*SlotAssignment, error) {
	ss.Relations.Store.Lock()
	party, ok := ss.Relations.Store.Parties[partyID]
	if !ok {
		ss.Relations.Store.Unlock()
		return nil, ErrUnknownParty
	}
	if !party.IsPairable() {
		ss.Relations.Store.Unlock()
		return nil, ErrNotPairable
	}
	if eventID != "" {
		event, ok := ss.Relations.Store.Events[eventID]
		if !ok {
			ss.Relations.Store.Unlock()
			return nil, ErrUnknownEvent
		}
		if event.CreatorID != partyID {
			ss.Relations.Store.Unlock()
			return nil, ErrNotEventCreator
		}
	}
	ss.Relations.Store.Unlock()

	ss.mu.Lock()
	defer ss.mu.Unlock()

	slot := ss.slotCounter % ss.Config.SlotCount()
	ss.slotCounter++

	entry := &QueueEntry{
		PartyID:        partyID,
		Slot:           slot,
		FrequencyHz:    ss.Config.BaseFrequencyHz() + slot*ss.Config.FrequencyStepHz(),
		JoinedAt:       now,
		IsEventContext: eventID != "",
		EventID:        eventID,
	}
	ttl := ss.Config.VisitorQueueTTL()
	if entry.IsEventContext {
		ttl = ss.Config.OperatorQueueTTL()
	}
	ss.queue.Set(partyID, entry, ttl)

	log.Printf("📡 %s announcing on slot %d (%d Hz, event=%q)", partyID, slot, entry.FrequencyHz, eventID)
	return &SlotAssignment{Slot: entry.Slot, FrequencyHz: entry.FrequencyHz}, nil
}

// holderOf returns the queue entry currently holding a slot. With more
// announcers than slots the newest same-slot entry shadows older ones.
// Service mutex held by caller.
func (ss *SonicService) holderOf(slot int) *QueueEntry {
	var holder *QueueEntry
	for _, item := range ss.queue.Items() {
		entry, ok := item.Object.(*QueueEntry)
		if !ok || entry.Slot != slot {
			continue
		}
		if holder == nil || entry.JoinedAt.After(holder.JoinedAt) {
			holder = entry
		}
	}
	return holder
}

// anyOperatorAnnouncing reports whether an event context is currently open.
// Service mutex held by caller.
func (ss *SonicService) anyOperatorAnnouncing() bool {
	for _, item := range ss.queue.Items() {
		if entry, ok := item.Object.(*QueueEntry); ok && entry.IsEventContext {
			return true
		}
	}
	return false
}

// Report resolves a detected slot into a pairing. Visitor-to-visitor
// matches are suppressed while an operator is announcing, because the
// intended target is the operator; the detecting party is told to retry.
func (ss *SonicService) Report(partyID string, detectedSlot int, now time.Time) (*ReportOutcome, error) {
	// reject an invalid reporter before touching the queue; a rejected call
	// must not consume anyone's entry
	ss.Relations.Store.Lock()
	reporter, ok := ss.Relations.Store.Parties[partyID]
	if !ok {
		ss.Relations.Store.Unlock()
		return nil, ErrUnknownParty
	}
	if !reporter.IsPairable() {
		ss.Relations.Store.Unlock()
		return nil, ErrNotPairable
	}
	ss.Relations.Store.Unlock()

	ss.mu.Lock()

	holder := ss.holderOf(detectedSlot)
	if holder == nil {
		ss.mu.Unlock()
		return &ReportOutcome{Reason: "no announcer on that slot"}, nil
	}
	if holder.PartyID == partyID {
		ss.mu.Unlock()
		return &ReportOutcome{Reason: "detected own signal"}, nil
	}

	if !holder.IsEventContext && ss.anyOperatorAnnouncing() {
		ss.mu.Unlock()
		outcome := &ReportOutcome{Reason: "an operator is announcing nearby"}
		ss.Notifier.Publish(partyID, EventRetryRequested, map[string]string{"reason": outcome.Reason})
		return outcome, nil
	}

	// commit the queue side of the decision before leaving the mutex:
	// operators survive with a refreshed timeout, visitors are consumed
	counterpartID := holder.PartyID
	encounterType := models.EncounterTypePhysical
	eventID := ""
	if holder.IsEventContext {
		encounterType = models.EncounterTypeCheckin
		eventID = holder.EventID
		counterpartID = holder.EventID
		holder.JoinedAt = now
		ss.queue.Set(holder.PartyID, holder, ss.Config.OperatorQueueTTL())
		ss.queue.Delete(partyID)
	} else {
		ss.queue.Delete(holder.PartyID)
		ss.queue.Delete(partyID)
	}
	ss.mu.Unlock()

	ss.Relations.Store.Lock()
	if counterpart, ok := ss.Relations.Store.Parties[counterpartID]; ok && counterpart.Type == models.PartyTypeService {
		encounterType = models.EncounterTypeService
	}
	ss.Relations.Store.Unlock()

	result, err := ss.Relations.RecordPairing(partyID, counterpartID, encounterType, eventID, now)
	if err != nil {
		return nil, err
	}

	ss.Notifier.Publish(partyID, EventMatchResolved, result.SideA)
	if !holder.IsEventContext {
		ss.Notifier.Publish(counterpartID, EventMatchResolved, result.SideB)
	}
	return &ReportOutcome{Matched: true, Result: result}, nil
}

// StopPresence removes a session from the queue. Accepts the party id of
// the announcer, or an event id for an operator closing a checkin.
func (ss *SonicService) StopPresence(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, found := ss.queue.Get(id); found {
		ss.queue.Delete(id)
		return
	}
	for key, item := range ss.queue.Items() {
		if entry, ok := item.Object.(*QueueEntry); ok && entry.EventID == id {
			ss.queue.Delete(key)
		}
	}
}

// QueueSize reports how many sessions are currently announcing.
func (ss *SonicService) QueueSize() int {
	return ss.queue.ItemCount()
}
