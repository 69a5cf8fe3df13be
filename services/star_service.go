package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"sonar_server/models"
	"sonar_server/utils"
)

// StarService runs the streak and star economy: per-pair daily streaks,
// unique-partner milestones, forced donation of minted stars and the
// rarity-escalated star shop.
type StarService struct {
	Store     *Store
	Index     *IndexService
	Config    *ConfigService
	Encounter *EncounterService
	Notifier  Notifier
}

// StreakUpdate reports what a pairing did to the pair's streak.
type StreakUpdate struct {
	PairKey    string `json:"pairKey"`
	StreakDays int    `json:"streakDays"`
	BestStreak int    `json:"bestStreak"`
	StarsTotal int    `json:"starsTotal"`
	Crossed    bool   `json:"crossed"` // a star threshold was crossed by this pairing
}

// afterPairing advances the streak for the pair and recomputes milestones
// for each human side, minting pending stars where thresholds are crossed.
// Callers hold the store lock; returned notifications must be published by
// the caller after the lock is released.
func (ss *StarService) afterPairing(a, b string, now time.Time) (*StreakUpdate, []pendingNotice) {
	var notices []pendingNotice

	update := ss.advanceStreak(a, b, now)
	if update != nil && update.Crossed {
		for _, partyID := range []string{a, b} {
			if party, ok := ss.Store.Parties[partyID]; ok && party.IsPerson() {
				pending := ss.mintPendingStar(partyID, models.StarReasonStreak, update.PairKey, now)
				notices = append(notices, pendingNotice{PartyID: partyID, Pending: pending})
			}
		}
		for _, partyID := range []string{a, b} {
			notices = append(notices, pendingNotice{PartyID: partyID, Streak: update})
		}
	}

	for _, partyID := range []string{a, b} {
		party, ok := ss.Store.Parties[partyID]
		if !ok || !party.IsPerson() {
			continue
		}
		for _, pending := range ss.updateMilestones(party, now) {
			notices = append(notices, pendingNotice{PartyID: partyID, Pending: pending})
		}
	}

	return update, notices
}

// pendingNotice carries a post-commit notification: either a freshly minted
// pending star or a streak milestone.
type pendingNotice struct {
	PartyID string
	Pending *models.PendingStar
	Streak  *StreakUpdate
}

// publishNotices fans out queued notifications. Called without the lock.
func (ss *StarService) publishNotices(notices []pendingNotice) {
	for _, n := range notices {
		if n.Streak != nil {
			ss.Notifier.Publish(n.PartyID, EventStreakMilestone, map[string]interface{}{
				"streakDays": n.Streak.StreakDays,
				"starsTotal": n.Streak.StarsTotal,
			})
			continue
		}
		if n.Pending != nil {
			ss.Notifier.Publish(n.PartyID, EventStarPending, map[string]interface{}{
				"pendingStarId": n.Pending.PendingStarID,
				"reason":        n.Pending.Reason,
				"totalPending":  len(ss.pendingFor(n.PartyID)),
			})
		}
	}
}

func (ss *StarService) pendingFor(partyID string) []*models.PendingStar {
	ss.Store.Lock()
	defer ss.Store.Unlock()
	return append([]*models.PendingStar(nil), ss.Store.PendingStars[partyID]...)
}

// advanceStreak applies one calendar-day pairing to the pair's streak:
// next-day meetings extend it, a gap over one day resets it to 1 and repeat
// same-day meetings are idempotent. Lock held by caller.
func (ss *StarService) advanceStreak(a, b string, now time.Time) *StreakUpdate {
	key := utils.PairKey(a, b)
	date := utils.DayString(now)

	streak, ok := ss.Store.Streaks[key]
	if !ok {
		streak = &models.Streak{PairKey: key}
		ss.Store.Streaks[key] = streak
	}

	if streak.LastDate == date {
		return nil
	}

	if utils.IsNextDay(streak.LastDate, date) {
		streak.CurrentStreak++
	} else {
		streak.CurrentStreak = 1
		streak.StarsAwarded = 0
	}
	streak.LastDate = date
	if streak.CurrentStreak > streak.BestStreak {
		streak.BestStreak = streak.CurrentStreak
	}
	streak.History = append(streak.History, models.StreakDay{Date: date, Streak: streak.CurrentStreak})
	ss.Store.MarkDirty(models.CollectionStreaks)

	update := &StreakUpdate{
		PairKey:    key,
		StreakDays: streak.CurrentStreak,
		BestStreak: streak.BestStreak,
	}

	interval := ss.Config.StreakStarInterval()
	if interval > 0 {
		earned := streak.CurrentStreak / interval
		if earned > streak.StarsAwarded {
			streak.StarsAwarded = earned
			update.Crossed = true
		}
		update.StarsTotal = streak.StarsAwarded
	}
	return update
}

// updateMilestones recounts a party's distinct human partners and mints a
// pending star for each newly crossed multiple of the milestone interval.
// Event and service-provider partners do not count. Lock held by caller.
func (ss *StarService) updateMilestones(party *models.Party, now time.Time) []*models.PendingStar {
	interval := ss.Config.MilestoneInterval()
	if interval <= 0 {
		return nil
	}

	partners := make(map[string]bool)
	for _, enc := range ss.Store.Encounters[party.PartyID] {
		partner, ok := ss.Store.Parties[enc.WithPartyID]
		if ok && partner.IsPerson() {
			partners[enc.WithPartyID] = true
		}
	}

	earned := len(partners) / interval
	var minted []*models.PendingStar
	for party.MilestonesAwarded < earned {
		party.MilestonesAwarded++
		context := fmt.Sprintf("%d partners", party.MilestonesAwarded*interval)
		minted = append(minted, ss.mintPendingStar(party.PartyID, models.StarReasonMilestone, context, now))
	}
	if len(minted) > 0 {
		ss.Store.MarkDirty(models.CollectionParties)
	}
	return minted
}

// mintPendingStar queues a reward on its earner. The earner must donate it
// before it becomes a Star. Lock held by caller.
func (ss *StarService) mintPendingStar(ownerID, reason, context string, now time.Time) *models.PendingStar {
	pending := &models.PendingStar{
		PendingStarID: uuid.NewString(),
		OwnerID:       ownerID,
		Reason:        reason,
		Context:       context,
		EarnedAt:      now,
	}
	ss.Store.PendingStars[ownerID] = append(ss.Store.PendingStars[ownerID], pending)
	ss.Store.MarkDirty(models.CollectionPendingStars)
	log.Printf("⭐ Minted pending star for %s (%s: %s)", ownerID, reason, context)
	return pending
}

// Donate attaches a pending star to a chosen recipient. Self-donation is
// rejected and the directed donor→recipient cap applies. The pending entry,
// the new star and the donor indexes all move in one locked step.
func (ss *StarService) Donate(ownerID, pendingStarID, toPartyID string, now time.Time) (*models.Star, error) {
	ss.Store.Lock()

	if _, ok := ss.Store.Parties[toPartyID]; !ok {
		ss.Store.Unlock()
		return nil, ErrUnknownParty
	}
	if toPartyID == ownerID {
		ss.Store.Unlock()
		return nil, ErrSelfDonation
	}
	if ss.Index.DonationCount(ownerID, toPartyID) >= ss.Config.MaxGiftsPerPair() {
		ss.Store.Unlock()
		return nil, ErrDonationCapReached
	}

	pendingList := ss.Store.PendingStars[ownerID]
	idx := -1
	for i, p := range pendingList {
		if p.PendingStarID == pendingStarID {
			idx = i
			break
		}
	}
	if idx < 0 {
		ss.Store.Unlock()
		return nil, ErrUnknownStar
	}

	ss.Store.PendingStars[ownerID] = append(pendingList[:idx], pendingList[idx+1:]...)
	star := &models.Star{
		StarID:      uuid.NewString(),
		RecipientID: toPartyID,
		FromPartyID: ownerID,
		DonatedAt:   now,
		Kind:        models.StarKindEarned,
	}
	ss.Store.Stars[toPartyID] = append(ss.Store.Stars[toPartyID], star)
	ss.Index.RegisterDonation(star)
	ss.Store.MarkDirty(models.CollectionPendingStars, models.CollectionStars)
	ss.Store.Unlock()

	ss.Notifier.Publish(toPartyID, EventStarReceived, map[string]interface{}{
		"starId":      star.StarID,
		"fromPartyId": ownerID,
	})
	ss.Notifier.Publish(ownerID, EventDonationConfirmed, map[string]interface{}{
		"starId":      star.StarID,
		"recipientId": toPartyID,
	})
	log.Printf("⭐ %s donated star %s to %s", ownerID, star.StarID, toPartyID)
	return star, nil
}

// StarCost prices the next star for a recipient with rarity escalation:
// round(basePrice × multiplier^existingStars). Each successive star for the
// same recipient is strictly more expensive.
func (ss *StarService) StarCost(existingStars int) float64 {
	base := ss.Config.StarBasePrice()
	multiplier := ss.Config.StarPriceMultiplier()
	return math.Round(base * math.Pow(multiplier, float64(existingStars)))
}

// Purchase buys a star for self or as a gift, spending raw score. Gifts
// honor the directed donor→recipient cap.
func (ss *StarService) Purchase(buyerID, recipientID string, now time.Time) (*models.Star, float64, error) {
	ss.Store.Lock()

	buyer, ok := ss.Store.Parties[buyerID]
	if !ok {
		ss.Store.Unlock()
		return nil, 0, ErrUnknownParty
	}
	if _, ok := ss.Store.Parties[recipientID]; !ok {
		ss.Store.Unlock()
		return nil, 0, ErrUnknownParty
	}
	if recipientID != buyerID && ss.Index.DonationCount(buyerID, recipientID) >= ss.Config.MaxGiftsPerPair() {
		ss.Store.Unlock()
		return nil, 0, ErrDonationCapReached
	}

	price := ss.StarCost(len(ss.Store.Stars[recipientID]))
	if ss.Encounter.rawScore(buyer) < price {
		ss.Store.Unlock()
		return nil, 0, ErrInsufficientPoints
	}

	buyer.PointsSpent += price
	star := &models.Star{
		StarID:      uuid.NewString(),
		RecipientID: recipientID,
		FromPartyID: buyerID,
		DonatedAt:   now,
		Kind:        models.StarKindPurchased,
	}
	ss.Store.Stars[recipientID] = append(ss.Store.Stars[recipientID], star)
	ss.Index.RegisterDonation(star)
	ss.Store.MarkDirty(models.CollectionStars, models.CollectionParties)
	ss.Store.Unlock()

	if recipientID != buyerID {
		ss.Notifier.Publish(recipientID, EventStarReceived, map[string]interface{}{
			"starId":      star.StarID,
			"fromPartyId": buyerID,
		})
	}
	log.Printf("⭐ %s bought star %s for %s at %.0f points", buyerID, star.StarID, recipientID, price)
	return star, price, nil
}

// GetStars returns a party's permanent stars.
func (ss *StarService) GetStars(partyID string) ([]*models.Star, error) {
	ss.Store.Lock()
	defer ss.Store.Unlock()
	if _, ok := ss.Store.Parties[partyID]; !ok {
		return nil, ErrUnknownParty
	}
	return append([]*models.Star(nil), ss.Store.Stars[partyID]...), nil
}

// GetPendingStars returns the rewards awaiting a donation choice.
func (ss *StarService) GetPendingStars(partyID string) ([]*models.PendingStar, error) {
	ss.Store.Lock()
	defer ss.Store.Unlock()
	if _, ok := ss.Store.Parties[partyID]; !ok {
		return nil, ErrUnknownParty
	}
	return append([]*models.PendingStar(nil), ss.Store.PendingStars[partyID]...), nil
}

// GetStreak returns the streak record for a pair, if any.
func (ss *StarService) GetStreak(a, b string) (*models.Streak, bool) {
	ss.Store.Lock()
	defer ss.Store.Unlock()
	streak, ok := ss.Store.Streaks[utils.PairKey(a, b)]
	return streak, ok
}
