package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/pkg/models"
)

// categoryState tracks one category through the balancing state machine.
type categoryState int

const (
	stateSeeded categoryState = iota
	stateNeedsMore
	stateBackfilling
	stateTrimming
	stateFinal
	stateEmpty
)

func (s categoryState) String() string {
	switch s {
	case stateSeeded:
		return "seeded"
	case stateNeedsMore:
		return "needs_more"
	case stateBackfilling:
		return "backfilling"
	case stateTrimming:
		return "trimming"
	case stateFinal:
		return "final"
	case stateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// BalanceStats summarizes what balancing had to do, for metrics and logs.
type BalanceStats struct {
	BackfillRounds  int
	Escalations     int
	EmptyCategories int
}

// CategoryBalancer guarantees that every category present in the final
// result holds exactly K places. Short categories trigger category-scoped
// backfill searches under relaxed scoring; one escalation round at a larger
// fetch size runs at most once. A category that cannot reach K is omitted
// entirely, never returned short.
type CategoryBalancer struct {
	gateway    PlaceSearchGateway
	classifier *CategoryClassifier
	scorer     *ConditionScorer
	dedup      *Deduplicator
	cfg        *config.RecommendationConfig
	logger     *logrus.Logger
}

func NewCategoryBalancer(
	gateway PlaceSearchGateway,
	classifier *CategoryClassifier,
	scorer *ConditionScorer,
	dedup *Deduplicator,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *CategoryBalancer {
	return &CategoryBalancer{
		gateway:    gateway,
		classifier: classifier,
		scorer:     scorer,
		dedup:      dedup,
		cfg:        cfg,
		logger:     logger,
	}
}

// Balance takes the seeded per-category candidates from the shared
// search-and-score pass and drives each category to Final or Empty.
func (b *CategoryBalancer) Balance(
	ctx context.Context,
	req *models.RecommendationRequest,
	seeded map[models.Category][]models.CandidatePlace,
) (map[models.Category][]models.CandidatePlace, BalanceStats) {

	k := b.cfg.PlacesPerCategory
	final := make(map[models.Category][]models.CandidatePlace, len(seeded))
	stats := BalanceStats{}

	for _, category := range models.AllCategories() {
		held := seeded[category]
		state := stateSeeded

		switch {
		case len(held) == k:
			state = stateFinal
		case len(held) > k:
			b.logger.WithFields(logrus.Fields{
				"category": category,
				"state":    stateTrimming.String(),
				"excess":   len(held) - k,
			}).Debug("Trimming category")
			held = trimToK(held, k)
			state = stateFinal
		default:
			state = stateNeedsMore
		}

		if state == stateNeedsMore {
			state = stateBackfilling
			held = b.backfill(ctx, req, category, held, b.cfg.BackfillMultiplier)
			stats.BackfillRounds++

			// Escalation runs at most once, with a larger fetch.
			if len(held) < k {
				held = b.backfill(ctx, req, category, held, b.cfg.EscalationMultiplier)
				stats.Escalations++
			}

			if len(held) >= k {
				held = held[:k]
				state = stateFinal
			} else {
				state = stateEmpty
			}
		}

		b.logger.WithFields(logrus.Fields{
			"category": category,
			"state":    state.String(),
			"count":    len(held),
		}).Debug("Category balanced")

		if state == stateFinal {
			final[category] = held
		} else {
			stats.EmptyCategories++
		}
	}

	return final, stats
}

// backfill requests shortfall×multiplier category-scoped candidates, scores
// them under the relaxed floor and appends up to the shortfall. A gateway
// failure is treated as an empty round; the request carries on.
func (b *CategoryBalancer) backfill(
	ctx context.Context,
	req *models.RecommendationRequest,
	category models.Category,
	held []models.CandidatePlace,
	multiplier int,
) []models.CandidatePlace {

	k := b.cfg.PlacesPerCategory
	shortfall := k - len(held)
	if shortfall <= 0 {
		return held
	}

	raw, err := b.gateway.SearchNearByCategory(ctx, req.VenueName, category, shortfall*multiplier)
	if err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"venue":    req.VenueName,
			"category": category,
		}).Warn("Backfill search failed, treating round as empty")
		return held
	}

	// Backfill rounds are not guaranteed disjoint from earlier rounds, so
	// deduplication is reapplied against everything already held.
	raw = b.dedup.Deduplicate(raw)

	heldKeys := make(map[string]struct{}, len(held))
	for _, c := range held {
		heldKeys[b.dedup.Key(c)] = struct{}{}
	}

	var accepted []models.CandidatePlace
	for _, c := range raw {
		if _, dup := heldKeys[b.dedup.Key(c)]; dup {
			continue
		}

		assigned, ok := b.classifier.Classify(c)
		if !ok || assigned != category {
			continue
		}
		c.Category = assigned

		// The relaxed floor loosens scoring only; profile exclusions stay
		// hard gates in every round.
		if !b.scorer.ProfileCompatible(c, req.ProfileType) {
			continue
		}

		score := b.scorer.Score(c, req, -1)
		if score < b.cfg.Scoring.RelaxedFloor {
			continue
		}
		c.Score = score
		reason := b.scorer.Reason(c, req)
		c.AIReason = &reason

		accepted = append(accepted, c)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})

	for _, c := range accepted {
		if len(held) >= k {
			break
		}
		held = append(held, c)
		heldKeys[b.dedup.Key(c)] = struct{}{}
	}

	return held
}

// trimToK keeps the top K by (rating desc, nulls last) then (distance asc,
// nulls last), preserving insertion order among full ties.
func trimToK(held []models.CandidatePlace, k int) []models.CandidatePlace {
	sort.SliceStable(held, func(i, j int) bool {
		ri, rj := held[i].Rating, held[j].Rating
		if (ri == nil) != (rj == nil) {
			return ri != nil
		}
		if ri != nil && rj != nil && *ri != *rj {
			return *ri > *rj
		}

		di, dj := held[i].DistanceKm, held[j].DistanceKm
		if (di == nil) != (dj == nil) {
			return di != nil
		}
		if di != nil && dj != nil && *di != *dj {
			return *di < *dj
		}
		return false
	})
	return held[:k]
}
