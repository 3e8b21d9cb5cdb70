package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/pkg/models"
)

// rankingSignalTopN bounds the external-ranking bonus: a candidate ranked at
// 0-based position r within the top N earns (N − r) points.
const rankingSignalTopN = 10

// ConditionScorer computes a candidate's suitability for a request from the
// configured rule tables: condition-family cues, distance tiers, category
// base bonuses and the optional external ranking position. Profile
// compatibility is a hard gate on full matches, never a score adjustment.
type ConditionScorer struct {
	scoring *config.ScoringConfig
	rules   *config.RuleConfig
	logger  *logrus.Logger
}

func NewConditionScorer(scoring *config.ScoringConfig, rules *config.RuleConfig, logger *logrus.Logger) *ConditionScorer {
	return &ConditionScorer{
		scoring: scoring,
		rules:   rules,
		logger:  logger,
	}
}

// Score computes the additive suitability score. rank is the candidate's
// 0-based position in the external ranking signal, or -1 when absent.
func (cs *ConditionScorer) Score(c models.CandidatePlace, req *models.RecommendationRequest, rank int) float64 {
	text := candidateText(c)
	cond := normalizeText(req.CustomConditions)

	score := 0.0
	if cs.IsFullMatch(c, req) {
		score += cs.scoring.FullMatchBonus
	}
	score += cs.familyCueScore(text, cond)
	score += cs.DistanceBonus(c.DistanceKm)
	score += cs.scoring.CategoryBaseBonus[string(c.Category)]
	if rank >= 0 && rank < rankingSignalTopN {
		score += float64(rankingSignalTopN - rank)
	}

	return score
}

// IsFullMatch reports whether the candidate satisfies both profile
// compatibility and the primary theme of the free-text condition.
func (cs *ConditionScorer) IsFullMatch(c models.CandidatePlace, req *models.RecommendationRequest) bool {
	text := candidateText(c)
	if !cs.ProfileCompatible(c, req.ProfileType) {
		return false
	}

	cond := normalizeText(req.CustomConditions)
	for _, family := range cs.activeFamilies(cond) {
		for _, cue := range family.Cues {
			if containsAny(text, cue.Keywords) {
				return true
			}
		}
	}
	return false
}

// ProfileCompatible is the hard gate: a candidate whose text contains a
// venue type excluded for the profile never fully matches.
func (cs *ConditionScorer) ProfileCompatible(c models.CandidatePlace, profile models.ProfileType) bool {
	return !containsAny(candidateText(c), cs.rules.ProfileExclusions[string(profile)])
}

// WordOverlap is the partial-match fallback signal: the fraction of
// condition words found in the candidate text.
func (cs *ConditionScorer) WordOverlap(c models.CandidatePlace, conditions string) float64 {
	words := strings.Fields(normalizeText(conditions))
	if len(words) == 0 {
		return 0
	}

	text := candidateText(c)
	matched := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			matched++
		}
	}
	return float64(matched) / float64(len(words))
}

// DistanceBonus applies the proximity step function; unknown distances earn
// nothing.
func (cs *ConditionScorer) DistanceBonus(distanceKm *float64) float64 {
	if distanceKm == nil {
		return 0
	}
	for _, tier := range cs.scoring.DistanceTiers {
		if *distanceKm <= tier.MaxKm {
			return tier.Bonus
		}
	}
	return 0
}

// Reason builds the human-readable justification: a condition-family phrase
// (or a profile default) plus a proximity clause from the distance tiers.
func (cs *ConditionScorer) Reason(c models.CandidatePlace, req *models.RecommendationRequest) string {
	cond := normalizeText(req.CustomConditions)

	phrase := ""
	for _, family := range cs.activeFamilies(cond) {
		if family.ReasonPhrase != "" {
			phrase = family.ReasonPhrase
			break
		}
	}
	if phrase == "" {
		switch req.ProfileType {
		case models.ProfileAlone:
			phrase = "혼자 방문하기 좋은 곳"
		case models.ProfileCouple:
			phrase = "둘이 함께 가기 좋은 곳"
		case models.ProfileFamily:
			phrase = "가족 나들이에 좋은 곳"
		default:
			phrase = "행사 전후에 들르기 좋은 곳"
		}
	}

	if clause := cs.proximityClause(c.DistanceKm); clause != "" {
		return fmt.Sprintf("%s이에요. %s", phrase, clause)
	}
	return phrase + "이에요."
}

func (cs *ConditionScorer) proximityClause(distanceKm *float64) string {
	if distanceKm == nil {
		return ""
	}
	for i, tier := range cs.scoring.DistanceTiers {
		if *distanceKm <= tier.MaxKm {
			return fmt.Sprintf("행사장에서 도보 %d분 거리예요", (i+1)*5)
		}
	}
	return "행사장에서 조금 이동하면 닿는 거리예요"
}

// activeFamilies returns the condition families whose triggers appear in the
// normalized condition text.
func (cs *ConditionScorer) activeFamilies(cond string) []config.ConditionFamily {
	var active []config.ConditionFamily
	for _, family := range cs.rules.ConditionFamilies {
		if containsAny(cond, family.Triggers) {
			active = append(active, family)
		}
	}
	return active
}

func (cs *ConditionScorer) familyCueScore(text, cond string) float64 {
	total := 0.0
	for _, family := range cs.activeFamilies(cond) {
		boost := 0.0
		if containsAny(cond, family.BoostTriggers) {
			boost = family.BoostDelta
		}
		for _, cue := range family.Cues {
			if containsAny(text, cue.Keywords) {
				total += cue.Weight + boost
			}
		}
	}
	return total
}
