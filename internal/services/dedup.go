package services

import (
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/insertapp/insert/pkg/models"
)

// Deduplicator collapses candidates that share a normalized (name, address)
// key. Provider results routinely contain the same place under slightly
// different spellings, especially across backfill rounds.
type Deduplicator struct {
	logger *logrus.Logger
}

func NewDeduplicator(logger *logrus.Logger) *Deduplicator {
	return &Deduplicator{logger: logger}
}

// Deduplicate returns the input with duplicates collapsed. Candidates with a
// blank name are dropped; they can neither be deduplicated nor displayed.
// The surviving entry keeps the position of its first occurrence.
func (d *Deduplicator) Deduplicate(candidates []models.CandidatePlace) []models.CandidatePlace {
	seen := make(map[string]int, len(candidates))
	result := make([]models.CandidatePlace, 0, len(candidates))

	dropped := 0
	for _, c := range candidates {
		if strings.TrimSpace(c.Name) == "" {
			dropped++
			continue
		}

		key := d.Key(c)
		if idx, ok := seen[key]; ok {
			if preferOver(c, result[idx]) {
				result[idx] = c
			}
			continue
		}

		seen[key] = len(result)
		result = append(result, c)
	}

	if len(result) < len(candidates) {
		d.logger.WithFields(logrus.Fields{
			"input":      len(candidates),
			"output":     len(result),
			"blank_name": dropped,
		}).Debug("Deduplicated candidates")
	}

	return result
}

// Key builds the normalized dedup key for a candidate.
func (d *Deduplicator) Key(c models.CandidatePlace) string {
	address := ""
	if c.Address != nil {
		address = *c.Address
	}
	return normalizeText(c.Name) + "|" + normalizeText(address)
}

// preferOver reports whether a should replace b as the surviving duplicate:
// higher rating wins; with equal or missing ratings, shorter distance wins;
// otherwise the first-seen entry is kept.
func preferOver(a, b models.CandidatePlace) bool {
	if a.Rating != nil && b.Rating != nil && *a.Rating != *b.Rating {
		return *a.Rating > *b.Rating
	}
	if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
		return *a.DistanceKm < *b.DistanceKm
	}
	return false
}

// normalizeText lowercases, NFKC-folds (collapsing full/half-width forms)
// and squeezes internal whitespace to single spaces.
func normalizeText(s string) string {
	folded := strings.ToLower(norm.NFKC.String(s))
	return strings.Join(strings.Fields(folded), " ")
}
