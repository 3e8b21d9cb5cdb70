package services

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/pkg/models"
)

// CategoryClassifier re-derives a candidate's semantic category from keyword
// rules over its name and description, overriding the provider's hint. It
// also rejects venues unsuitable for leisure visits (transit facilities,
// public administration) before any category pool sees them.
type CategoryClassifier struct {
	rules  *config.RuleConfig
	logger *logrus.Logger
}

func NewCategoryClassifier(rules *config.RuleConfig, logger *logrus.Logger) *CategoryClassifier {
	return &CategoryClassifier{
		rules:  rules,
		logger: logger,
	}
}

// Classify returns the candidate's category and whether it is suitable at
// all. Precedence is CAFE, then DINING, then ACTIVITY, first match wins;
// negative keyword guards resolve overlapping vocabulary (a cafe inside a
// food-alley name is neither). Without any match the provider hint stands.
func (cc *CategoryClassifier) Classify(c models.CandidatePlace) (models.Category, bool) {
	text := candidateText(c)

	if containsAny(text, cc.rules.RejectTerms) {
		cc.logger.WithField("name", c.Name).Debug("Rejected leisure-unsuitable candidate")
		return "", false
	}

	switch {
	case containsAny(text, cc.rules.CafeTerms) && !containsAny(text, cc.rules.CafeExcludeTerms):
		return models.CategoryCafe, true
	case containsAny(text, cc.rules.DiningTerms) && !containsAny(text, cc.rules.DiningExcludeTerms):
		return models.CategoryDining, true
	case containsAny(text, cc.rules.ActivityTerms):
		return models.CategoryActivity, true
	default:
		return c.Category, true
	}
}

// candidateText is the normalized match target: name plus description.
func candidateText(c models.CandidatePlace) string {
	text := c.Name
	if c.Description != nil {
		text += " " + *c.Description
	}
	return normalizeText(text)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(text, normalizeText(term)) {
			return true
		}
	}
	return false
}
