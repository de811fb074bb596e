// Package tagging derives priority and category from the free-text SOS message.
// Matching is a case-insensitive substring search over fixed keyword lists; it is
// deterministic and independent from the AI classifier.
package tagging

import (
	"strings"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
)

type categoryRule struct {
	category domain.Category
	keywords []string
}

// checked in order, first hit wins
var categoryRules = []categoryRule{
	{domain.CategoryStampede, []string{"stampede", "crowd", "crush", "trampl", "rush"}},
	{domain.CategoryFire, []string{"fire", "smoke", "burn", "flame", "blaze", "explosion"}},
	{domain.CategoryViolence, []string{"fight", "attack", "gun", "knife", "shoot", "violence", "assault", "robbery", "stab"}},
	{domain.CategoryMedical, []string{"injur", "unconscious", "bleed", "heart", "medical", "ambulance", "faint", "breath", "accident"}},
}

var (
	highPriority   = []string{"urgent", "emergency", "help", "dying", "dead", "fire", "gun", "shoot", "stampede", "trapped", "explosion", "unconscious"}
	mediumPriority = []string{"injur", "fight", "accident", "bleed", "smoke", "crowd", "attack", "hurt"}
)

func Category(message string) domain.Category {
	msg := strings.ToLower(message)
	for _, rule := range categoryRules {
		if containsAny(msg, rule.keywords) {
			return rule.category
		}
	}
	return domain.CategoryOther
}

func Priority(message string) domain.Priority {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, highPriority):
		return domain.PriorityHigh
	case containsAny(msg, mediumPriority):
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func Classify(message string) (domain.Priority, domain.Category) {
	return Priority(message), Category(message)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
