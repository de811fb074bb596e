package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
)

func TestCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg  string
		want domain.Category
	}{
		{"Huge STAMPEDE near gate 3", domain.CategoryStampede},
		{"people getting crushed in the crowd", domain.CategoryStampede},
		{"Building on fire, lots of smoke", domain.CategoryFire},
		{"a man with a knife is attacking people", domain.CategoryViolence},
		{"old lady fainted, not breathing", domain.CategoryMedical},
		{"crowd running from the fire", domain.CategoryStampede},
		{"lost my wallet", domain.CategoryOther},
		{"", domain.CategoryOther},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Category(c.msg), c.msg)
	}
}

func TestPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg  string
		want domain.Priority
	}{
		{"HELP please", domain.PriorityHigh},
		{"shots fired, someone has a gun", domain.PriorityHigh},
		{"minor accident, one person hurt", domain.PriorityMedium},
		{"some smoke from a bin", domain.PriorityMedium},
		{"road blocked", domain.PriorityLow},
		{"", domain.PriorityLow},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Priority(c.msg), c.msg)
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	t.Parallel()

	msg := "Fire in the market, people injured"
	p1, c1 := Classify(msg)
	p2, c2 := Classify(msg)

	assert.Equal(t, p1, p2)
	assert.Equal(t, c1, c2)
	assert.Equal(t, domain.PriorityHigh, p1)
	assert.Equal(t, domain.CategoryFire, c1)
}
