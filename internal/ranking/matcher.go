// internal/ranking/matcher.go
package ranking

import (
	"fmt"

	"lending-workers/internal/models"
)

// TagMatch is the outcome of matching one application's tags.
type TagMatch struct {
	Score     float64
	Matched   []string
	Malformed int
}

// MatchTags counts application tags found in the preference set and divides
// by the size of the set. Every matching occurrence counts, so the score can
// exceed 1. Malformed tags never match.
func MatchTags(tags models.TagList, preferences map[string]struct{}) (TagMatch, error) {
	if len(preferences) == 0 {
		return TagMatch{}, fmt.Errorf("%w: investor declared no preferences", ErrEmptyPreferenceSet)
	}
	return matchTags(tags, preferences), nil
}

func matchTags(tags models.TagList, preferences map[string]struct{}) TagMatch {
	var m TagMatch
	hits := 0
	for _, t := range tags {
		if !t.Valid() {
			m.Malformed++
			continue
		}
		if _, ok := preferences[t.Name()]; ok {
			hits++
			m.Matched = append(m.Matched, t.Name())
		}
	}
	m.Score = float64(hits) / float64(len(preferences))
	return m
}
