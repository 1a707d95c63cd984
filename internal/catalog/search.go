package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"kinodex/internal/models"
)

const (
	// fuzzyThreshold is the minimum similarity ratio for a fuzzy candidate.
	fuzzyThreshold = 0.5
	// fuzzyLimit caps how many fuzzy candidates are returned.
	fuzzyLimit = 10
)

// SortedKeys returns the snapshot's keys in ascending order. This is the
// canonical iteration order for search and listing, so results are
// deterministic for a given snapshot.
func SortedKeys(snapshot map[string]*models.Entry) []string {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Search returns matching keys for a free-text query, precision first:
// every key whose display name contains the query is a substring match;
// only when that pass is empty does the fuzzy fallback run, keeping the
// closest candidates above the similarity threshold. Substring and fuzzy
// results never mix.
func Search(query string, snapshot map[string]*models.Entry) []string {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" {
		return nil
	}

	keys := SortedKeys(snapshot)

	var matches []string
	for _, key := range keys {
		if strings.Contains(DisplayName(key), q) {
			matches = append(matches, key)
		}
	}
	if len(matches) > 0 {
		return matches
	}

	return fuzzyMatches(q, keys)
}

type fuzzyCandidate struct {
	key   string
	ratio float64
	pos   int
}

func fuzzyMatches(query string, keys []string) []string {
	var candidates []fuzzyCandidate
	for i, key := range keys {
		ratio := Similarity(query, DisplayName(key))
		if ratio >= fuzzyThreshold {
			candidates = append(candidates, fuzzyCandidate{key: key, ratio: ratio, pos: i})
		}
	}

	// Descending similarity, snapshot order breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ratio != candidates[j].ratio {
			return candidates[i].ratio > candidates[j].ratio
		}
		return candidates[i].pos < candidates[j].pos
	})

	if len(candidates) > fuzzyLimit {
		candidates = candidates[:fuzzyLimit]
	}

	matches := make([]string, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, c.key)
	}
	return matches
}

// Similarity returns a 0-1 ratio between two strings based on their
// levenshtein distance over runes. Identical strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
