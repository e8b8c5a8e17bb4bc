package resolver

import (
	"strings"
	"unicode"
)

// Full-scan scoring weights. The similarity blend favors whole-token
// agreement over raw character distance so a shared product word ("egile")
// counts for more than a cluster of coincidental letters.
const (
	weightTokenOverlap = 0.6
	weightEditDistance = 0.4
)

// Candidate is one scored catalog product considered by the full-scan
// strategy.
type Candidate struct {
	CatalogID   string  `json:"catalog_id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// foldName lowercases a string and folds every punctuation character,
// underscores included, to a single space. "Microphone_Egile" and
// "microphone egile" fold to the same form.
func foldName(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// similarity scores a folded mention against a folded product name in
// [0, 1]: weightTokenOverlap times the Jaccard overlap of their word sets
// plus weightEditDistance times the length-normalized Levenshtein closeness.
func similarity(mention, name string) float64 {
	if mention == "" || name == "" {
		return 0
	}
	if mention == name {
		return 1
	}

	overlap := tokenOverlap(strings.Fields(mention), strings.Fields(name))

	dist := levenshtein(mention, name)
	maxLen := max(len([]rune(mention)), len([]rune(name)))
	edit := 1 - float64(dist)/float64(maxLen)
	if edit < 0 {
		edit = 0
	}

	return weightTokenOverlap*overlap + weightEditDistance*edit
}

// tokenOverlap is the Jaccard index of two token lists.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}

	inter := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			inter++
		} else {
			union++
		}
	}

	return float64(inter) / float64(union)
}

// levenshtein computes the edit distance between two strings over runes,
// keeping only two DP rows.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// bestCandidate picks the highest-scoring candidate at or above minScore.
// Score ties break to the shortest display name, then to catalog order.
func bestCandidate(candidates []Candidate, minScore float64) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if c.Score < minScore {
			continue
		}
		if !found || c.Score > best.Score ||
			(c.Score == best.Score && len(c.DisplayName) < len(best.DisplayName)) {
			best = c
			found = true
		}
	}
	return best, found
}
