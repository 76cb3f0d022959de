package store

import (
	"strings"

	"golang.org/x/text/cases"
)

// similarityThreshold is the minimum token overlap for a tier-3 name match.
// Kept conservative to avoid pairing unrelated courses that share a common
// word like "Country Club".
const similarityThreshold = 0.4

var foldCaser = cases.Fold()

// nameSimilarity scores two course names in [0,1] by Jaccard overlap of their
// case-folded tokens.
func nameSimilarity(a, b string) float64 {
	ta := nameTokens(a)
	tb := nameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func nameTokens(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(foldCaser.String(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r > 127)
	}) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// bestSimilarCourse returns the index of the candidate whose name is most
// similar to name, or -1 when none clears the threshold.
func bestSimilarCourse(name string, candidates []string) int {
	best, bestScore := -1, similarityThreshold
	for i, c := range candidates {
		if score := nameSimilarity(name, c); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
