package study

// CorrectThreshold is the similarity needed for an answer to count as
// correct for per-card statistics and ML labels. Note this is stricter
// than the quality>=3 bucket used for session aggregates; both
// definitions are intentional.
const CorrectThreshold = 0.95

// MapSimilarityToQuality converts a similarity score into an SM-2
// response quality grade.
//
//	>= 0.95 → 4  perfect recall
//	>= 0.80 → 3  correct with hesitation
//	>= 0.60 → 2  recalled with difficulty
//	>= 0.40 → 1  incorrect but remembered something
//	<  0.40 → 0  complete blank
func MapSimilarityToQuality(similarity float64) int {
	switch {
	case similarity >= 0.95:
		return 4
	case similarity >= 0.8:
		return 3
	case similarity >= 0.6:
		return 2
	case similarity >= 0.4:
		return 1
	default:
		return 0
	}
}

// IsCorrect reports whether the similarity clears the correctness bar.
func IsCorrect(similarity float64) bool {
	return similarity >= CorrectThreshold
}
