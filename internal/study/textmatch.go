package study

import (
	"regexp"
	"strings"
)

var (
	punctuationRe = regexp.MustCompile(`[.,!?;:\-'"()\[\]{}]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	articleRe     = regexp.MustCompile(`^(the|a|an)\s+`)
)

// NormalizeAnswer prepares answer text for fuzzy matching: lowercase,
// strip punctuation, collapse whitespace, and drop a leading article.
func NormalizeAnswer(text string) string {
	text = strings.TrimSpace(strings.ToLower(text))
	text = punctuationRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = articleRe.ReplaceAllString(text, "")
	return text
}

// Similarity scores the user's answer against the correct one, 0.0 to 1.0.
// Both strings are normalized first, then compared with a
// Ratcliff-Obershelp sequence ratio: 2*M / (len(a)+len(b)) where M is the
// total length of matched blocks. Two empty strings score 1.0.
//
// Every character participates in matching: there is no autojunk-style
// heuristic that discards popular characters in long strings, so scores
// for answers past a few hundred characters can differ from matchers
// that apply one. Flashcard answers are short enough not to care.
func Similarity(userInput, correctAnswer string) float64 {
	a := []rune(NormalizeAnswer(userInput))
	b := []rune(NormalizeAnswer(correctAnswer))

	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	return 2.0 * float64(countMatches(a, b, 0, len(a), 0, len(b))) / float64(total)
}

// countMatches sums the lengths of all matching blocks between
// a[alo:ahi] and b[blo:bhi], recursing around the longest block.
func countMatches(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	matches := size
	matches += countMatches(a, b, alo, i, blo, j)
	matches += countMatches(a, b, i+size, ahi, j+size, bhi)
	return matches
}

// longestMatch finds the longest block of runes common to a[alo:ahi] and
// b[blo:bhi]. Ties go to the block starting earliest in a, then earliest
// in b, so repeated calls produce a deterministic alignment.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] = length of the common run ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if b[j] != a[i] {
				continue
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}
