package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

type GeneratedBatch struct {
	Cards []GeneratedCard `json:"cards"`
}

type GeneratedCard struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseResponse(responseBody string) (*GeneratedBatch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch GeneratedBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateBatch(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateBatch(batch *GeneratedBatch) error {
	var errs []string

	if len(batch.Cards) == 0 {
		return &ValidationError{Errors: []string{"no cards in batch"}}
	}

	for i, c := range batch.Cards {
		num := i + 1

		if strings.TrimSpace(c.Prompt) == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty prompt", num))
		}
		if strings.TrimSpace(c.Answer) == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty answer", num))
		}

		if len(c.Prompt) > 500 {
			errs = append(errs, fmt.Sprintf("card %d: prompt length %d exceeds 500", num, len(c.Prompt)))
		}
		// Long answers defeat typed-answer grading.
		if len(c.Answer) > 200 {
			errs = append(errs, fmt.Sprintf("card %d: answer length %d exceeds 200", num, len(c.Answer)))
		}
	}

	checkCardDiversity(batch.Cards)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// checkCardDiversity warns if any two prompts share >60% keyword overlap.
func checkCardDiversity(cards []GeneratedCard) {
	if len(cards) < 2 {
		return
	}

	tokenSets := make([]map[string]bool, len(cards))
	for i, c := range cards {
		tokenSets[i] = tokenize(c.Prompt)
	}

	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			overlap := jaccardSimilarity(tokenSets[i], tokenSets[j])
			if overlap > 0.60 {
				log.Printf("WARNING: cards %d and %d have %.0f%% keyword overlap — likely near-duplicates", i+1, j+1, overlap*100)
			}
		}
	}
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		// Skip very short words (articles, prepositions)
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
