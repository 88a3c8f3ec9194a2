package generator

import (
	"strings"
	"testing"
)

const validJSON = `{"cards":[
	{"prompt":"What is the capital of France?","answer":"Paris"},
	{"prompt":"What year did World War II end?","answer":"1945"}
]}`

func TestParseResponseValid(t *testing.T) {
	batch, err := ParseResponse(validJSON)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(batch.Cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(batch.Cards))
	}
	if batch.Cards[0].Answer != "Paris" {
		t.Errorf("answer = %q, want Paris", batch.Cards[0].Answer)
	}
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validJSON + "\n```"
	batch, err := ParseResponse(fenced)
	if err != nil {
		t.Fatalf("ParseResponse(fenced): %v", err)
	}
	if len(batch.Cards) != 2 {
		t.Errorf("cards = %d, want 2", len(batch.Cards))
	}

	bareFence := "```\n" + validJSON + "\n```"
	if _, err := ParseResponse(bareFence); err != nil {
		t.Errorf("ParseResponse(bare fence): %v", err)
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	if _, err := ParseResponse("not json at all"); err == nil {
		t.Error("ParseResponse(garbage) should error")
	}
}

func TestParseResponseEmptyBatch(t *testing.T) {
	_, err := ParseResponse(`{"cards":[]}`)
	if err == nil {
		t.Fatal("ParseResponse(empty batch) should error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(verr.Errors) != 1 {
		t.Errorf("errors = %v, want exactly one", verr.Errors)
	}
}

func TestParseResponseValidation(t *testing.T) {
	longAnswer := strings.Repeat("x", 201)
	_, err := ParseResponse(`{"cards":[
		{"prompt":"","answer":"ok"},
		{"prompt":"fine prompt","answer":"` + longAnswer + `"}
	]}`)
	if err == nil {
		t.Fatal("ParseResponse(invalid cards) should error")
	}

	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("errors = %v, want empty-prompt and answer-length", verr.Errors)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := tokenize("what is the capital of france")
	b := tokenize("what is the capital of spain")
	got := jaccardSimilarity(a, b)
	// Tokens longer than 3 chars: {what, capital, france} vs {what, capital, spain}.
	want := 2.0 / 4.0
	if got != want {
		t.Errorf("jaccardSimilarity = %f, want %f", got, want)
	}

	if jaccardSimilarity(nil, nil) != 0 {
		t.Error("jaccardSimilarity(empty, empty) should be 0")
	}
}

func TestMockClientOutputParses(t *testing.T) {
	resp, err := NewMockClient().Generate(nil, "", "")
	if err != nil {
		t.Fatalf("mock Generate: %v", err)
	}
	batch, err := ParseResponse(resp.Content)
	if err != nil {
		t.Fatalf("mock output failed validation: %v", err)
	}
	if len(batch.Cards) != 5 {
		t.Errorf("mock cards = %d, want 5", len(batch.Cards))
	}
}
