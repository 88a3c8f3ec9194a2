package study

import "testing"

func TestMapSimilarityToQuality(t *testing.T) {
	tests := []struct {
		similarity float64
		want       int
	}{
		{1.0, 4},
		{0.95, 4},
		{0.94, 3},
		{0.80, 3},
		{0.79, 2},
		{0.60, 2},
		{0.59, 1},
		{0.40, 1},
		{0.39, 0},
		{0.0, 0},
	}

	for _, tt := range tests {
		got := MapSimilarityToQuality(tt.similarity)
		if got != tt.want {
			t.Errorf("MapSimilarityToQuality(%.2f) = %d, want %d", tt.similarity, got, tt.want)
		}
	}
}

func TestIsCorrect(t *testing.T) {
	// Correctness uses the strict 0.95 bar, not the quality>=3 bucket.
	if !IsCorrect(0.95) {
		t.Error("IsCorrect(0.95) = false, want true")
	}
	if IsCorrect(0.949) {
		t.Error("IsCorrect(0.949) = true, want false")
	}
	if IsCorrect(0.80) {
		t.Error("IsCorrect(0.80) = true, want false even though quality is 3")
	}
}
