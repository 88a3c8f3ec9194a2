package ml

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testBundle() *Bundle {
	names := FeatureNames()
	n := len(names)

	scaler := &StandardScaler{Mean: make([]float64, n), Std: make([]float64, n)}
	for i := range scaler.Std {
		scaler.Std[i] = 1
	}

	return &Bundle{
		Version:      1,
		TrainedAt:    time.Now().UTC(),
		FeatureNames: names,
		Scaler:       scaler,
		Model:        &LogisticRegression{Weights: make([]float64, n), Bias: 0.5},
		SampleCount:  150,
	}
}

func TestBundleSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "likelihood.json")

	b := testBundle()
	if err := b.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if loaded.SampleCount != 150 {
		t.Errorf("sample count = %d, want 150", loaded.SampleCount)
	}
	if loaded.Model.Bias != 0.5 {
		t.Errorf("bias = %f, want 0.5", loaded.Model.Bias)
	}
	if len(loaded.Model.Weights) != len(FeatureNames()) {
		t.Errorf("weights length = %d, want %d", len(loaded.Model.Weights), len(FeatureNames()))
	}
}

func TestBundleLoadMissing(t *testing.T) {
	if _, err := LoadBundle(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadBundle(missing file) should error")
	}
}

func TestBundleLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBundle(path); err == nil {
		t.Error("LoadBundle(corrupt file) should error")
	}
}

func TestBundleLoadFeatureMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.json")

	b := testBundle()
	// A bundle trained against a renamed feature must be rejected.
	b.FeatureNames = append([]string{}, b.FeatureNames...)
	b.FeatureNames[0] = "renamed_feature"
	if err := b.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := LoadBundle(path); err == nil {
		t.Error("LoadBundle(stale feature list) should error")
	}
}

func TestBundleSaveRejectsPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")

	b := testBundle()
	b.Scaler = nil
	if err := b.Save(path); err == nil {
		t.Error("Save(bundle without scaler) should error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected bundle should not leave a file behind")
	}

	b = testBundle()
	b.Model.Weights = b.Model.Weights[:5]
	if err := b.Save(path); err == nil {
		t.Error("Save(weights/features mismatch) should error")
	}
}
