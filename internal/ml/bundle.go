package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Bundle is a trained model artifact: classifier, scaler, and the
// feature-name list they were fitted against. The three always travel
// together — persisting or loading a partial bundle is an error.
type Bundle struct {
	Version      int                 `json:"version"`
	TrainedAt    time.Time           `json:"trained_at"`
	FeatureNames []string            `json:"feature_names"`
	Scaler       *StandardScaler     `json:"scaler"`
	Model        *LogisticRegression `json:"model"`
	SampleCount  int                 `json:"sample_count"`
	Eval         EvalMetrics         `json:"eval"`
}

// Save writes the bundle to path as one atomic unit: a temp file in the
// same directory is renamed over the target, so a concurrent load sees
// either the old artifact or the new one, never a half-written file.
func (b *Bundle) Save(path string) error {
	if err := b.validate(); err != nil {
		return fmt.Errorf("refusing to save bundle: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "bundle-*.json")
	if err != nil {
		return fmt.Errorf("create temp bundle: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close bundle: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace bundle: %w", err)
	}
	return nil
}

// LoadBundle reads and validates a bundle. Loading is all-or-nothing: a
// missing file, unparseable JSON, or a feature list that disagrees with
// the current FeatureNames contract all fail without a partial result.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}

	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}

	current := FeatureNames()
	if len(b.FeatureNames) != len(current) {
		return nil, fmt.Errorf("feature list mismatch: bundle has %d features, code expects %d",
			len(b.FeatureNames), len(current))
	}
	for i, name := range current {
		if b.FeatureNames[i] != name {
			return nil, fmt.Errorf("feature list mismatch at %d: bundle %q, code %q",
				i, b.FeatureNames[i], name)
		}
	}

	return &b, nil
}

func (b *Bundle) validate() error {
	if b.Model == nil || b.Scaler == nil {
		return fmt.Errorf("missing model or scaler")
	}
	if len(b.FeatureNames) == 0 {
		return fmt.Errorf("missing feature names")
	}
	if len(b.Model.Weights) != len(b.FeatureNames) {
		return fmt.Errorf("weights/features length mismatch: %d vs %d",
			len(b.Model.Weights), len(b.FeatureNames))
	}
	if len(b.Scaler.Mean) != len(b.FeatureNames) || len(b.Scaler.Std) != len(b.FeatureNames) {
		return fmt.Errorf("scaler/features length mismatch")
	}
	return nil
}
