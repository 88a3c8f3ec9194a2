package ml

import (
	"fmt"
	"math"
)

// StandardScaler normalizes features to zero mean and unit variance,
// matching the scaling applied at training time.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-feature mean and standard deviation. Features with
// zero variance scale to 0 rather than dividing by zero.
func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	nFeatures := len(X[0])
	s.Mean = make([]float64, nFeatures)
	s.Std = make([]float64, nFeatures)

	for j := 0; j < nFeatures; j++ {
		sum := 0.0
		for _, row := range X {
			sum += row[j]
		}
		s.Mean[j] = sum / float64(len(X))
	}

	for j := 0; j < nFeatures; j++ {
		sumSq := 0.0
		for _, row := range X {
			d := row[j] - s.Mean[j]
			sumSq += d * d
		}
		s.Std[j] = math.Sqrt(sumSq / float64(len(X)))
	}
}

func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.TransformRow(row)
	}
	return out
}

func (s *StandardScaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		if s.Std[j] > 0 {
			out[j] = (v - s.Mean[j]) / s.Std[j]
		} else {
			out[j] = 0
		}
	}
	return out
}

// LogisticRegression is a binary classifier trained with batch gradient
// descent, L2 regularization, and balanced class weights.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Fit trains on scaled features X and binary labels y. Class weights are
// balanced (n / (2 * n_class)) so a skewed corpus of mostly-correct
// reviews doesn't collapse the model onto the majority class.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("ml: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("ml: feature/label length mismatch: %d vs %d", len(X), len(y))
	}

	nSamples := len(X)
	nFeatures := len(X[0])
	m.Weights = make([]float64, nFeatures)
	m.Bias = 0

	// Balanced class weights.
	nPos := 0
	for _, label := range y {
		if label == 1 {
			nPos++
		}
	}
	nNeg := nSamples - nPos
	wPos, wNeg := 1.0, 1.0
	if nPos > 0 && nNeg > 0 {
		wPos = float64(nSamples) / (2.0 * float64(nPos))
		wNeg = float64(nSamples) / (2.0 * float64(nNeg))
	}

	gradW := make([]float64, nFeatures)
	for iter := 0; iter < logisticIterations; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range X {
			pred := m.predictRow(row)
			diff := pred - float64(y[i])
			w := wNeg
			if y[i] == 1 {
				w = wPos
			}
			diff *= w

			for j, v := range row {
				gradW[j] += diff * v
			}
			gradB += diff
		}

		for j := range m.Weights {
			// L2 penalty, not applied to the bias.
			grad := gradW[j]/float64(nSamples) + m.Weights[j]/(logisticL2*float64(nSamples))
			m.Weights[j] -= logisticLearningRate * grad
		}
		m.Bias -= logisticLearningRate * gradB / float64(nSamples)
	}

	return nil
}

func (m *LogisticRegression) predictRow(row []float64) float64 {
	z := m.Bias
	for j, v := range row {
		z += m.Weights[j] * v
	}
	return sigmoid(z)
}

// PredictProba returns P(label=1) for a scaled feature row.
func (m *LogisticRegression) PredictProba(row []float64) (float64, error) {
	if len(row) != len(m.Weights) {
		return 0, fmt.Errorf("ml: expected %d features, got %d", len(m.Weights), len(row))
	}
	return m.predictRow(row), nil
}

// ── Evaluation ──────────────────────────────────────────

// EvalMetrics holds held-out classification metrics at threshold 0.5.
type EvalMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	AUC       float64 `json:"auc"`
}

// Evaluate scores predicted probabilities against true labels.
func Evaluate(probs []float64, y []int) EvalMetrics {
	var tp, fp, tn, fn int
	for i, p := range probs {
		pred := 0
		if p >= 0.5 {
			pred = 1
		}
		switch {
		case pred == 1 && y[i] == 1:
			tp++
		case pred == 1 && y[i] == 0:
			fp++
		case pred == 0 && y[i] == 0:
			tn++
		default:
			fn++
		}
	}

	total := len(y)
	m := EvalMetrics{AUC: 0.5}
	if total == 0 {
		return m
	}

	m.Accuracy = float64(tp+tn) / float64(total)
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if auc, ok := rocAUC(probs, y); ok {
		m.AUC = auc
	}
	return m
}

// rocAUC computes the area under the ROC curve via the rank statistic:
// the probability a random positive scores above a random negative.
// Returns false when only one class is present.
func rocAUC(probs []float64, y []int) (float64, bool) {
	var pos, neg []float64
	for i, p := range probs {
		if y[i] == 1 {
			pos = append(pos, p)
		} else {
			neg = append(neg, p)
		}
	}
	if len(pos) == 0 || len(neg) == 0 {
		return 0, false
	}

	wins := 0.0
	for _, p := range pos {
		for _, n := range neg {
			if p > n {
				wins += 1.0
			} else if p == n {
				wins += 0.5
			}
		}
	}
	return wins / float64(len(pos)*len(neg)), true
}
