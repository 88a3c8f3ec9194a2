package ml

import (
	"math"
	"testing"
)

func TestStandardScaler(t *testing.T) {
	X := [][]float64{
		{1, 10, 5},
		{3, 20, 5},
	}

	scaler := &StandardScaler{}
	scaler.Fit(X)

	if scaler.Mean[0] != 2 || scaler.Mean[1] != 15 || scaler.Mean[2] != 5 {
		t.Errorf("mean = %v, want [2 15 5]", scaler.Mean)
	}

	scaled := scaler.Transform(X)
	if math.Abs(scaled[0][0]+1) > 1e-9 || math.Abs(scaled[1][0]-1) > 1e-9 {
		t.Errorf("column 0 scaled to %v, want [-1 1]", []float64{scaled[0][0], scaled[1][0]})
	}
	// Zero-variance column scales to 0, not NaN.
	if scaled[0][2] != 0 || scaled[1][2] != 0 {
		t.Errorf("constant column scaled to %v, want zeros", []float64{scaled[0][2], scaled[1][2]})
	}
}

func TestLogisticRegressionSeparable(t *testing.T) {
	// One feature, cleanly separable at 0.
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		X = append(X, []float64{1.0 + float64(i)*0.1})
		y = append(y, 1)
		X = append(X, []float64{-1.0 - float64(i)*0.1})
		y = append(y, 0)
	}

	model := &LogisticRegression{}
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	pHigh, err := model.PredictProba([]float64{2.0})
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	pLow, err := model.PredictProba([]float64{-2.0})
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}

	if pHigh < 0.8 {
		t.Errorf("P(positive side) = %f, want > 0.8", pHigh)
	}
	if pLow > 0.2 {
		t.Errorf("P(negative side) = %f, want < 0.2", pLow)
	}
}

func TestLogisticRegressionErrors(t *testing.T) {
	model := &LogisticRegression{}
	if err := model.Fit(nil, nil); err == nil {
		t.Error("Fit(empty) should error")
	}
	if err := model.Fit([][]float64{{1}}, []int{1, 0}); err == nil {
		t.Error("Fit(length mismatch) should error")
	}

	model.Weights = []float64{1, 2}
	if _, err := model.PredictProba([]float64{1}); err == nil {
		t.Error("PredictProba(wrong dimension) should error")
	}
}

func TestEvaluate(t *testing.T) {
	probs := []float64{0.9, 0.8, 0.3, 0.1}
	y := []int{1, 0, 1, 0}

	m := Evaluate(probs, y)

	// tp=1 (0.9), fp=1 (0.8), fn=1 (0.3), tn=1 (0.1)
	if m.Accuracy != 0.5 {
		t.Errorf("accuracy = %f, want 0.5", m.Accuracy)
	}
	if m.Precision != 0.5 || m.Recall != 0.5 {
		t.Errorf("precision/recall = %f/%f, want 0.5/0.5", m.Precision, m.Recall)
	}
	if m.F1 != 0.5 {
		t.Errorf("f1 = %f, want 0.5", m.F1)
	}
	// Positives {0.9, 0.3} vs negatives {0.8, 0.1}: 3 wins of 4 pairs.
	if math.Abs(m.AUC-0.75) > 1e-9 {
		t.Errorf("auc = %f, want 0.75", m.AUC)
	}
}

func TestEvaluateZeroDivision(t *testing.T) {
	// No predicted positives: precision and F1 are defined as 0.
	m := Evaluate([]float64{0.1, 0.2}, []int{1, 0})
	if m.Precision != 0 || m.F1 != 0 {
		t.Errorf("precision/f1 = %f/%f, want 0/0", m.Precision, m.F1)
	}
}

func TestRocAUC(t *testing.T) {
	// Perfect ranking.
	auc, ok := rocAUC([]float64{0.9, 0.8, 0.2, 0.1}, []int{1, 1, 0, 0})
	if !ok || auc != 1.0 {
		t.Errorf("rocAUC(perfect) = %f, %v, want 1.0, true", auc, ok)
	}

	// Ties count half.
	auc, ok = rocAUC([]float64{0.5, 0.5}, []int{1, 0})
	if !ok || auc != 0.5 {
		t.Errorf("rocAUC(tied) = %f, %v, want 0.5, true", auc, ok)
	}

	// Single class: undefined.
	if _, ok := rocAUC([]float64{0.5, 0.6}, []int{1, 1}); ok {
		t.Error("rocAUC(single class) should report not-ok")
	}
}
