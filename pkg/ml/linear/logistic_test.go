package linear

import (
	"errors"
	"math"
	"testing"
)

func TestMultinomialPredict(t *testing.T) {
	model := Multinomial{Classes: []Weights{
		{Bias: 0, Coefficients: []float64{1, 0}},
		{Bias: 0, Coefficients: []float64{0, 1}},
		{Bias: -10, Coefficients: []float64{0, 0}},
	}}

	class, err := model.Predict([]float64{3, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != 0 {
		t.Fatalf("expected class 0, got %d", class)
	}
	class, err = model.Predict([]float64{1, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != 1 {
		t.Fatalf("expected class 1, got %d", class)
	}

	probs, err := model.Proba([]float64{1, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("probabilities sum to %v", sum)
	}
	if Argmax(probs) != 1 {
		t.Fatalf("expected class 1 most likely, got %v", probs)
	}
}

func TestMultinomialDimensionMismatch(t *testing.T) {
	model := Multinomial{Classes: []Weights{{Coefficients: []float64{1, 2}}}}
	if _, err := model.Predict([]float64{1}); !errors.Is(err, ErrDimension) {
		t.Fatalf("expected ErrDimension, got %v", err)
	}
	if err := model.Check(3); !errors.Is(err, ErrDimension) {
		t.Fatalf("expected ErrDimension from Check, got %v", err)
	}
	if err := (Multinomial{}).Check(1); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestSoftmaxLargeLogits(t *testing.T) {
	probs := Softmax([]float64{1000, 1000})
	if math.IsNaN(probs[0]) || math.Abs(probs[0]-0.5) > 1e-12 {
		t.Fatalf("expected stable softmax, got %v", probs)
	}
}

func TestBinaryPredict(t *testing.T) {
	if p := Predict(Weights{}, []float64{}); p != 0.5 {
		t.Fatalf("expected 0.5 for zero weights, got %v", p)
	}
}
