package linear

import (
	"errors"
	"fmt"
	"math"
)

var ErrDimension = errors.New("dimension mismatch")

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

// Multinomial is a softmax classifier with one weight vector per class.
type Multinomial struct {
	Classes []Weights
}

// Check ensures every class has featureCount coefficients.
func (m Multinomial) Check(featureCount int) error {
	if len(m.Classes) == 0 {
		return errors.New("no classes")
	}
	for i, class := range m.Classes {
		if len(class.Coefficients) != featureCount {
			return fmt.Errorf("%w: class %d has %d coefficients, want %d", ErrDimension, i, len(class.Coefficients), featureCount)
		}
	}
	return nil
}

// Logits returns the raw linear score per class.
func (m Multinomial) Logits(sample []float64) ([]float64, error) {
	out := make([]float64, len(m.Classes))
	for i, class := range m.Classes {
		if len(class.Coefficients) != len(sample) {
			return nil, fmt.Errorf("%w: sample has %d values, class %d expects %d", ErrDimension, len(sample), i, len(class.Coefficients))
		}
		out[i] = dot(class.Coefficients, sample) + class.Bias
	}
	return out, nil
}

func (m Multinomial) Proba(sample []float64) ([]float64, error) {
	logits, err := m.Logits(sample)
	if err != nil {
		return nil, err
	}
	return Softmax(logits), nil
}

// Predict returns the index of the most likely class; ties go to the lowest index.
func (m Multinomial) Predict(sample []float64) (int, error) {
	logits, err := m.Logits(sample)
	if err != nil {
		return 0, err
	}
	return Argmax(logits), nil
}

// Predict is the binary logistic probability for one weight vector.
func Predict(weights Weights, sample []float64) float64 {
	return sigmoid(dot(weights.Coefficients, sample) + weights.Bias)
}

// Softmax is numerically stabilised by subtracting the max logit.
func Softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	peak := logits[Argmax(logits)]
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
