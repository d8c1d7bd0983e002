package risk

import "math"

// Model is the pre-trained classifier artifact seen by the core.
type Model interface {
	Predict(features []float64) (int, error)
	DecodeLabel(labelID int) (string, error)
	ExpectedFeatureOrder() []string
}

// ProbabilityModel is implemented by models that expose class probabilities.
type ProbabilityModel interface {
	Model
	PredictProba(features []float64) ([]float64, error)
}

// ClassifierScorer delegates the decision to a Model. The reported score is
// the marker of the predicted level in its band set, so the band set always
// classifies the score back to the same level.
type ClassifierScorer struct {
	model Model
	order []string
	bands BandSet
}

// NewClassifierScorer fails if the model's feature order does not match the
// features the core produces.
func NewClassifierScorer(model Model, bands BandSet) (*ClassifierScorer, error) {
	if model == nil {
		return nil, ConfigurationError{reason: ErrModelUnavailable}
	}
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	order := model.ExpectedFeatureOrder()
	if err := CheckFeatureOrder(order); err != nil {
		return nil, err
	}
	return &ClassifierScorer{model: model, order: append([]string(nil), order...), bands: bands}, nil
}

// CheckFeatureOrder verifies that order names exactly the core's features.
func CheckFeatureOrder(order []string) error {
	probe := make(map[string]float64, len(featureNames))
	for _, name := range featureNames {
		probe[name] = 0
	}
	_, err := Vector(probe, order)
	return err
}

func (s *ClassifierScorer) Strategy() string { return StrategyClassifier }

func (s *ClassifierScorer) BandSet() BandSet { return s.bands }

// FeatureOrder returns the order the vector is assembled in.
func (s *ClassifierScorer) FeatureOrder() []string {
	return append([]string(nil), s.order...)
}

func (s *ClassifierScorer) Evaluate(p PatientProfile) (Assessment, error) {
	if err := Validate(p); err != nil {
		return Assessment{}, err
	}
	d := Derive(p)
	if err := checkFinite(d); err != nil {
		return Assessment{}, err
	}
	vec, err := Vector(FeatureMap(p, d), s.model.ExpectedFeatureOrder())
	if err != nil {
		return Assessment{}, err
	}

	labelID, err := s.model.Predict(vec)
	if err != nil {
		return Assessment{}, NewConfigurationError("classifier predict: %w", err)
	}
	label, err := s.model.DecodeLabel(labelID)
	if err != nil {
		return Assessment{}, NewConfigurationError("decode label %d: %w", labelID, err)
	}
	level, err := ParseLevel(label)
	if err != nil {
		return Assessment{}, ConfigurationError{reason: err}
	}
	band, ok := s.bands.Band(level)
	if !ok {
		return Assessment{}, NewConfigurationError("band set %s has no %s band", s.bands.ID(), level)
	}

	assessment := Assessment{
		Score:          band.Marker,
		Level:          level,
		Label:          label,
		Strategy:       StrategyClassifier,
		BandSet:        s.bands.Name,
		BandSetVersion: s.bands.Version,
		Features:       d,
	}
	if pm, ok := s.model.(ProbabilityModel); ok {
		probs, err := pm.PredictProba(vec)
		if err != nil {
			return Assessment{}, NewConfigurationError("classifier probabilities: %w", err)
		}
		if labelID < 0 || labelID >= len(probs) {
			return Assessment{}, NewConfigurationError("label %d outside %d probabilities", labelID, len(probs))
		}
		confidence := probs[labelID]
		if math.IsNaN(confidence) || math.IsInf(confidence, 0) {
			return Assessment{}, newComputationError("%w: confidence=%v", ErrNonFiniteResult, confidence)
		}
		assessment.Confidence = confidence
	}
	return assessment, nil
}
