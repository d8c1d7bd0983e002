package risk

import "math"

// Coefficients of the linear risk formula. Booleans enter as 0/1 indicators
// and activity Low is the implicit baseline.
type Coefficients struct {
	Intercept        float64 `json:"intercept" yaml:"intercept"`
	Age              float64 `json:"age" yaml:"age"`
	SexIsMale        float64 `json:"sex_is_male" yaml:"sex_is_male"`
	BMI              float64 `json:"bmi" yaml:"bmi"`
	WaistHeightRatio float64 `json:"waist_height_ratio" yaml:"waist_height_ratio"`
	HeightCm         float64 `json:"height_cm" yaml:"height_cm"`
	SystolicBP       float64 `json:"systolic_bp" yaml:"systolic_bp"`
	DiastolicBP      float64 `json:"diastolic_bp" yaml:"diastolic_bp"`
	TotalCholesterol float64 `json:"total_cholesterol" yaml:"total_cholesterol"`
	HDL              float64 `json:"hdl" yaml:"hdl"`
	LDL              float64 `json:"ldl" yaml:"ldl"`
	FastingSugar     float64 `json:"fasting_sugar" yaml:"fasting_sugar"`
	Smoker           float64 `json:"smoker" yaml:"smoker"`
	FamilyHistory    float64 `json:"family_history" yaml:"family_history"`
	Diabetic         float64 `json:"diabetic" yaml:"diabetic"`
	ActivityModerate float64 `json:"activity_moderate" yaml:"activity_moderate"`
	ActivityHigh     float64 `json:"activity_high" yaml:"activity_high"`
}

var DefaultCoefficients = Coefficients{
	Intercept:        0.334,
	Age:              0.001,
	SexIsMale:        0.005,
	BMI:              0.190,
	WaistHeightRatio: 0.281,
	HeightCm:         0.001,
	SystolicBP:       0.048,
	DiastolicBP:      0.001,
	TotalCholesterol: 0.011,
	HDL:              0.009,
	LDL:              0.008,
	FastingSugar:     0.000,
	Smoker:           -0.012,
	FamilyHistory:    -0.012,
	Diabetic:         1.946,
	ActivityModerate: -0.014,
	ActivityHigh:     -0.012,
}

// Score applies the formula to a profile and its derived features.
func (c Coefficients) Score(p PatientProfile, d DerivedFeatures) float64 {
	return c.Intercept +
		c.Age*float64(p.Age) +
		c.SexIsMale*d.SexIsMale +
		c.BMI*d.BMI +
		c.WaistHeightRatio*d.WaistHeightRatio +
		c.HeightCm*d.HeightCm +
		c.SystolicBP*float64(p.SystolicBP) +
		c.DiastolicBP*float64(p.DiastolicBP) +
		c.TotalCholesterol*float64(p.TotalCholesterol) +
		c.HDL*float64(p.HDL) +
		c.LDL*float64(p.LDL) +
		c.FastingSugar*float64(p.FastingBloodSugar) +
		c.Smoker*d.Smoker +
		c.FamilyHistory*d.FamilyHistory +
		c.Diabetic*d.Diabetic +
		c.ActivityModerate*d.ActivityModerate +
		c.ActivityHigh*d.ActivityHigh
}

type LinearScorer struct {
	coefficients Coefficients
	bands        BandSet
}

func NewLinearScorer(coefficients Coefficients, bands BandSet) (*LinearScorer, error) {
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	return &LinearScorer{coefficients: coefficients, bands: bands}, nil
}

func (s *LinearScorer) Strategy() string { return StrategyLinear }

func (s *LinearScorer) BandSet() BandSet { return s.bands }

func (s *LinearScorer) Evaluate(p PatientProfile) (Assessment, error) {
	if err := Validate(p); err != nil {
		return Assessment{}, err
	}
	d := Derive(p)
	if err := checkFinite(d); err != nil {
		return Assessment{}, err
	}
	score := s.coefficients.Score(p, d)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Assessment{}, newComputationError("%w: linear score %v", ErrNonFiniteResult, score)
	}
	band, err := s.bands.Classify(score)
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		Score:          score,
		Level:          band.Level,
		Strategy:       StrategyLinear,
		BandSet:        s.bands.Name,
		BandSetVersion: s.bands.Version,
		Features:       d,
	}, nil
}

func checkFinite(d DerivedFeatures) error {
	for name, v := range map[string]float64{
		"bmi":                d.BMI,
		"waist_height_ratio": d.WaistHeightRatio,
		"height_cm":          d.HeightCm,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return newComputationError("%w: %s=%v", ErrNonFiniteResult, name, v)
		}
	}
	return nil
}
