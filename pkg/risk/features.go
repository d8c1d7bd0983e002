package risk

// Classifier input column names. The order of featureNames is the canonical
// order in which the core assembles the feature map.
const (
	FeatureAge              = "Age"
	FeatureSex              = "Sex"
	FeatureWeight           = "Weight (kg)"
	FeatureHeight           = "Height (m)"
	FeatureSystolicBP       = "Systolic BP"
	FeatureDiastolicBP      = "Diastolic BP"
	FeatureTotalCholesterol = "Total Cholesterol (mg/dL)"
	FeatureHDL              = "HDL (mg/dL)"
	FeatureFastingSugar     = "Fasting Blood Sugar (mg/dL)"
	FeatureSmoking          = "Smoking Status"
	FeatureDiabetes         = "Diabetes Status"
	FeatureActivity         = "Physical Activity Level"
	FeatureFamilyHistory    = "Family History of CVD"
	FeatureWaist            = "Abdominal Circumference (cm)"
	FeatureLDL              = "Estimated LDL (mg/dL)"
	FeatureBMI              = "BMI"
	FeatureWaistHeightRatio = "Waist-to-Height Ratio"
)

var featureNames = []string{
	FeatureAge,
	FeatureSex,
	FeatureWeight,
	FeatureHeight,
	FeatureSystolicBP,
	FeatureDiastolicBP,
	FeatureTotalCholesterol,
	FeatureHDL,
	FeatureFastingSugar,
	FeatureSmoking,
	FeatureDiabetes,
	FeatureActivity,
	FeatureFamilyHistory,
	FeatureWaist,
	FeatureLDL,
	FeatureBMI,
	FeatureWaistHeightRatio,
}

// FeatureNames returns a copy of the feature names the core produces.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// DerivedFeatures are computed per evaluation and never retained.
type DerivedFeatures struct {
	BMI              float64 `json:"bmi"`
	WaistHeightRatio float64 `json:"waist_height_ratio"`
	HeightCm         float64 `json:"height_cm"`

	SexIsMale        float64 `json:"sex_is_male"`
	Smoker           float64 `json:"smoker"`
	Diabetic         float64 `json:"diabetic"`
	FamilyHistory    float64 `json:"family_history"`
	ActivityModerate float64 `json:"activity_moderate"`
	ActivityHigh     float64 `json:"activity_high"`
	// ActivityCode is the ordinal encoding Low=0, Moderate=1, High=2.
	ActivityCode float64 `json:"activity_code"`
}

// Derive assumes a validated profile: height is never zero.
func Derive(p PatientProfile) DerivedFeatures {
	d := DerivedFeatures{
		BMI:              p.WeightKg / (p.HeightM * p.HeightM),
		WaistHeightRatio: float64(p.WaistCircumferenceCm) / (p.HeightM * 100),
		HeightCm:         p.HeightM * 100,
		SexIsMale:        indicator(p.Sex == SexMale),
		Smoker:           indicator(p.Smoker),
		Diabetic:         indicator(p.Diabetic),
		FamilyHistory:    indicator(p.FamilyHistory),
	}
	switch p.ActivityLevel {
	case ActivityModerate:
		d.ActivityModerate = 1
		d.ActivityCode = 1
	case ActivityHigh:
		d.ActivityHigh = 1
		d.ActivityCode = 2
	}
	return d
}

// FeatureMap builds the named classifier inputs.
func FeatureMap(p PatientProfile, d DerivedFeatures) map[string]float64 {
	return map[string]float64{
		FeatureAge:              float64(p.Age),
		FeatureSex:              d.SexIsMale,
		FeatureWeight:           p.WeightKg,
		FeatureHeight:           p.HeightM,
		FeatureSystolicBP:       float64(p.SystolicBP),
		FeatureDiastolicBP:      float64(p.DiastolicBP),
		FeatureTotalCholesterol: float64(p.TotalCholesterol),
		FeatureHDL:              float64(p.HDL),
		FeatureFastingSugar:     float64(p.FastingBloodSugar),
		FeatureSmoking:          d.Smoker,
		FeatureDiabetes:         d.Diabetic,
		FeatureActivity:         d.ActivityCode,
		FeatureFamilyHistory:    d.FamilyHistory,
		FeatureWaist:            float64(p.WaistCircumferenceCm),
		FeatureLDL:              float64(p.LDL),
		FeatureBMI:              d.BMI,
		FeatureWaistHeightRatio: d.WaistHeightRatio,
	}
}

// Vector reindexes features to order. Missing, extra and duplicate names are
// configuration errors; nothing is dropped or padded.
func Vector(features map[string]float64, order []string) ([]float64, error) {
	if len(order) == 0 {
		return nil, ConfigurationError{reason: ErrFeatureMismatch}
	}
	seen := make(map[string]struct{}, len(order))
	vec := make([]float64, len(order))
	for i, name := range order {
		if _, dup := seen[name]; dup {
			return nil, NewConfigurationError("%w: duplicate feature %q", ErrFeatureMismatch, name)
		}
		seen[name] = struct{}{}
		value, ok := features[name]
		if !ok {
			return nil, NewConfigurationError("%w: model expects unknown feature %q", ErrFeatureMismatch, name)
		}
		vec[i] = value
	}
	for name := range features {
		if _, ok := seen[name]; !ok {
			return nil, NewConfigurationError("%w: feature %q is not consumed by the model", ErrFeatureMismatch, name)
		}
	}
	return vec, nil
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
