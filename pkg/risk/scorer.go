package risk

const (
	StrategyLinear     = "linear"
	StrategyClassifier = "classifier"
)

// Assessment is the result of one evaluation.
type Assessment struct {
	Score          float64         `json:"score"`
	Level          Level           `json:"risk_level"`
	Label          string          `json:"label,omitempty"`
	Confidence     float64         `json:"confidence,omitempty"`
	Strategy       string          `json:"strategy"`
	BandSet        string          `json:"band_set"`
	BandSetVersion int             `json:"band_set_version"`
	Features       DerivedFeatures `json:"features"`
}

// Scorer turns a profile into an assessment. Implementations hold no mutable
// state and may be shared between goroutines.
type Scorer interface {
	Evaluate(p PatientProfile) (Assessment, error)
	Strategy() string
	BandSet() BandSet
}
