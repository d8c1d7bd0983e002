package models

import (
	"time"

	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

// Event is the envelope for messages on the model lifecycle topic.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const EventModelPublished = "model.published"

// AssessmentRequest is the wire form of the input form. Enumerations and
// yes/no answers arrive as strings and are parsed at the boundary.
type AssessmentRequest struct {
	Age                  int     `json:"age"`
	Sex                  string  `json:"sex"`
	WeightKg             float64 `json:"weight_kg"`
	HeightM              float64 `json:"height_m"`
	SystolicBP           int     `json:"systolic_bp"`
	DiastolicBP          int     `json:"diastolic_bp"`
	TotalCholesterol     int     `json:"total_cholesterol"`
	HDL                  int     `json:"hdl"`
	LDL                  int     `json:"ldl"`
	FastingBloodSugar    int     `json:"fasting_blood_sugar"`
	WaistCircumferenceCm int     `json:"waist_circumference_cm"`
	Smoker               string  `json:"smoker"`
	Diabetic             string  `json:"diabetic"`
	FamilyHistory        string  `json:"family_history"`
	ActivityLevel        string  `json:"activity_level"`
}

type AssessmentResponse struct {
	ID             string               `json:"id"`
	RiskLevel      risk.Level           `json:"risk_level"`
	Score          float64              `json:"score"`
	Label          string               `json:"label,omitempty"`
	Confidence     float64              `json:"confidence,omitempty"`
	Strategy       string               `json:"strategy"`
	BandSet        string               `json:"band_set"`
	BandSetVersion int                  `json:"band_set_version"`
	Features       risk.DerivedFeatures `json:"features"`
	Gauge          risk.Gauge           `json:"gauge"`
	Latency        time.Duration        `json:"latency"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  []risk.FieldError `json:"fields,omitempty"`
}

type ConfigResponse struct {
	Strategy     string           `json:"strategy"`
	BandSet      risk.BandSetSpec `json:"band_set"`
	GaugeBandSet risk.BandSetSpec `json:"gauge_band_set"`
	FeatureOrder []string         `json:"feature_order"`
	Model        *ModelInfo       `json:"model,omitempty"`
}

type ModelInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Source   string `json:"source"`
}
