package risk

import (
	"fmt"
	"strings"
)

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "Low"
	ActivityModerate ActivityLevel = "Moderate"
	ActivityHigh     ActivityLevel = "High"
)

// PatientProfile is one set of form inputs. Ranges mirror the collection form.
type PatientProfile struct {
	Age                  int           `json:"age" validate:"gte=18,lte=100"`
	Sex                  Sex           `json:"sex" validate:"oneof=Male Female"`
	WeightKg             float64       `json:"weight_kg" validate:"gte=30,lte=150"`
	HeightM              float64       `json:"height_m" validate:"gte=1.3,lte=2.2"`
	SystolicBP           int           `json:"systolic_bp" validate:"gte=90,lte=200"`
	DiastolicBP          int           `json:"diastolic_bp" validate:"gte=60,lte=130"`
	TotalCholesterol     int           `json:"total_cholesterol" validate:"gte=100,lte=400"`
	HDL                  int           `json:"hdl" validate:"gte=20,lte=100"`
	LDL                  int           `json:"ldl" validate:"gte=50,lte=250"`
	FastingBloodSugar    int           `json:"fasting_blood_sugar" validate:"gte=70,lte=200"`
	WaistCircumferenceCm int           `json:"waist_circumference_cm" validate:"gte=50,lte=150"`
	Smoker               bool          `json:"smoker"`
	Diabetic             bool          `json:"diabetic"`
	FamilyHistory        bool          `json:"family_history"`
	ActivityLevel        ActivityLevel `json:"activity_level" validate:"oneof=Low Moderate High"`
}

// DefaultProfile returns the values the input form starts with.
func DefaultProfile() PatientProfile {
	return PatientProfile{
		Age:                  45,
		Sex:                  SexMale,
		WeightKg:             70.0,
		HeightM:              1.7,
		SystolicBP:           120,
		DiastolicBP:          80,
		TotalCholesterol:     190,
		HDL:                  45,
		LDL:                  130,
		FastingBloodSugar:    90,
		WaistCircumferenceCm: 90,
		ActivityLevel:        ActivityLow,
	}
}

func ParseSex(value string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	}
	return "", ValidationError{Fields: []FieldError{{Field: "sex", Reason: fmt.Sprintf("unsupported value %q", value)}}}
}

func ParseActivityLevel(value string) (ActivityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return ActivityLow, nil
	case "moderate":
		return ActivityModerate, nil
	case "high":
		return ActivityHigh, nil
	}
	return "", ValidationError{Fields: []FieldError{{Field: "activity_level", Reason: fmt.Sprintf("unsupported value %q", value)}}}
}

// ParseYesNo accepts the form's Yes/No selections as well as boolean literals.
func ParseYesNo(field, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1", "on":
		return true, nil
	case "no", "n", "false", "0", "off", "":
		return false, nil
	}
	return false, ValidationError{Fields: []FieldError{{Field: field, Reason: fmt.Sprintf("expected Yes or No, got %q", value)}}}
}
