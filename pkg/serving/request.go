package serving

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

// ToProfile parses the wire request into a profile. Every unparseable field is
// reported in a single ValidationError; range checks happen in the scorer.
func ToProfile(req models.AssessmentRequest) (risk.PatientProfile, error) {
	var fields []risk.FieldError
	collect := func(err error) {
		var ve risk.ValidationError
		if errors.As(err, &ve) {
			fields = append(fields, ve.Fields...)
		}
	}

	sex, err := risk.ParseSex(req.Sex)
	collect(err)
	activity, err := risk.ParseActivityLevel(req.ActivityLevel)
	collect(err)
	smoker, err := risk.ParseYesNo("smoker", req.Smoker)
	collect(err)
	diabetic, err := risk.ParseYesNo("diabetic", req.Diabetic)
	collect(err)
	family, err := risk.ParseYesNo("family_history", req.FamilyHistory)
	collect(err)

	if len(fields) > 0 {
		return risk.PatientProfile{}, risk.ValidationError{Fields: fields}
	}
	return risk.PatientProfile{
		Age:                  req.Age,
		Sex:                  sex,
		WeightKg:             req.WeightKg,
		HeightM:              req.HeightM,
		SystolicBP:           req.SystolicBP,
		DiastolicBP:          req.DiastolicBP,
		TotalCholesterol:     req.TotalCholesterol,
		HDL:                  req.HDL,
		LDL:                  req.LDL,
		FastingBloodSugar:    req.FastingBloodSugar,
		WaistCircumferenceCm: req.WaistCircumferenceCm,
		Smoker:               smoker,
		Diabetic:             diabetic,
		FamilyHistory:        family,
		ActivityLevel:        activity,
	}, nil
}

// FromProfile is the inverse of ToProfile, used to prefill the form.
func FromProfile(p risk.PatientProfile) models.AssessmentRequest {
	return models.AssessmentRequest{
		Age:                  p.Age,
		Sex:                  string(p.Sex),
		WeightKg:             p.WeightKg,
		HeightM:              p.HeightM,
		SystolicBP:           p.SystolicBP,
		DiastolicBP:          p.DiastolicBP,
		TotalCholesterol:     p.TotalCholesterol,
		HDL:                  p.HDL,
		LDL:                  p.LDL,
		FastingBloodSugar:    p.FastingBloodSugar,
		WaistCircumferenceCm: p.WaistCircumferenceCm,
		Smoker:               yesNo(p.Smoker),
		Diabetic:             yesNo(p.Diabetic),
		FamilyHistory:        yesNo(p.FamilyHistory),
		ActivityLevel:        string(p.ActivityLevel),
	}
}

// RequestFromForm reads an HTML form submission.
func RequestFromForm(form url.Values) (models.AssessmentRequest, error) {
	var fields []risk.FieldError
	intField := func(name string) int {
		raw := strings.TrimSpace(form.Get(name))
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, risk.FieldError{Field: name, Reason: "must be a whole number"})
		}
		return v
	}
	floatField := func(name string) float64 {
		raw := strings.TrimSpace(form.Get(name))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields = append(fields, risk.FieldError{Field: name, Reason: "must be a number"})
		}
		return v
	}

	req := models.AssessmentRequest{
		Age:                  intField("age"),
		Sex:                  form.Get("sex"),
		WeightKg:             floatField("weight_kg"),
		HeightM:              floatField("height_m"),
		SystolicBP:           intField("systolic_bp"),
		DiastolicBP:          intField("diastolic_bp"),
		TotalCholesterol:     intField("total_cholesterol"),
		HDL:                  intField("hdl"),
		LDL:                  intField("ldl"),
		FastingBloodSugar:    intField("fasting_blood_sugar"),
		WaistCircumferenceCm: intField("waist_circumference_cm"),
		Smoker:               form.Get("smoker"),
		Diabetic:             form.Get("diabetic"),
		FamilyHistory:        form.Get("family_history"),
		ActivityLevel:        form.Get("activity_level"),
	}
	if len(fields) > 0 {
		return req, risk.ValidationError{Fields: fields}
	}
	return req, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
