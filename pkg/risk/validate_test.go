package risk

import (
	"errors"
	"math"
	"testing"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(DefaultProfile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(minimalProfile()); err != nil {
		t.Fatalf("unexpected error for minimal profile: %v", err)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	profile := DefaultProfile()
	profile.Age = 101
	profile.HeightM = 1.0
	profile.SystolicBP = 250
	profile.Sex = "Other"
	profile.ActivityLevel = ""

	err := Validate(profile)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := map[string]bool{}
	for _, f := range ve.Fields {
		got[f.Field] = true
	}
	for _, field := range []string{"age", "height_m", "systolic_bp", "sex", "activity_level"} {
		if !got[field] {
			t.Fatalf("expected %s in %v", field, ve.Fields)
		}
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	profile := DefaultProfile()
	profile.WeightKg = math.NaN()
	profile.HeightM = math.Inf(1)

	err := Validate(profile)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", ve.Fields)
	}
}

func TestParseFormValues(t *testing.T) {
	if sex, err := ParseSex("female"); err != nil || sex != SexFemale {
		t.Fatalf("ParseSex: %s, %v", sex, err)
	}
	if _, err := ParseSex("x"); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if level, err := ParseActivityLevel(" Moderate"); err != nil || level != ActivityModerate {
		t.Fatalf("ParseActivityLevel: %s, %v", level, err)
	}
	if yes, err := ParseYesNo("smoker", "Yes"); err != nil || !yes {
		t.Fatalf("ParseYesNo: %v, %v", yes, err)
	}
	if _, err := ParseYesNo("smoker", "sometimes"); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
