package risk

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var profileValidate *validator.Validate

func init() {
	profileValidate = validator.New(validator.WithRequiredStructEnabled())
	profileValidate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}

// Validate checks every field of the profile against its declared domain and
// reports all offending fields at once.
func Validate(p PatientProfile) error {
	var fields []FieldError
	if math.IsNaN(p.WeightKg) || math.IsInf(p.WeightKg, 0) {
		fields = append(fields, FieldError{Field: "weight_kg", Reason: "must be a finite number"})
	}
	if math.IsNaN(p.HeightM) || math.IsInf(p.HeightM, 0) {
		fields = append(fields, FieldError{Field: "height_m", Reason: "must be a finite number"})
	}

	if err := profileValidate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ValidationError{Fields: []FieldError{{Field: "profile", Reason: err.Error()}}}
		}
		for _, fe := range verrs {
			if hasField(fields, fe.Field()) {
				continue
			}
			fields = append(fields, FieldError{Field: fe.Field(), Reason: describe(fe)})
		}
	}

	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func hasField(fields []FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}
