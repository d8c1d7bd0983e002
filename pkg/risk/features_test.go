package risk

import (
	"errors"
	"testing"
)

func TestDeriveIsPositiveAcrossDomain(t *testing.T) {
	for _, weight := range []float64{30, 70, 150} {
		for _, height := range []float64{1.3, 1.7, 2.2} {
			for _, waist := range []int{50, 90, 150} {
				profile := DefaultProfile()
				profile.WeightKg = weight
				profile.HeightM = height
				profile.WaistCircumferenceCm = waist
				d := Derive(profile)
				if d.BMI <= 0 || d.WaistHeightRatio <= 0 {
					t.Fatalf("non-positive features for w=%v h=%v waist=%d: %+v", weight, height, waist, d)
				}
			}
		}
	}
}

func TestDeriveEncodings(t *testing.T) {
	profile := DefaultProfile()
	profile.Sex = SexFemale
	profile.Smoker = true
	profile.FamilyHistory = true
	profile.ActivityLevel = ActivityHigh

	d := Derive(profile)
	if d.SexIsMale != 0 || d.Smoker != 1 || d.FamilyHistory != 1 || d.Diabetic != 0 {
		t.Fatalf("unexpected binary encodings: %+v", d)
	}
	if d.ActivityModerate != 0 || d.ActivityHigh != 1 || d.ActivityCode != 2 {
		t.Fatalf("unexpected activity encodings: %+v", d)
	}
	if d.HeightCm != 170 {
		t.Fatalf("expected height 170cm, got %v", d.HeightCm)
	}
}

func TestFeatureMapMatchesFeatureNames(t *testing.T) {
	profile := DefaultProfile()
	features := FeatureMap(profile, Derive(profile))
	names := FeatureNames()
	if len(features) != len(names) {
		t.Fatalf("expected %d features, got %d", len(names), len(features))
	}
	for _, name := range names {
		if _, ok := features[name]; !ok {
			t.Fatalf("feature map missing %q", name)
		}
	}
	if features[FeatureActivity] != 0 || features[FeatureSex] != 1 {
		t.Fatalf("unexpected encodings: activity=%v sex=%v", features[FeatureActivity], features[FeatureSex])
	}
}

func TestVectorFollowsRequestedOrder(t *testing.T) {
	profile := DefaultProfile()
	features := FeatureMap(profile, Derive(profile))

	order := FeatureNames()
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	vec, err := Vector(features, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != len(order) {
		t.Fatalf("expected %d values, got %d", len(order), len(vec))
	}
	for i, name := range order {
		if vec[i] != features[name] {
			t.Fatalf("position %d: expected %s=%v, got %v", i, name, features[name], vec[i])
		}
	}
}

func TestVectorRejectsMismatchedOrder(t *testing.T) {
	profile := DefaultProfile()
	features := FeatureMap(profile, Derive(profile))
	names := FeatureNames()

	cases := map[string][]string{
		"missing":   names[1:],
		"extra":     append(FeatureNames(), "Resting Heart Rate"),
		"duplicate": append(FeatureNames()[:len(names)-1], FeatureAge),
		"empty":     nil,
	}
	for name, order := range cases {
		_, err := Vector(features, order)
		if !IsConfigurationError(err) || !errors.Is(err, ErrFeatureMismatch) {
			t.Fatalf("%s: expected feature mismatch, got %v", name, err)
		}
	}
}
