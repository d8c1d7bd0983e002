package risk

import (
	"errors"
	"math"
	"testing"
)

func TestBuiltinBandSetsAreValid(t *testing.T) {
	for _, set := range []BandSet{BandSetA(), BandSetB(), GaugeBandSet()} {
		if err := set.Validate(); err != nil {
			t.Fatalf("band set %s invalid: %v", set.ID(), err)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		set   BandSet
		score float64
		want  Level
	}{
		{BandSetA(), math.Inf(-1), LevelLow},
		{BandSetA(), -3, LevelLow},
		{BandSetA(), 4.999999, LevelLow},
		{BandSetA(), 5, LevelIntermediary},
		{BandSetA(), 6.99, LevelIntermediary},
		{BandSetA(), 7, LevelHigh},
		{BandSetA(), math.Inf(1), LevelHigh},
		{BandSetB(), 24.9, LevelLow},
		{BandSetB(), 25, LevelIntermediary},
		{BandSetB(), 74.9, LevelIntermediary},
		{BandSetB(), 75, LevelHigh},
		{GaugeBandSet(), 25, LevelLow},
		{GaugeBandSet(), 50, LevelIntermediary},
		{GaugeBandSet(), 85, LevelHigh},
	}
	for _, tc := range cases {
		band, err := tc.set.Classify(tc.score)
		if err != nil {
			t.Fatalf("%s: classify %v: %v", tc.set.ID(), tc.score, err)
		}
		if band.Level != tc.want {
			t.Fatalf("%s: classify %v: expected %s, got %s", tc.set.ID(), tc.score, tc.want, band.Level)
		}
	}
}

func TestClassifyIsMonotonicAndExhaustive(t *testing.T) {
	for _, set := range []BandSet{BandSetA(), BandSetB(), GaugeBandSet()} {
		prev := -1
		for score := -50.0; score <= 150.0; score += 0.25 {
			matches := 0
			for _, band := range set.Bands {
				if band.Contains(score) {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("%s: score %v matched %d bands", set.ID(), score, matches)
			}
			band, err := set.Classify(score)
			if err != nil {
				t.Fatalf("%s: classify %v: %v", set.ID(), score, err)
			}
			if band.Level.rank() < prev {
				t.Fatalf("%s: level moved backwards at %v", set.ID(), score)
			}
			prev = band.Level.rank()
		}
	}
}

func TestClassifyNaN(t *testing.T) {
	_, err := BandSetA().Classify(math.NaN())
	if !IsComputationError(err) {
		t.Fatalf("expected computation error, got %v", err)
	}
}

func TestBandSetValidateRejectsMalformedSets(t *testing.T) {
	gap := BandSetA()
	gap.Bands[1].Lower = 5.5
	gap.Bands[1].Marker = 6

	overlap := BandSetA()
	overlap.Bands[0].Upper = 6

	order := BandSetA()
	order.Bands[0], order.Bands[2] = order.Bands[2], order.Bands[0]

	bounded := BandSetB()
	bounded.Bands[2].Upper = 100

	unnamed := BandSetB()
	unnamed.Name = " "

	for name, set := range map[string]BandSet{
		"gap": gap, "overlap": overlap, "order": order, "bounded": bounded, "unnamed": unnamed,
	} {
		if err := set.Validate(); !IsConfigurationError(err) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := DefaultRegistry()
	v2 := BandSetA()
	v2.Version = 2
	v2.Bands[1].Upper = 8
	v2.Bands[2].Lower = 8
	v2.Bands[2].Marker = 12
	if err := registry.Register(v2); err != nil {
		t.Fatalf("register: %v", err)
	}

	latest, err := registry.Lookup("A")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if latest.Version != 2 {
		t.Fatalf("expected latest version 2, got %d", latest.Version)
	}
	pinned, err := registry.Lookup("A@1")
	if err != nil {
		t.Fatalf("lookup pinned: %v", err)
	}
	if pinned.Bands[2].Lower != 7 {
		t.Fatalf("expected version 1 thresholds, got %+v", pinned.Bands)
	}

	_, err = registry.Lookup("Z")
	if !errors.Is(err, ErrUnknownBandSet) {
		t.Fatalf("expected ErrUnknownBandSet, got %v", err)
	}
	if _, err := registry.Lookup("A@x"); !IsConfigurationError(err) {
		t.Fatalf("expected configuration error for bad version, got %v", err)
	}
	if got := len(registry.All()); got != 4 {
		t.Fatalf("expected 4 band sets, got %d", got)
	}
}

func TestParseBandSetsYAML(t *testing.T) {
	content := []byte(`
band_sets:
  - name: clinic
    version: 3
    description: clinic thresholds
    display: {min: 0, max: 30}
    bands:
      - level: low
        upper: 10
        color: lightgreen
      - level: INTERMEDIARY
        lower: 10
        upper: 15
      - level: HIGH
        lower: 15
        marker: 20
`)
	sets, err := ParseBandSets(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	set := sets[0]
	if set.ID() != "clinic@3" {
		t.Fatalf("unexpected id %s", set.ID())
	}
	if !math.IsInf(set.Bands[0].Lower, -1) || !math.IsInf(set.Bands[2].Upper, 1) {
		t.Fatalf("expected open outer bands, got %+v", set.Bands)
	}
	if set.Bands[1].Marker != 12.5 {
		t.Fatalf("expected default marker 12.5, got %v", set.Bands[1].Marker)
	}
	if set.Bands[2].Marker != 20 {
		t.Fatalf("expected explicit marker 20, got %v", set.Bands[2].Marker)
	}
}

func TestParseBandSetsRejectsMissingInnerBound(t *testing.T) {
	content := []byte(`
band_sets:
  - name: broken
    version: 1
    display: {min: 0, max: 10}
    bands:
      - level: LOW
        upper: 3
      - level: INTERMEDIARY
        upper: 6
      - level: HIGH
        lower: 6
`)
	if _, err := ParseBandSets(content); !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBandSetSpecRoundTrip(t *testing.T) {
	for _, set := range []BandSet{BandSetA(), BandSetB(), GaugeBandSet()} {
		rebuilt, err := set.Spec().Build()
		if err != nil {
			t.Fatalf("%s: rebuild: %v", set.ID(), err)
		}
		for i := range set.Bands {
			if rebuilt.Bands[i] != set.Bands[i] {
				t.Fatalf("%s: band %d differs: %+v vs %+v", set.ID(), i, rebuilt.Bands[i], set.Bands[i])
			}
		}
	}
}

func TestParseLevel(t *testing.T) {
	for label, want := range map[string]Level{
		"low": LevelLow, "Intermediary": LevelIntermediary, "INTERMEDIATE": LevelIntermediary, " HIGH ": LevelHigh,
	} {
		got, err := ParseLevel(label)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %s, %v", label, got, err)
		}
	}
	if _, err := ParseLevel("critical"); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}
}
