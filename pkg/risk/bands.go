package risk

import (
	"fmt"
	"math"
	"strings"
)

type Level string

const (
	LevelLow          Level = "LOW"
	LevelIntermediary Level = "INTERMEDIARY"
	LevelHigh         Level = "HIGH"
)

// Levels lists risk levels in ascending order.
var Levels = []Level{LevelLow, LevelIntermediary, LevelHigh}

func (l Level) rank() int {
	for i, lvl := range Levels {
		if lvl == l {
			return i
		}
	}
	return -1
}

// ParseLevel maps decoder labels onto a Level.
func ParseLevel(label string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "LOW":
		return LevelLow, nil
	case "INTERMEDIARY", "INTERMEDIATE", "MEDIUM":
		return LevelIntermediary, nil
	case "HIGH":
		return LevelHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, label)
}

// Band is the half-open interval [Lower, Upper) mapped to one level.
type Band struct {
	Level  Level
	Lower  float64
	Upper  float64
	Color  string
	Marker float64
}

func (b Band) Contains(score float64) bool {
	return score >= b.Lower && score < b.Upper
}

// DisplayRange is the gauge axis for a band set.
type DisplayRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// BandSet is a named, versioned threshold configuration.
type BandSet struct {
	Name        string
	Version     int
	Description string
	Bands       []Band
	Display     DisplayRange
}

// ID is the name@version reference of the set.
func (s BandSet) ID() string {
	return fmt.Sprintf("%s@%d", s.Name, s.Version)
}

// Validate checks that the bands are ordered, contiguous and cover every real number.
func (s BandSet) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewConfigurationError("band set name required")
	}
	if s.Version <= 0 {
		return NewConfigurationError("band set %s: version must be positive", s.Name)
	}
	if len(s.Bands) != len(Levels) {
		return NewConfigurationError("band set %s: expected %d bands, got %d", s.ID(), len(Levels), len(s.Bands))
	}
	for i, band := range s.Bands {
		if band.Level != Levels[i] {
			return NewConfigurationError("band set %s: band %d must be %s, got %s", s.ID(), i, Levels[i], band.Level)
		}
		if math.IsNaN(band.Lower) || math.IsNaN(band.Upper) || !(band.Lower < band.Upper) {
			return NewConfigurationError("band set %s: band %s has empty range [%v, %v)", s.ID(), band.Level, band.Lower, band.Upper)
		}
		if i > 0 && s.Bands[i-1].Upper != band.Lower {
			return NewConfigurationError("band set %s: gap or overlap between %s and %s", s.ID(), s.Bands[i-1].Level, band.Level)
		}
		if !band.Contains(band.Marker) {
			return NewConfigurationError("band set %s: marker %v outside band %s", s.ID(), band.Marker, band.Level)
		}
	}
	if !math.IsInf(s.Bands[0].Lower, -1) || !math.IsInf(s.Bands[len(s.Bands)-1].Upper, 1) {
		return NewConfigurationError("band set %s: bands must be unbounded at both ends", s.ID())
	}
	if !(s.Display.Min < s.Display.Max) {
		return NewConfigurationError("band set %s: display range [%v, %v] is empty", s.ID(), s.Display.Min, s.Display.Max)
	}
	return nil
}

// Classify returns the band containing score.
func (s BandSet) Classify(score float64) (Band, error) {
	if math.IsNaN(score) {
		return Band{}, newComputationError("%w: score is NaN", ErrNonFiniteResult)
	}
	for _, band := range s.Bands {
		if band.Contains(score) {
			return band, nil
		}
	}
	// +Inf is not inside [x, +Inf); it still belongs to the top band.
	if math.IsInf(score, 1) && len(s.Bands) > 0 {
		return s.Bands[len(s.Bands)-1], nil
	}
	return Band{}, NewConfigurationError("band set %s does not cover score %v", s.ID(), score)
}

// Band returns the band configured for level.
func (s BandSet) Band(level Level) (Band, bool) {
	for _, band := range s.Bands {
		if band.Level == level {
			return band, true
		}
	}
	return Band{}, false
}

// BandSetA is the ~0..10 scale used with the linear formula.
func BandSetA() BandSet {
	return BandSet{
		Name:        "A",
		Version:     1,
		Description: "Linear formula, ~0-10 scale: LOW < 5, INTERMEDIARY [5,7), HIGH >= 7",
		Bands: []Band{
			{Level: LevelLow, Lower: math.Inf(-1), Upper: 5, Color: "lightgreen", Marker: 2.5},
			{Level: LevelIntermediary, Lower: 5, Upper: 7, Color: "lightyellow", Marker: 6},
			{Level: LevelHigh, Lower: 7, Upper: math.Inf(1), Color: "lightcoral", Marker: 10},
		},
		Display: DisplayRange{Min: 0, Max: 20},
	}
}

// BandSetB is the ~0..100 scale.
func BandSetB() BandSet {
	return BandSet{
		Name:        "B",
		Version:     1,
		Description: "Linear formula, ~0-100 scale: LOW < 25, INTERMEDIARY [25,75), HIGH >= 75",
		Bands: []Band{
			{Level: LevelLow, Lower: math.Inf(-1), Upper: 25, Color: "lightgreen", Marker: 12.5},
			{Level: LevelIntermediary, Lower: 25, Upper: 75, Color: "lightyellow", Marker: 50},
			{Level: LevelHigh, Lower: 75, Upper: math.Inf(1), Color: "lightcoral", Marker: 87.5},
		},
		Display: DisplayRange{Min: 0, Max: 100},
	}
}

// GaugeBandSet is the classifier risk meter: 0..100 axis cut at 35 and 70,
// with each predicted level drawn at 25, 50 or 85.
func GaugeBandSet() BandSet {
	return BandSet{
		Name:        "gauge",
		Version:     1,
		Description: "Classifier risk meter: LOW < 35, INTERMEDIARY [35,70), HIGH >= 70",
		Bands: []Band{
			{Level: LevelLow, Lower: math.Inf(-1), Upper: 35, Color: "lightgreen", Marker: 25},
			{Level: LevelIntermediary, Lower: 35, Upper: 70, Color: "lightyellow", Marker: 50},
			{Level: LevelHigh, Lower: 70, Upper: math.Inf(1), Color: "lightcoral", Marker: 85},
		},
		Display: DisplayRange{Min: 0, Max: 100},
	}
}
