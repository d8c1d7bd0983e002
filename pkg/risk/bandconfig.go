package risk

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// BandSpec is the serialisable form of a band. A nil Lower on the first band
// and a nil Upper on the last band mean unbounded.
type BandSpec struct {
	Level  Level    `yaml:"level" json:"level"`
	Lower  *float64 `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper  *float64 `yaml:"upper,omitempty" json:"upper,omitempty"`
	Color  string   `yaml:"color,omitempty" json:"color,omitempty"`
	Marker *float64 `yaml:"marker,omitempty" json:"marker,omitempty"`
}

type BandSetSpec struct {
	Name        string       `yaml:"name" json:"name"`
	Version     int          `yaml:"version" json:"version"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Display     DisplayRange `yaml:"display" json:"display"`
	Bands       []BandSpec   `yaml:"bands" json:"bands"`
}

type BandSetsFile struct {
	BandSets []BandSetSpec `yaml:"band_sets" json:"band_sets"`
}

// Spec converts the set into its serialisable form.
func (s BandSet) Spec() BandSetSpec {
	spec := BandSetSpec{
		Name:        s.Name,
		Version:     s.Version,
		Description: s.Description,
		Display:     s.Display,
	}
	for _, band := range s.Bands {
		bs := BandSpec{Level: band.Level, Color: band.Color, Marker: floatPtr(band.Marker)}
		if !math.IsInf(band.Lower, 0) {
			bs.Lower = floatPtr(band.Lower)
		}
		if !math.IsInf(band.Upper, 0) {
			bs.Upper = floatPtr(band.Upper)
		}
		spec.Bands = append(spec.Bands, bs)
	}
	return spec
}

// Build converts a spec into a validated BandSet.
func (spec BandSetSpec) Build() (BandSet, error) {
	set := BandSet{
		Name:        strings.TrimSpace(spec.Name),
		Version:     spec.Version,
		Description: spec.Description,
		Display:     spec.Display,
	}
	last := len(spec.Bands) - 1
	for i, bs := range spec.Bands {
		level, err := ParseLevel(string(bs.Level))
		if err != nil {
			return BandSet{}, NewConfigurationError("band set %s: %w", spec.Name, err)
		}
		band := Band{Level: level, Color: bs.Color}
		switch {
		case bs.Lower != nil:
			band.Lower = *bs.Lower
		case i == 0:
			band.Lower = math.Inf(-1)
		default:
			return BandSet{}, NewConfigurationError("band set %s: band %s needs a lower bound", spec.Name, level)
		}
		switch {
		case bs.Upper != nil:
			band.Upper = *bs.Upper
		case i == last:
			band.Upper = math.Inf(1)
		default:
			return BandSet{}, NewConfigurationError("band set %s: band %s needs an upper bound", spec.Name, level)
		}
		if bs.Marker != nil {
			band.Marker = *bs.Marker
		} else {
			band.Marker = defaultMarker(band, spec.Display)
		}
		set.Bands = append(set.Bands, band)
	}
	if err := set.Validate(); err != nil {
		return BandSet{}, err
	}
	return set, nil
}

// defaultMarker is the midpoint of the band clipped to the display range.
func defaultMarker(band Band, display DisplayRange) float64 {
	lo := math.Max(band.Lower, display.Min)
	hi := math.Min(band.Upper, display.Max)
	if lo >= hi {
		if math.IsInf(band.Lower, -1) {
			return band.Upper - 1
		}
		return band.Lower
	}
	return lo + (hi-lo)/2
}

// LoadBandSets reads a YAML band set file. Every set is validated.
func LoadBandSets(path string) ([]BandSet, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return ParseBandSets(content)
}

func ParseBandSets(content []byte) ([]BandSet, error) {
	var file BandSetsFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, NewConfigurationError("parse band sets: %w", err)
	}
	if len(file.BandSets) == 0 {
		return nil, NewConfigurationError("no band sets configured")
	}
	sets := make([]BandSet, 0, len(file.BandSets))
	for _, spec := range file.BandSets {
		set, err := spec.Build()
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Registry holds band sets by name and version. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]map[int]BandSet
}

func NewRegistry(sets ...BandSet) (*Registry, error) {
	r := &Registry{sets: make(map[string]map[int]BandSet)}
	for _, set := range sets {
		if err := r.Register(set); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry contains the built-in sets A, B and gauge.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BandSetA(), BandSetB(), GaugeBandSet())
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds or replaces a set after validating it.
func (r *Registry) Register(set BandSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	versions, ok := r.sets[set.Name]
	if !ok {
		versions = make(map[int]BandSet)
		r.sets[set.Name] = versions
	}
	versions[set.Version] = set
	return nil
}

// Lookup resolves "name" to the latest version and "name@version" to that version.
func (r *Registry) Lookup(ref string) (BandSet, error) {
	name, version, err := parseRef(ref)
	if err != nil {
		return BandSet{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions, ok := r.sets[name]
	if !ok || len(versions) == 0 {
		return BandSet{}, ConfigurationError{reason: fmt.Errorf("%w: %s", ErrUnknownBandSet, ref)}
	}
	if version == 0 {
		latest := 0
		for v := range versions {
			if v > latest {
				latest = v
			}
		}
		return versions[latest], nil
	}
	set, ok := versions[version]
	if !ok {
		return BandSet{}, ConfigurationError{reason: fmt.Errorf("%w: %s", ErrUnknownBandSet, ref)}
	}
	return set, nil
}

// All returns every registered set ordered by name then version.
func (r *Registry) All() []BandSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []BandSet
	for _, versions := range r.sets {
		for _, set := range versions {
			out = append(out, set)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}

func parseRef(ref string) (string, int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", 0, ConfigurationError{reason: errors.New("band set reference required")}
	}
	name, rawVersion, found := strings.Cut(ref, "@")
	if !found {
		return name, 0, nil
	}
	version, err := strconv.Atoi(strings.TrimPrefix(rawVersion, "v"))
	if err != nil || version <= 0 {
		return "", 0, NewConfigurationError("invalid band set version in %q", ref)
	}
	return name, version, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
