package predictor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/synaptica-ai/cvdrisk/pkg/ml/linear"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

const TypeMultinomialLogistic = "multinomial_logistic"

var ErrArtifactNotFound = errors.New("model artifact not found")

type ArtifactModel struct {
	Name         string           `json:"name"`
	Version      string           `json:"version"`
	Type         string           `json:"type"`
	Algorithm    string           `json:"algorithm,omitempty"`
	FeatureNames []string         `json:"feature_names"`
	Labels       []string         `json:"labels"`
	Classes      []linear.Weights `json:"classes"`
}

// Artifact is the on-disk classifier bundle: model weights, label decoder
// and the feature order the weights were fitted against.
type Artifact struct {
	Model ArtifactModel `json:"model"`

	Revision string `json:"-"`
}

// ParseArtifact decodes and validates an artifact. Revision is the sha256 of content.
func ParseArtifact(content []byte) (Artifact, error) {
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return Artifact{}, risk.NewConfigurationError("decode artifact: %w", err)
	}
	if err := artifact.Validate(); err != nil {
		return Artifact{}, err
	}
	sum := sha256.Sum256(content)
	artifact.Revision = hex.EncodeToString(sum[:])
	return artifact, nil
}

func (a Artifact) Validate() error {
	m := a.Model
	if m.Type != TypeMultinomialLogistic {
		return risk.NewConfigurationError("artifact %s: unsupported model type %q", m.Name, m.Type)
	}
	if len(m.FeatureNames) == 0 {
		return risk.NewConfigurationError("artifact %s: missing feature names", m.Name)
	}
	seen := make(map[string]struct{}, len(m.FeatureNames))
	for _, name := range m.FeatureNames {
		if strings.TrimSpace(name) == "" {
			return risk.NewConfigurationError("artifact %s: blank feature name", m.Name)
		}
		if _, dup := seen[name]; dup {
			return risk.NewConfigurationError("artifact %s: duplicate feature %q", m.Name, name)
		}
		seen[name] = struct{}{}
	}
	if len(m.Labels) == 0 || len(m.Labels) != len(m.Classes) {
		return risk.NewConfigurationError("artifact %s: %d labels for %d classes", m.Name, len(m.Labels), len(m.Classes))
	}
	if err := (linear.Multinomial{Classes: m.Classes}).Check(len(m.FeatureNames)); err != nil {
		return risk.NewConfigurationError("artifact %s: %w", m.Name, err)
	}
	return nil
}

// Model adapts an artifact to risk.ProbabilityModel.
type Model struct {
	artifact   Artifact
	classifier linear.Multinomial
}

func NewModel(artifact Artifact) (*Model, error) {
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		artifact:   artifact,
		classifier: linear.Multinomial{Classes: artifact.Model.Classes},
	}, nil
}

func (m *Model) Predict(features []float64) (int, error) {
	return m.classifier.Predict(features)
}

func (m *Model) PredictProba(features []float64) ([]float64, error) {
	return m.classifier.Proba(features)
}

func (m *Model) DecodeLabel(labelID int) (string, error) {
	if labelID < 0 || labelID >= len(m.artifact.Model.Labels) {
		return "", fmt.Errorf("label id %d outside [0, %d)", labelID, len(m.artifact.Model.Labels))
	}
	return m.artifact.Model.Labels[labelID], nil
}

func (m *Model) ExpectedFeatureOrder() []string {
	return append([]string(nil), m.artifact.Model.FeatureNames...)
}

func (m *Model) Name() string     { return m.artifact.Model.Name }
func (m *Model) Version() string  { return m.artifact.Model.Version }
func (m *Model) Revision() string { return m.artifact.Revision }
