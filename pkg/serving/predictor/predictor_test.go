package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/synaptica-ai/cvdrisk/pkg/ml/linear"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

// testArtifact builds a three-class model whose HIGH logit grows with systolic
// pressure, so the predicted class is controlled by a single feature.
func testArtifact(t *testing.T, order []string) []byte {
	t.Helper()
	classes := make([]linear.Weights, 3)
	for i := range classes {
		classes[i].Coefficients = make([]float64, len(order))
	}
	for i, name := range order {
		if name == risk.FeatureSystolicBP {
			classes[0].Coefficients[i] = 0.1
		}
	}
	classes[1].Bias = 13
	classes[2].Bias = 14
	artifact := Artifact{Model: ArtifactModel{
		Name:         "cvd-risk",
		Version:      "test",
		Type:         TypeMultinomialLogistic,
		FeatureNames: order,
		Labels:       []string{"HIGH", "INTERMEDIARY", "LOW"},
		Classes:      classes,
	}}
	content, err := json.Marshal(artifact)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	return content
}

func TestParseArtifactAndScore(t *testing.T) {
	artifact, err := ParseArtifact(testArtifact(t, risk.FeatureNames()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if artifact.Revision == "" {
		t.Fatal("expected revision to be set")
	}
	model, err := NewModel(artifact)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	scorer, err := risk.NewClassifierScorer(model, risk.GaugeBandSet())
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}

	profile := risk.DefaultProfile()
	profile.SystolicBP = 200
	got, err := scorer.Evaluate(profile)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got.Level != risk.LevelHigh || got.Score != 85 {
		t.Fatalf("expected HIGH at 85, got %s at %v", got.Level, got.Score)
	}
	if got.Confidence <= 0.5 {
		t.Fatalf("expected confident prediction, got %v", got.Confidence)
	}

	profile.SystolicBP = 90
	got, err = scorer.Evaluate(profile)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got.Level != risk.LevelLow {
		t.Fatalf("expected LOW, got %s", got.Level)
	}
}

func TestParseArtifactRejectsBrokenArtifacts(t *testing.T) {
	valid := func() Artifact {
		a, err := ParseArtifact(testArtifact(t, risk.FeatureNames()))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return a
	}

	noFeatures := valid()
	noFeatures.Model.FeatureNames = nil

	dupFeatures := valid()
	dupFeatures.Model.FeatureNames[1] = dupFeatures.Model.FeatureNames[0]

	labelCount := valid()
	labelCount.Model.Labels = labelCount.Model.Labels[:2]

	wrongType := valid()
	wrongType.Model.Type = "random_forest"

	shortWeights := valid()
	shortWeights.Model.Classes[2].Coefficients = shortWeights.Model.Classes[2].Coefficients[:3]

	for name, artifact := range map[string]Artifact{
		"no features": noFeatures, "duplicate": dupFeatures, "labels": labelCount,
		"type": wrongType, "weights": shortWeights,
	} {
		if err := artifact.Validate(); !risk.IsConfigurationError(err) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
	}
	if _, err := ParseArtifact([]byte("{not json")); !risk.IsConfigurationError(err) {
		t.Fatalf("expected configuration error for bad json, got %v", err)
	}
}

func TestArtifactFeatureOrderMismatchFailsLoudly(t *testing.T) {
	order := append(risk.FeatureNames()[:16], "Resting Heart Rate")
	artifact, err := ParseArtifact(testArtifact(t, order))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	model, err := NewModel(artifact)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if _, err := risk.NewClassifierScorer(model, risk.GaugeBandSet()); !errors.Is(err, risk.ErrFeatureMismatch) {
		t.Fatalf("expected feature mismatch, got %v", err)
	}
}

func TestLoaderDetectsNewRevisions(t *testing.T) {
	dir := t.TempDir()
	source := NewFileSource(dir)
	loader := NewLoader(source, "cvd-risk")

	if _, _, err := loader.Load(context.Background()); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}

	path := source.Path("cvd-risk")
	if err := os.WriteFile(path, testArtifact(t, risk.FeatureNames()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	first, changed, err := loader.Load(context.Background())
	if err != nil || !changed {
		t.Fatalf("expected first load to change, got changed=%v err=%v", changed, err)
	}
	again, changed, err := loader.Load(context.Background())
	if err != nil || changed || again != first {
		t.Fatalf("expected cached model, got changed=%v err=%v", changed, err)
	}

	reversed := risk.FeatureNames()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	if err := os.WriteFile(path, testArtifact(t, reversed), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	next, changed, err := loader.Load(context.Background())
	if err != nil || !changed {
		t.Fatalf("expected new revision, got changed=%v err=%v", changed, err)
	}
	if next.ExpectedFeatureOrder()[0] != risk.FeatureWaistHeightRatio {
		t.Fatalf("expected reversed order, got %v", next.ExpectedFeatureOrder())
	}
	if filepath.Base(path) != "cvd-risk_latest.json" {
		t.Fatalf("unexpected artifact path %s", path)
	}
}

func TestHTTPSourceRetriesAndAuthenticates(t *testing.T) {
	content := testArtifact(t, risk.FeatureNames())
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"registry-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/models/cvd-risk/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer registry-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(content)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	source, err := NewHTTPSource(RegistryOptions{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "cvd-risk-service",
		ClientSecret: "secret",
		Timeout:      2 * time.Second,
		Attempts:     3,
	})
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	got, err := source.Fetch(context.Background(), "cvd-risk")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != string(content) {
		t.Fatal("unexpected artifact content")
	}
	if attempts.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts.Load())
	}

	if _, err := source.Fetch(context.Background(), "unknown"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}
