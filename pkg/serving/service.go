package serving

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/observability/metrics"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/serving/predictor"
)

type Options struct {
	Strategy     string
	BandSet      string
	GaugeBandSet string
	Coefficients risk.Coefficients
	// Loader is required for the classifier strategy.
	Loader *predictor.Loader
}

// Service owns the active scorer. The classifier scorer can be swapped at
// runtime when a new artifact is published.
type Service struct {
	registry *risk.Registry
	strategy string
	loader   *predictor.Loader
	gauge    risk.BandSet

	mu     sync.RWMutex
	scorer risk.Scorer
	model  *predictor.Model
}

func NewService(ctx context.Context, registry *risk.Registry, opts Options) (*Service, error) {
	s := &Service{registry: registry, strategy: opts.Strategy, loader: opts.Loader}

	switch opts.Strategy {
	case risk.StrategyLinear:
		bands, err := registry.Lookup(opts.BandSet)
		if err != nil {
			return nil, err
		}
		scorer, err := risk.NewLinearScorer(opts.Coefficients, bands)
		if err != nil {
			return nil, err
		}
		s.scorer = scorer
		s.gauge = bands
	case risk.StrategyClassifier:
		bands, err := registry.Lookup(opts.GaugeBandSet)
		if err != nil {
			return nil, err
		}
		if opts.Loader == nil {
			return nil, risk.NewConfigurationError("classifier strategy needs an artifact loader")
		}
		s.gauge = bands
		if err := s.ReloadClassifier(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, risk.NewConfigurationError("unknown scoring strategy %q", opts.Strategy)
	}
	return s, nil
}

func (s *Service) Scorer() risk.Scorer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scorer
}

func (s *Service) Registry() *risk.Registry {
	return s.registry
}

// Evaluate scores one wire request. Only strategy, level and latency are logged.
func (s *Service) Evaluate(ctx context.Context, req models.AssessmentRequest) (models.AssessmentResponse, error) {
	start := time.Now()
	scorer := s.Scorer()

	profile, err := ToProfile(req)
	if err != nil {
		metrics.ObserveFailure(scorer.Strategy(), risk.ErrorKind(err))
		return models.AssessmentResponse{}, err
	}
	assessment, err := scorer.Evaluate(profile)
	if err != nil {
		kind := risk.ErrorKind(err)
		metrics.ObserveFailure(scorer.Strategy(), kind)
		entry := logger.Log.WithFields(logrus.Fields{"strategy": scorer.Strategy(), "kind": kind})
		if kind == "validation" {
			entry.Debug("Assessment rejected")
		} else {
			entry.WithError(err).Error("Assessment failed")
		}
		return models.AssessmentResponse{}, err
	}

	latency := time.Since(start)
	metrics.ObserveAssessment(assessment.Strategy, assessment.BandSet, string(assessment.Level), latency)

	resp := models.AssessmentResponse{
		ID:             uuid.New().String(),
		RiskLevel:      assessment.Level,
		Score:          assessment.Score,
		Label:          assessment.Label,
		Confidence:     assessment.Confidence,
		Strategy:       assessment.Strategy,
		BandSet:        assessment.BandSet,
		BandSetVersion: assessment.BandSetVersion,
		Features:       assessment.Features,
		Gauge:          risk.NewGauge(assessment, scorer.BandSet()),
		Latency:        latency,
	}

	logger.Log.WithFields(logrus.Fields{
		"assessment_id": resp.ID,
		"strategy":      resp.Strategy,
		"band_set":      resp.BandSet,
		"risk_level":    resp.RiskLevel,
		"latency_us":    latency.Microseconds(),
	}).Info("Assessment completed")
	return resp, nil
}

// ReloadClassifier fetches the latest artifact and swaps in a scorer built
// from it. On any failure the previous scorer stays active.
func (s *Service) ReloadClassifier(ctx context.Context) error {
	if s.loader == nil {
		return risk.NewConfigurationError("no artifact loader configured")
	}
	model, changed, err := s.loader.Load(ctx)
	if err != nil {
		metrics.ObserveReload("failed")
		return risk.NewConfigurationError("load classifier artifact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !changed && s.model != nil && s.model.Revision() == model.Revision() {
		metrics.ObserveReload("unchanged")
		return nil
	}
	scorer, err := risk.NewClassifierScorer(model, s.gauge)
	if err != nil {
		metrics.ObserveReload("failed")
		return fmt.Errorf("artifact %s@%s: %w", model.Name(), model.Version(), err)
	}
	s.scorer = scorer
	s.model = model
	metrics.ObserveReload("loaded")

	logger.Log.WithFields(logrus.Fields{
		"model":    model.Name(),
		"version":  model.Version(),
		"revision": model.Revision(),
		"source":   s.loader.Source().Describe(),
	}).Info("Classifier artifact loaded")
	return nil
}

// HandleModelEvent reloads the classifier when an artifact for the configured
// model is published. Other events are ignored.
func (s *Service) HandleModelEvent(ctx context.Context, event models.Event) error {
	if event.Type != models.EventModelPublished || s.strategy != risk.StrategyClassifier {
		return nil
	}
	name, _ := event.Data["model"].(string)
	if name != s.loader.ModelName() {
		return nil
	}
	logger.Log.WithFields(logrus.Fields{
		"event_id": event.ID,
		"model":    name,
		"revision": event.Data["revision"],
	}).Info("Model published, reloading")
	return s.ReloadClassifier(ctx)
}

func (s *Service) Config() models.ConfigResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := models.ConfigResponse{
		Strategy:     s.scorer.Strategy(),
		BandSet:      s.scorer.BandSet().Spec(),
		GaugeBandSet: s.gauge.Spec(),
		FeatureOrder: risk.FeatureNames(),
	}
	if s.model != nil {
		resp.FeatureOrder = s.model.ExpectedFeatureOrder()
		resp.Model = &models.ModelInfo{
			Name:     s.model.Name(),
			Version:  s.model.Version(),
			Revision: s.model.Revision(),
			Source:   s.loader.Source().Describe(),
		}
	}
	return resp
}
