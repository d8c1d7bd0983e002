package serving

import (
	"context"
	"fmt"

	"github.com/synaptica-ai/cvdrisk/pkg/bandstore"
	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/database"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/serving/predictor"
)

// LoadRegistry starts from the built-in band sets, adds BAND_SET_FILE and,
// when enabled, merges the Postgres band-set catalogue.
func LoadRegistry(ctx context.Context, cfg *config.Config) (*risk.Registry, error) {
	registry := risk.DefaultRegistry()
	if cfg.BandSetFile != "" {
		sets, err := risk.LoadBandSets(cfg.BandSetFile)
		if err != nil {
			return nil, err
		}
		for _, set := range sets {
			if err := registry.Register(set); err != nil {
				return nil, err
			}
		}
		logger.Log.WithFields(map[string]interface{}{
			"file":      cfg.BandSetFile,
			"band_sets": len(sets),
		}).Info("Band set file loaded")
	}
	if cfg.BandStoreEnabled {
		repo, err := OpenBandStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := bandstore.Sync(ctx, repo, registry); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func OpenBandStore(cfg *config.Config) (*bandstore.Repository, error) {
	db, err := database.GetPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect band store: %w", err)
	}
	repo := bandstore.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate band store: %w", err)
	}
	return repo, nil
}

// NewArtifactSource picks the classifier artifact source named by ARTIFACT_SOURCE.
func NewArtifactSource(cfg *config.Config) (predictor.Source, error) {
	switch cfg.ArtifactSource {
	case config.SourceFile:
		return predictor.NewFileSource(cfg.ArtifactDir), nil
	case config.SourceRedis:
		return predictor.NewRedisSource(database.GetRedis(cfg), cfg.ArtifactRedisPrefix), nil
	case config.SourceHTTP:
		source, err := predictor.NewHTTPSource(predictor.RegistryOptions{
			BaseURL:      cfg.ModelRegistryURL,
			TokenURL:     cfg.ModelRegistryTokenURL,
			ClientID:     cfg.ModelRegistryClientID,
			ClientSecret: cfg.ModelRegistrySecret,
			Timeout:      cfg.ModelRegistryTimeout,
		})
		if err != nil {
			return nil, risk.NewConfigurationError("model registry: %w", err)
		}
		return source, nil
	default:
		return nil, risk.NewConfigurationError("unknown artifact source %q", cfg.ArtifactSource)
	}
}

// NewFromConfig wires a Service the way both binaries run it.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	registry, err := LoadRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := Options{
		Strategy:     cfg.ScoringStrategy,
		BandSet:      cfg.BandSet,
		GaugeBandSet: cfg.GaugeBandSet,
		Coefficients: risk.DefaultCoefficients,
	}
	if cfg.ScoringStrategy == risk.StrategyClassifier {
		source, err := NewArtifactSource(cfg)
		if err != nil {
			return nil, err
		}
		opts.Loader = predictor.NewLoader(source, cfg.ModelName)
	}
	return NewService(ctx, registry, opts)
}
