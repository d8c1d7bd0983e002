package bandstore

import (
	"context"
	"fmt"

	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

type Store interface {
	Upsert(ctx context.Context, set risk.BandSet) error
	List(ctx context.Context) ([]risk.BandSet, error)
}

// Sync writes every registry set to the store, then registers every stored
// set, so sets added directly in the database become selectable.
func Sync(ctx context.Context, store Store, registry *risk.Registry) error {
	for _, set := range registry.All() {
		if err := store.Upsert(ctx, set); err != nil {
			return fmt.Errorf("store band set %s: %w", set.ID(), err)
		}
	}
	stored, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list band sets: %w", err)
	}
	for _, set := range stored {
		if err := registry.Register(set); err != nil {
			return err
		}
	}
	logger.Log.WithField("band_sets", len(stored)).Info("Band sets synchronised")
	return nil
}
