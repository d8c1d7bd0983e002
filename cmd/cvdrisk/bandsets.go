package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/cvdrisk/pkg/bandstore"
	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/database"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/serving"
)

func bandSetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "band-sets",
		Short: "Inspect and manage risk band sets",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the band sets available to the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := serving.LoadRegistry(context.Background(), config.Load())
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %-8s %-8s %s\n", "ID", "MIN", "MAX", "BANDS")
			for _, set := range registry.All() {
				fmt.Printf("%-16s %-8g %-8g %s\n", set.ID(), set.Display.Min, set.Display.Max, describeBands(set))
			}
			return nil
		},
	}
	cmd.AddCommand(listCmd)

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a band set YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, err := risk.LoadBandSets(args[0])
			if err != nil {
				return err
			}
			for _, set := range sets {
				fmt.Printf("%s OK: %s\n", set.ID(), describeBands(set))
			}
			return nil
		},
	}
	cmd.AddCommand(validateCmd)

	// sync writes built-in and file band sets to Postgres regardless of BAND_STORE_ENABLED
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Write band sets to the Postgres catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cfg.BandStoreEnabled = false
			ctx := context.Background()
			registry, err := serving.LoadRegistry(ctx, cfg)
			if err != nil {
				return err
			}
			repo, err := serving.OpenBandStore(cfg)
			if err != nil {
				return err
			}
			defer database.ClosePostgres()
			if err := bandstore.Sync(ctx, repo, registry); err != nil {
				return err
			}
			fmt.Printf("Synchronised %d band set(s).\n", len(registry.All()))
			return nil
		},
	}
	cmd.AddCommand(syncCmd)

	return cmd
}

func describeBands(set risk.BandSet) string {
	out := ""
	for i, band := range set.Bands {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %s", band.Level, bandRange(band))
	}
	return out
}

func bandRange(band risk.Band) string {
	switch {
	case math.IsInf(band.Lower, -1):
		return fmt.Sprintf("<%g", band.Upper)
	case math.IsInf(band.Upper, 1):
		return fmt.Sprintf(">=%g", band.Lower)
	default:
		return fmt.Sprintf("[%g,%g)", band.Lower, band.Upper)
	}
}
