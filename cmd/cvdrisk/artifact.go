package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/database"
	"github.com/synaptica-ai/cvdrisk/pkg/common/kafka"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/serving/predictor"
)

func artifactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Validate and publish classifier artifacts",
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that an artifact parses and matches the feature set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := loadArtifact(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s@%s OK (revision %s, %d features)\n",
				model.Name(), model.Version(), model.Revision()[:12], len(model.ExpectedFeatureOrder()))
			return nil
		},
	}
	cmd.AddCommand(validateCmd)

	publishCmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Store an artifact in Redis as the latest version and announce it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notify, _ := cmd.Flags().GetBool("notify")
			if _, err := loadArtifact(args[0]); err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg := config.Load()
			ctx := context.Background()
			source := predictor.NewRedisSource(database.GetRedis(cfg), cfg.ArtifactRedisPrefix)
			defer database.CloseRedis()
			artifact, err := source.Publish(ctx, content)
			if err != nil {
				return err
			}
			fmt.Printf("Published %s@%s to %s\n", artifact.Model.Name, artifact.Model.Version, source.Key(artifact.Model.Name))

			if !notify {
				return nil
			}
			producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.ModelEventsTopic)
			defer producer.Close()
			event, err := producer.PublishEvent(ctx, models.EventModelPublished, "cvdrisk-cli", artifact.Model.Name, map[string]interface{}{
				"model":    artifact.Model.Name,
				"version":  artifact.Model.Version,
				"revision": artifact.Revision,
			})
			if err != nil {
				return fmt.Errorf("announce artifact: %w", err)
			}
			fmt.Printf("Announced on %s (event %s)\n", cfg.ModelEventsTopic, event.ID)
			return nil
		},
	}
	publishCmd.Flags().Bool("notify", true, "Publish a model.published event on MODEL_EVENTS_TOPIC")
	cmd.AddCommand(publishCmd)

	return cmd
}

func loadArtifact(path string) (*predictor.Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	artifact, err := predictor.ParseArtifact(content)
	if err != nil {
		return nil, err
	}
	model, err := predictor.NewModel(artifact)
	if err != nil {
		return nil, err
	}
	if err := risk.CheckFeatureOrder(model.ExpectedFeatureOrder()); err != nil {
		return nil, err
	}
	return model, nil
}
