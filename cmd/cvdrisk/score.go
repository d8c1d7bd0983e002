package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/serving"
)

func scoreCmd() *cobra.Command {
	defaults := serving.FromProfile(risk.DefaultProfile())
	req := defaults

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one patient profile and print the assessment as JSON",
		Long: "Score one patient profile. Unset flags take the form defaults. " +
			"The scoring strategy and band set come from the environment unless overridden.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
				cfg.ScoringStrategy = strategy
			}
			if bandSet, _ := cmd.Flags().GetString("band-set"); bandSet != "" {
				cfg.BandSet = bandSet
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			service, err := serving.NewFromConfig(ctx, cfg)
			if err != nil {
				return err
			}
			resp, err := service.Evaluate(ctx, req)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(resp)
		},
	}

	flags := cmd.Flags()
	flags.String("strategy", "", "Scoring strategy: linear or classifier (default from SCORING_STRATEGY)")
	flags.String("band-set", "", "Band set reference, name or name@version (default from BAND_SET)")
	flags.IntVar(&req.Age, "age", defaults.Age, "Age in years")
	flags.StringVar(&req.Sex, "sex", defaults.Sex, "Male or Female")
	flags.Float64Var(&req.WeightKg, "weight-kg", defaults.WeightKg, "Weight in kg")
	flags.Float64Var(&req.HeightM, "height-m", defaults.HeightM, "Height in metres")
	flags.IntVar(&req.SystolicBP, "systolic-bp", defaults.SystolicBP, "Systolic blood pressure, mmHg")
	flags.IntVar(&req.DiastolicBP, "diastolic-bp", defaults.DiastolicBP, "Diastolic blood pressure, mmHg")
	flags.IntVar(&req.TotalCholesterol, "total-cholesterol", defaults.TotalCholesterol, "Total cholesterol, mg/dL")
	flags.IntVar(&req.HDL, "hdl", defaults.HDL, "HDL cholesterol, mg/dL")
	flags.IntVar(&req.LDL, "ldl", defaults.LDL, "LDL cholesterol, mg/dL")
	flags.IntVar(&req.FastingBloodSugar, "fasting-blood-sugar", defaults.FastingBloodSugar, "Fasting blood sugar, mg/dL")
	flags.IntVar(&req.WaistCircumferenceCm, "waist-cm", defaults.WaistCircumferenceCm, "Waist circumference in cm")
	flags.StringVar(&req.Smoker, "smoker", defaults.Smoker, "Yes or No")
	flags.StringVar(&req.Diabetic, "diabetic", defaults.Diabetic, "Yes or No")
	flags.StringVar(&req.FamilyHistory, "family-history", defaults.FamilyHistory, "Yes or No")
	flags.StringVar(&req.ActivityLevel, "activity", defaults.ActivityLevel, "Low, Moderate or High")
	return cmd
}
