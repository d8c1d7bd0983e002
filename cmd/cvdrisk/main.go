package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
)

func main() {
	logger.Init("cvdrisk")

	rootCmd := &cobra.Command{
		Use:           "cvdrisk",
		Short:         "Cardiovascular disease risk scoring tools",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(bandSetsCmd())
	rootCmd.AddCommand(artifactCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
