package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/config"
	"github.com/sells-group/housing-transit/internal/overrides"
	"github.com/sells-group/housing-transit/internal/pipeline"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "housing-transit",
	Short: "Affordable housing and L transit scoring for Chicago neighborhoods",
	Long:  "Joins affordable-housing addresses and CTA L station connectivity onto Chicago neighborhood boundaries, scores each neighborhood and renders choropleth maps.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// newPipeline builds a pipeline with the configured override tables.
func newPipeline() (*pipeline.Pipeline, error) {
	tables, err := overrides.Load(cfg.Input.OverridesPath())
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, tables), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
