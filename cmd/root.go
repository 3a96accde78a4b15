package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/pipeline"
)

var cfg *config.Config

var outDir string

var rootCmd = &cobra.Command{
	Use:   "note-leads",
	Short: "Lead extraction, scoring and routing for county property and recorder data",
	Long: "Parses fixed-width appraisal rolls and recorder exports, classifies owners and lenders, " +
		"scores and routes every record to exactly one tier file, and consolidates, enriches and exports the leads.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		if outDir != "" {
			cfg.Output.Dir = outDir
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return cfg.Validate(cmd.Name())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "output directory (overrides output.dir)")
}

// report prints a stage summary to the command's stdout.
func report(cmd *cobra.Command, sum *pipeline.Summary) {
	sum.Fprint(cmd.OutOrStdout())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
