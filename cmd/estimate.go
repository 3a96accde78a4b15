package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/note-leads/internal/pipeline"
	"github.com/sells-group/note-leads/internal/scorer"
)

var estimateOpts pipeline.LeadOptions

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Derive speculative note leads from parsed property values",
	Long: "Treats each property owner as a possible note holder with a loan estimated from the assessed value. " +
		"Every row is marked estimated=Y and written to its own files, apart from the verified note outputs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := pipeline.NewEnv(cfg, "estimate")
		sum, err := pipeline.Estimate(cmd.Context(), env, estimateOpts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

func init() {
	f := estimateCmd.Flags()
	f.StringVar(&estimateOpts.Input, "input", "", "prop_clean.csv (required)")
	f.StringVar(&estimateOpts.Profile, "profile", scorer.ProfileEstimate, "scoring profile")
	_ = estimateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(estimateCmd)
}
