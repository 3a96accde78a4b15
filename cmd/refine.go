package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/note-leads/internal/pipeline"
	"github.com/sells-group/note-leads/internal/scorer"
)

var (
	refineOpts pipeline.LeadOptions
	rolesOpts  pipeline.LeadOptions
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Re-score leads on engagement and split them into priority tiers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := pipeline.NewEnv(cfg, "refine")
		sum, err := pipeline.Refine(cmd.Context(), env, refineOpts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Classify lead entities and split them into outreach streams",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := pipeline.NewEnv(cfg, "roles")
		sum, err := pipeline.Roles(cmd.Context(), env, rolesOpts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

func init() {
	f := refineCmd.Flags()
	f.StringVar(&refineOpts.Input, "input", "", "lead CSV (required)")
	f.StringVar(&refineOpts.Profile, "profile", scorer.ProfileEngagement, "scoring profile")
	_ = refineCmd.MarkFlagRequired("input")

	f = rolesCmd.Flags()
	f.StringVar(&rolesOpts.Input, "input", "", "lead CSV (required)")
	f.StringVar(&rolesOpts.Profile, "profile", scorer.ProfileRoles, "scoring profile")
	_ = rolesCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(refineCmd, rolesCmd)
}
