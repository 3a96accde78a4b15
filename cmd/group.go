package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/note-leads/internal/group"
	"github.com/sells-group/note-leads/internal/pipeline"
)

var (
	groupOpts pipeline.GroupOptions
	groupMode string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Consolidate the leads of each owner into one row",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := group.ParseMode(groupMode)
		if err != nil {
			return err
		}
		opts := groupOpts
		opts.Mode = mode

		env := pipeline.NewEnv(cfg, "group")
		sum, err := pipeline.Group(cmd.Context(), env, opts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

func init() {
	f := groupCmd.Flags()
	f.StringVar(&groupOpts.Input, "input", "", "lead CSV (required)")
	f.StringVar(&groupMode, "mode", string(group.ModeOwner), "grouping key: owner (person name) or investor (entity name)")
	f.StringVar(&groupOpts.Output, "output", "", "output file name (default <input>_grouped.csv or <input>_consolidated.csv)")
	_ = groupCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(groupCmd)
}
