package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/note-leads/internal/pipeline"
	"github.com/sells-group/note-leads/internal/scorer"
)

var (
	targetsOpts   pipeline.PropertyOptions
	favoritesOpts pipeline.PropertyOptions
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Route parsed properties to targets, review and discards",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := pipeline.NewEnv(cfg, "targets")
		sum, err := pipeline.Targets(cmd.Context(), env, targetsOpts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Screen parsed properties against the buy box",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := pipeline.NewEnv(cfg, "favorites")
		sum, err := pipeline.Favorites(cmd.Context(), env, favoritesOpts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

func init() {
	f := targetsCmd.Flags()
	f.StringVar(&targetsOpts.Input, "input", "", "prop_clean.csv (required)")
	f.StringVar(&targetsOpts.Profile, "profile", scorer.ProfileTargets, "scoring profile")
	f.BoolVar(&targetsOpts.Buckets, "buckets", false, "also write one file per value bucket")
	_ = targetsCmd.MarkFlagRequired("input")

	f = favoritesCmd.Flags()
	f.StringVar(&favoritesOpts.Input, "input", "", "prop_clean.csv (required)")
	f.StringVar(&favoritesOpts.Profile, "profile", scorer.ProfileFavorites, "scoring profile")
	_ = favoritesCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(targetsCmd, favoritesCmd)
}
