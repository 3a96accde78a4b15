package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/note-leads/internal/pipeline"
	"github.com/sells-group/note-leads/internal/scorer"
)

var notesOpts pipeline.NotesOptions

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Classify recorder rows into note leads, review and discards",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := pipeline.NewEnv(cfg, "notes")
		sum, err := pipeline.Notes(cmd.Context(), env, notesOpts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

func init() {
	f := notesCmd.Flags()
	f.StringVar(&notesOpts.Input, "input", "", "recorder export CSV (required)")
	f.StringVar(&notesOpts.Profile, "profile", scorer.ProfileNotes, "scoring profile (notes, private-notes or a custom notes profile)")
	f.StringVar(&notesOpts.Props, "props", "", "prop_clean.csv used to fill mailing and property addresses by APN")
	f.StringVar(&notesOpts.Mapping, "mapping", "", "saved field mapping (see map --save)")
	_ = notesCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(notesCmd)
}
