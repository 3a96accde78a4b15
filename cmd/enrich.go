package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/note-leads/internal/pipeline"
)

var (
	enrichOpts pipeline.EnrichOptions
	exportOpts pipeline.ExportOptions
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Merge provider email and phone results into a lead file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env := pipeline.NewEnv(cfg, "enrich")
		sum, err := pipeline.Enrich(cmd.Context(), env, enrichOpts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:       "export {enrichment|outreach}",
	Short:     "Write a provider upload file from a lead file",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{pipeline.ExportEnrichment, pipeline.ExportOutreach},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := exportOpts
		opts.Kind = args[0]

		env := pipeline.NewEnv(cfg, "export")
		sum, err := pipeline.Export(cmd.Context(), env, opts)
		if err != nil {
			return err
		}
		report(cmd, sum)
		return nil
	},
}

func init() {
	f := enrichCmd.Flags()
	f.StringVar(&enrichOpts.Input, "input", "", "lead CSV with a lead_id column (required)")
	f.StringVar(&enrichOpts.Lookup, "lookup", "", "provider results CSV: lead_id, email, phone (required)")
	_ = enrichCmd.MarkFlagRequired("input")
	_ = enrichCmd.MarkFlagRequired("lookup")

	exportCmd.Flags().StringVar(&exportOpts.Input, "input", "", "lead CSV (required)")
	_ = exportCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(enrichCmd, exportCmd)
}
