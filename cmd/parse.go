package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sells-group/note-leads/internal/layout"
	"github.com/sells-group/note-leads/internal/pipeline"
)

var (
	parseInput    string
	parseLayout   string
	parseSheet    string
	parseProgress bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract a fixed-width appraisal roll into prop_clean.csv and prop_errors.csv",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, sheet := parseLayout, parseSheet
		if path == "" {
			path, sheet = cfg.Layout.Path, cfg.Layout.Sheet
		}
		l, err := layout.Load(path, sheet)
		if err != nil {
			return eris.Wrap(err, "parse: load layout")
		}

		opts := pipeline.ParseOptions{Input: parseInput, Layout: l}
		if parseProgress {
			opts.Wrap = func(r io.Reader, size int64) io.Reader {
				bar := progressbar.DefaultBytes(size, "parsing")
				return io.TeeReader(r, bar)
			}
		}

		env := pipeline.NewEnv(cfg, "parse")
		sum, err := pipeline.Parse(cmd.Context(), env, opts)
		if err != nil {
			return err
		}
		if parseProgress {
			cmd.PrintErrln()
		}
		report(cmd, sum)
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseInput, "input", "", "fixed-width roll (.txt) or ZIP archive holding one (required)")
	parseCmd.Flags().StringVar(&parseLayout, "layout", "", "layout file (.yaml or .xlsx); default is the built-in layout")
	parseCmd.Flags().StringVar(&parseSheet, "sheet", "", "sheet name for .xlsx layouts")
	parseCmd.Flags().BoolVar(&parseProgress, "progress", isTerminal(os.Stderr), "show a progress bar on stderr")
	_ = parseCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(parseCmd)
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	st, err := f.Stat()
	return err == nil && st.Mode()&os.ModeCharDevice != 0
}
