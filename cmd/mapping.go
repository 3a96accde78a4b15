package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/mapper"
)

var (
	mapInput string
	mapSave  string
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Show how a recorder CSV header maps onto the canonical fields",
	RunE: func(cmd *cobra.Command, _ []string) error {
		header, err := readHeader(cmd.Context(), mapInput)
		if err != nil {
			return err
		}

		m := mapper.Map(header, mapper.Options{
			Threshold:         cfg.Mapper.Threshold,
			OptionalThreshold: cfg.Mapper.OptionalThreshold,
			Optional:          cfg.Mapper.Optional,
			Required:          cfg.Mapper.Required,
		})
		printMapping(cmd.OutOrStdout(), m)
		if len(m.MissingRequired) > 0 {
			zap.L().Warn("required fields not found", zap.Strings("fields", m.MissingRequired))
		}

		if mapSave != "" {
			if err := m.Save(mapSave); err != nil {
				return err
			}
			zap.L().Info("mapping saved", zap.String("path", mapSave))
		}
		return nil
	},
}

func init() {
	mapCmd.Flags().StringVar(&mapInput, "input", "", "recorder export CSV (required)")
	mapCmd.Flags().StringVar(&mapSave, "save", "", "write the mapping as YAML for notes --mapping")
	_ = mapCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(mapCmd)
}

func readHeader(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "map: open %s", path)
	}
	defer f.Close()

	r, err := fetcher.NewDecodingReader(f, cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows, errs := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		Delimiter:  fetcher.Delimiter(cfg.Input.Delimiter),
		LazyQuotes: cfg.Input.LazyQuotes,
	})
	header, ok := <-rows
	if !ok {
		if err := <-errs; err != nil {
			return nil, eris.Wrap(err, "map: read header")
		}
		return nil, eris.Errorf("map: %s is empty", path)
	}
	return header, nil
}

func printMapping(out io.Writer, m *mapper.Mapping) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tCOLUMN\tSCORE")
	_, _ = fmt.Fprintln(w, "-----\t------\t-----")
	for _, match := range m.Matches {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\n", match.Field, match.Column, match.Score)
	}
	for _, field := range m.Missing {
		_, _ = fmt.Fprintf(w, "%s\t-\t-\n", field)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nfound %d, missing %d\n", len(m.Found), len(m.Missing))
	for _, field := range m.MissingRequired {
		_, _ = fmt.Fprintf(out, "required field not found: %s\n", field)
	}
}
