package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/enrich"
	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/output"
)

// Export output files.
const (
	FileEnrichmentUpload = "enrichment_upload.csv"
	FileOutreachUpload   = "outreach_upload.csv"
)

// Export kinds.
const (
	ExportEnrichment = "enrichment"
	ExportOutreach   = "outreach"
)

// EnrichOptions configures a contact merge.
type EnrichOptions struct {
	Input string
	// Lookup is the provider's result file: lead_id, email, phone.
	Lookup string
	OutDir string
}

// EnrichFile is the merged output name for input.
func EnrichFile(input string) string {
	return stem(input) + "_enriched.csv"
}

// Enrich merges provider contact data into a lead file by lead id. Every
// source column is kept; email and phone are added when absent.
func Enrich(ctx context.Context, env *Env, opts EnrichOptions) (*Summary, error) {
	log := env.Log
	lookup, err := enrich.LoadLookup(ctx, opts.Lookup, env.recordOptions())
	if err != nil {
		return nil, err
	}
	log.Info("enrich: lookup loaded", zap.String("lookup", opts.Lookup), zap.Int("leads", len(lookup)))

	r, closeInput, err := env.openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	rows, rowErrs := fetcher.StreamCSV(streamCtx, r, env.recordOptions())
	header, ok := <-rows
	if !ok {
		if err := <-rowErrs; err != nil {
			return nil, eris.Wrap(err, "enrich: read header")
		}
		return nil, eris.Errorf("enrich: %s is empty", opts.Input)
	}

	m := enrich.NewMerger(header, lookup)
	if !m.HasLeadID() {
		log.Warn("enrich: input has no lead_id column; no rows will match", zap.String("input", opts.Input))
	}
	out, err := output.CreateRaw(filepath.Join(env.outDir(opts.OutDir), EnrichFile(opts.Input)), m.Header())
	if err != nil {
		return nil, err
	}
	var sinks closer
	defer sinks.close() //nolint:errcheck
	sinks.add(out.Close)

	sum := env.summary("enrich", opts.Input)
	err = drain(rows, rowErrs, func(row []string) error {
		return out.Write(m.Merge(row))
	})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: merge rows")
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	st := m.Stats()
	sum.Rows = st.TotalRows
	sum.Add("matched", st.Matched)
	sum.Add("unmatched", st.Unmatched)
	sum.Add("with_email", st.WithEmail)
	sum.Add("with_phone", st.WithPhone)
	sum.Files = []string{out.Path()}
	return sum.finish(log), nil
}

// ExportOptions configures an upload export.
type ExportOptions struct {
	Input string
	// Kind is ExportEnrichment or ExportOutreach.
	Kind   string
	OutDir string
}

// Export writes a provider upload file from a lead file. The enrichment
// upload holds one row per lead and per name and zip; the outreach upload
// holds only leads with a valid email.
func Export(ctx context.Context, env *Env, opts ExportOptions) (*Summary, error) {
	switch strings.ToLower(opts.Kind) {
	case ExportEnrichment:
		d := enrich.NewDeduper()
		sum, err := export(ctx, env, opts, FileEnrichmentUpload, d.Upload)
		if err != nil {
			return nil, err
		}
		sum.Add("skipped", d.Stats().Skipped)
		return sum, nil
	case ExportOutreach:
		return export(ctx, env, opts, FileOutreachUpload, enrich.Outreach)
	}
	return nil, eris.Errorf("export: unknown kind %q (%s, %s)", opts.Kind, ExportEnrichment, ExportOutreach)
}

func export[T any](ctx context.Context, env *Env, opts ExportOptions, name string, fn func(model.Lead) (T, bool)) (*Summary, error) {
	log := env.Log
	r, closeInput, err := env.openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	out, err := output.Create[T](filepath.Join(env.outDir(opts.OutDir), name))
	if err != nil {
		return nil, err
	}
	var sinks closer
	defer sinks.close() //nolint:errcheck
	sinks.add(out.Close)

	sum := env.summary("export", opts.Input)
	rows := 0
	_, err = fetcher.DecodeCSV(ctx, r, env.recordOptions(), func(_ int, l model.Lead) error {
		rows++
		if v, ok := fn(l); ok {
			return out.Write(v)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "export: %s", opts.Kind)
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	sum.Rows = rows
	sum.Add("written", out.Rows())
	sum.Files = []string{out.Path()}
	return sum.finish(log), nil
}
