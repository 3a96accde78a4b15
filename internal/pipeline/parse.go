package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/fixedwidth"
	"github.com/sells-group/note-leads/internal/layout"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/output"
)

// Parse stage output files.
const (
	FilePropClean  = "prop_clean.csv"
	FilePropErrors = "prop_errors.csv"
)

// ParseOptions configures a fixed-width appraisal-roll parse.
type ParseOptions struct {
	// Input is a fixed-width text file or a ZIP archive holding one.
	Input  string
	Layout *layout.Layout
	OutDir string
	// Wrap, when set, wraps the raw file reader before decoding. size is the
	// file size in bytes.
	Wrap func(r io.Reader, size int64) io.Reader
}

type parsedLine struct {
	line   fetcher.Line
	prop   model.Property
	reason string
}

// Parse extracts every line of a roll into prop_clean.csv and writes each
// rejected line, with its reason, to prop_errors.csv. Blank lines are
// skipped. No line aborts the run.
func Parse(ctx context.Context, env *Env, opts ParseOptions) (*Summary, error) {
	log := env.Log
	parser, err := fixedwidth.NewParser(opts.Layout)
	if err != nil {
		return nil, err
	}

	path, cleanup, err := fetcher.ResolveInput(opts.Input, env.Cfg.Input.PropertyPattern, env.Cfg.Input.TempDir)
	if err != nil {
		return nil, eris.Wrap(err, "parse: resolve input")
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parse: open %s", path)
	}
	defer f.Close()

	var raw io.Reader = f
	if opts.Wrap != nil {
		st, err := f.Stat()
		if err != nil {
			return nil, eris.Wrapf(err, "parse: stat %s", path)
		}
		raw = opts.Wrap(f, st.Size())
	}
	r, err := fetcher.NewDecodingReader(raw, env.Cfg.Input.Encoding)
	if err != nil {
		return nil, err
	}

	dir := env.outDir(opts.OutDir)
	var sinks closer
	defer sinks.close() //nolint:errcheck

	clean, err := output.Create[model.Property](filepath.Join(dir, FilePropClean))
	if err != nil {
		return nil, err
	}
	sinks.add(clean.Close)
	errs, err := output.CreateErrors(filepath.Join(dir, FilePropErrors))
	if err != nil {
		return nil, err
	}
	sinks.add(errs.Close)

	log.Info("parse: starting",
		zap.String("input", opts.Input),
		zap.String("file", path),
		zap.Int("line_length", parser.MaxEnd()),
	)
	sum := env.summary("parse", opts.Input)
	progress := NewProgress(log, env.Cfg.Pipeline)
	blank := 0

	pool := NewPool(ctx, env.Cfg.Pipeline.Workers, env.Cfg.Pipeline.BatchSize,
		func(l fetcher.Line) parsedLine {
			prop, reason := parser.SafeParse(l.Text)
			return parsedLine{line: l, prop: prop, reason: reason}
		},
		func(p parsedLine) error {
			if p.reason != "" {
				log.Debug("parse: line rejected", zap.Int("line", p.line.Number), zap.String("reason", p.reason))
				return errs.Write(model.ErrorEntry{LineNumber: p.line.Number, LineContent: p.line.Text, ErrorReason: p.reason})
			}
			return clean.Write(p.prop)
		})

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, lineErrs := fetcher.StreamLines(streamCtx, r)
	err = drain(lines, lineErrs, func(l fetcher.Line) error {
		if fixedwidth.Blank(l.Text) {
			blank++
			return nil
		}
		progress.Tick(func() []zap.Field {
			return []zap.Field{zap.Int("clean", clean.Rows()), zap.Int("errors", errs.Rows())}
		})
		return pool.Add(l)
	})
	if err == nil {
		err = pool.Flush()
	}
	if err != nil {
		return nil, eris.Wrap(err, "parse: process lines")
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	sum.Rows = pool.Added()
	sum.Add("clean", clean.Rows())
	sum.Add("errors", errs.Rows())
	sum.Add("blank", blank)
	sum.Files = []string{clean.Path(), errs.Path()}
	return sum.finish(log), nil
}
