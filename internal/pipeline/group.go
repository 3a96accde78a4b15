package pipeline

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/group"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/output"
)

// GroupOptions configures an owner consolidation run.
type GroupOptions struct {
	Input  string
	Mode   group.Mode
	OutDir string
	// Output overrides the default <stem>_grouped.csv or
	// <stem>_consolidated.csv file name.
	Output string
}

// GroupFile is the default output name for input in mode.
func GroupFile(input string, mode group.Mode) string {
	if mode == group.ModeInvestor {
		return stem(input) + "_consolidated.csv"
	}
	return stem(input) + "_grouped.csv"
}

// Group consolidates the leads of each owner into one row. Groups are
// written in the order their first member appeared.
func Group(ctx context.Context, env *Env, opts GroupOptions) (*Summary, error) {
	log := env.Log
	gopts := group.NewOptions(env.Cfg.Group, opts.Mode)
	agg := group.NewAggregator(gopts)
	defer agg.Close() //nolint:errcheck

	r, closeInput, err := env.openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	log.Info("group: starting", zap.String("input", opts.Input), zap.String("mode", string(opts.Mode)))
	sum := env.summary("group", opts.Input)
	progress := NewProgress(log, env.Cfg.Pipeline)

	_, err = fetcher.DecodeCSV(ctx, r, env.recordOptions(), func(_ int, l model.Lead) error {
		progress.Tick(nil)
		return agg.Add(ctx, l)
	})
	if err != nil {
		return nil, eris.Wrap(err, "group: read leads")
	}

	name := opts.Output
	if name == "" {
		name = GroupFile(opts.Input, opts.Mode)
	}
	out, err := output.Create[model.Lead](filepath.Join(env.outDir(opts.OutDir), name))
	if err != nil {
		return nil, err
	}
	var sinks closer
	defer sinks.close() //nolint:errcheck
	sinks.add(out.Close)

	if err := agg.Each(ctx, out.Write); err != nil {
		return nil, eris.Wrap(err, "group: write groups")
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	sum.Rows = agg.Rows()
	sum.Add("groups", out.Rows())
	sum.Add("merged", agg.Rows()-out.Rows())
	sum.Files = []string{out.Path()}
	if agg.Spilled() {
		log.Info("group: aggregated on disk", zap.Int("groups", out.Rows()))
	}
	return sum.finish(log), nil
}
