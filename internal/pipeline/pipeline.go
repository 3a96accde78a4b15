// Package pipeline wires the lead stages together: read a source file, map
// or extract its records, classify, score and route them, and write every
// record to exactly one tier file. Each stage is a function taking an Env and
// its own options and returning a Summary.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/scorer"
)

// Env carries what every stage needs: configuration, the run id stamped on
// every log line, and the clock recording ages are measured against.
type Env struct {
	Cfg   *config.Config
	RunID string
	Now   time.Time
	Log   *zap.Logger
}

// NewEnv starts a run of stage.
func NewEnv(cfg *config.Config, stage string) *Env {
	id := uuid.New().String()
	return &Env{
		Cfg:   cfg,
		RunID: id,
		Now:   time.Now(),
		Log:   zap.L().With(zap.String("stage", stage), zap.String("run_id", id)),
	}
}

// Profile loads the named scoring profile and checks it is meant for mode.
func (e *Env) Profile(name string, mode string) (config.ProfileConfig, error) {
	p, err := scorer.LoadProfile(e.Cfg.Profiles.Dir, name)
	if err != nil {
		return config.ProfileConfig{}, err
	}
	if p.Mode != mode {
		return config.ProfileConfig{}, eris.Errorf("pipeline: profile %s is for %s, not %s", name, p.Mode, mode)
	}
	return p, nil
}

func (e *Env) csvOptions() fetcher.CSVOptions {
	return fetcher.CSVOptions{
		Delimiter:  fetcher.Delimiter(e.Cfg.Input.Delimiter),
		LazyQuotes: e.Cfg.Input.LazyQuotes,
	}
}

// recordOptions reads files this tool wrote, which are always comma
// separated.
func (e *Env) recordOptions() fetcher.CSVOptions {
	return fetcher.CSVOptions{Delimiter: ',', LazyQuotes: e.Cfg.Input.LazyQuotes}
}

func (e *Env) outDir(dir string) string {
	if dir != "" {
		return dir
	}
	return e.Cfg.Output.Dir
}

func (e *Env) summary(stage, input string) *Summary {
	return &Summary{RunID: e.RunID, Stage: stage, Input: input, started: time.Now()}
}

// openInput opens a source file and decodes it to UTF-8 with the configured
// charset.
func (e *Env) openInput(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: open %s", path)
	}
	r, err := fetcher.NewDecodingReader(f, e.Cfg.Input.Encoding)
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, nil, err
	}
	return r, f.Close, nil
}

// Count is one named counter of a run summary.
type Count struct {
	Name string
	N    int
}

// Summary reports what a stage read and wrote.
type Summary struct {
	RunID   string
	Stage   string
	Input   string
	Rows    int
	Counts  []Count
	Files   []string
	Elapsed time.Duration

	started time.Time
}

// Add records a counter. Counters keep the order they were added in.
func (s *Summary) Add(name string, n int) {
	for i := range s.Counts {
		if s.Counts[i].Name == name {
			s.Counts[i].N = n
			return
		}
	}
	s.Counts = append(s.Counts, Count{Name: name, N: n})
}

// Count returns a counter, 0 when absent.
func (s *Summary) Count(name string) int {
	for _, c := range s.Counts {
		if c.Name == name {
			return c.N
		}
	}
	return 0
}

func (s *Summary) finish(log *zap.Logger) *Summary {
	s.Elapsed = time.Since(s.started)
	fields := []zap.Field{
		zap.String("input", s.Input),
		zap.String("rows", humanize.Comma(int64(s.Rows))),
		zap.Duration("elapsed", s.Elapsed),
	}
	for _, c := range s.Counts {
		fields = append(fields, zap.String(c.Name, humanize.Comma(int64(c.N))))
	}
	log.Info("pipeline: stage complete", fields...)
	return s
}

// Fprint writes a human-readable report.
func (s *Summary) Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s complete (run %s)\n", s.Stage, s.RunID)
	if s.Input != "" {
		fmt.Fprintf(w, "  input:   %s\n", s.Input)
	}
	fmt.Fprintf(w, "  rows:    %s\n", humanize.Comma(int64(s.Rows)))
	width := 0
	for _, c := range s.Counts {
		width = max(width, len(c.Name))
	}
	for _, c := range s.Counts {
		fmt.Fprintf(w, "  %-*s  %s\n", width+1, c.Name+":", humanize.Comma(int64(c.N)))
	}
	for _, f := range s.Files {
		fmt.Fprintf(w, "  -> %s\n", f)
	}
	fmt.Fprintf(w, "  elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
}

// closer collects sinks so every one is closed and the first failure kept.
type closer struct {
	fns []func() error
}

func (c *closer) add(fn func() error) { c.fns = append(c.fns, fn) }

func (c *closer) close() error {
	var first error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil && first == nil {
			first = err
		}
	}
	c.fns = nil
	return first
}

// drain feeds every value from ch to add and then reports the producer's
// error. The caller cancels the producer's context when add fails.
func drain[T any](ch <-chan T, errCh <-chan error, add func(T) error) error {
	for v := range ch {
		if err := add(v); err != nil {
			return err
		}
	}
	return <-errCh
}

// stem is a file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

