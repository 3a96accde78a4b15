package pipeline

import (
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/note-leads/internal/config"
)

// Progress logs a running row count every N rows and at least once per
// interval while rows keep arriving.
type Progress struct {
	log *zap.Logger
	s   rate.Sometimes
	n   int
}

// NewProgress returns a throttled progress logger.
func NewProgress(log *zap.Logger, cfg config.PipelineConfig) *Progress {
	return &Progress{
		log: log,
		s: rate.Sometimes{
			Every:    cfg.ProgressEvery,
			Interval: time.Duration(cfg.ProgressIntervalMS) * time.Millisecond,
		},
	}
}

// Tick counts one row. fields, when non-nil, adds stage counters to the line
// and is only evaluated when a line is logged.
func (p *Progress) Tick(fields func() []zap.Field) {
	p.n++
	p.s.Do(func() {
		fs := []zap.Field{zap.String("rows", humanize.Comma(int64(p.n)))}
		if fields != nil {
			fs = append(fs, fields()...)
		}
		p.log.Info("pipeline: progress", fs...)
	})
}

// Rows is the number of ticks.
func (p *Progress) Rows() int { return p.n }
