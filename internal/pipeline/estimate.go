package pipeline

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/estimate"
	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/output"
	"github.com/sells-group/note-leads/internal/scorer"
)

// Estimate stage output files. They never share names with the verified
// note outputs.
const (
	FileEstimateEmail = "estimated_note_leads_email_ready.csv"
	FileEstimateMail  = "estimated_note_leads_mail_ready.csv"
)

// skipUnexpected counts properties whose estimate panicked.
const skipUnexpected = "unexpected error"

type estimateOutcome struct {
	lead estimate.Lead
	skip string
}

// Estimate derives speculative note leads from a parsed roll. Only leads
// scoring at least the profile minimum are written; skipped properties are
// counted by reason.
func Estimate(ctx context.Context, env *Env, opts LeadOptions) (*Summary, error) {
	log := env.Log
	p, err := loadProfile(env, opts.Profile, scorer.ProfileEstimate, config.ModeEstimate)
	if err != nil {
		return nil, err
	}
	est := estimate.New(scorer.New(p), env.Now)
	source := filepath.Base(opts.Input)

	r, closeInput, err := env.openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	dir := env.outDir(opts.OutDir)
	var sinks closer
	defer sinks.close() //nolint:errcheck
	email, err := output.Create[estimate.Lead](filepath.Join(dir, FileEstimateEmail))
	if err != nil {
		return nil, err
	}
	sinks.add(email.Close)
	mail, err := output.Create[estimate.MailLead](filepath.Join(dir, FileEstimateMail))
	if err != nil {
		return nil, err
	}
	sinks.add(mail.Close)

	log.Info("estimate: starting", zap.String("input", opts.Input), zap.String("profile", p.Name))
	sum := env.summary("estimate", opts.Input)
	progress := NewProgress(log, env.Cfg.Pipeline)
	skipped := make(map[string]int)

	pool := NewPool(ctx, env.Cfg.Pipeline.Workers, env.Cfg.Pipeline.BatchSize,
		func(prop model.Property) estimateOutcome {
			return estimateOne(log, est, prop, source)
		},
		func(o estimateOutcome) error {
			if o.skip != "" {
				skipped[o.skip]++
				return nil
			}
			if err := email.Write(o.lead); err != nil {
				return err
			}
			return mail.Write(estimate.Mail(o.lead))
		})

	_, err = fetcher.DecodeCSV(ctx, r, env.recordOptions(), func(_ int, prop model.Property) error {
		progress.Tick(nil)
		return pool.Add(prop)
	})
	if err == nil {
		err = pool.Flush()
	}
	if err != nil {
		return nil, eris.Wrap(err, "estimate: process records")
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	sum.Rows = pool.Added()
	sum.Add("leads", email.Rows())
	for _, reason := range []string{estimate.SkipNoOwner, estimate.SkipBank, estimate.SkipNoValue, estimate.SkipRange, estimate.SkipLowScore, skipUnexpected} {
		sum.Add(reason, skipped[reason])
	}
	sum.Files = []string{email.Path(), mail.Path()}
	return sum.finish(log), nil
}

// estimateOne estimates a single property. A panic skips the property.
func estimateOne(log *zap.Logger, est *estimate.Estimator, prop model.Property, source string) (o estimateOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("estimate: property failed", zap.String("account_id", prop.AccountID), zap.Any("panic", r))
			o = estimateOutcome{skip: skipUnexpected}
		}
	}()
	l, _, skip := est.Estimate(prop, source)
	return estimateOutcome{lead: l, skip: skip}
}
