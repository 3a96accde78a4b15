package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/output"
	"github.com/sells-group/note-leads/internal/route"
	"github.com/sells-group/note-leads/internal/scorer"
	"github.com/sells-group/note-leads/internal/signal"
)

// Roles stage output files.
const (
	FileRolesInvestor   = "note_broker_investor_priority.csv"
	FileRolesIndividual = "note_broker_individual_priority.csv"
	FileRolesLegal      = "note_broker_legal_review.csv"
	FileRolesExcluded   = "note_broker_excluded_entities.csv"
)

// RefineFile names the refine output of an engagement tier, such as
// note_broker_high_priority.csv.
func RefineFile(tier model.Tier) string {
	return "note_broker_" + strings.ToLower(string(tier)) + ".csv"
}

// LeadOptions configures a stage reading a lead file written by an earlier
// stage.
type LeadOptions struct {
	Input   string
	Profile string
	OutDir  string
}

type leadOutcome struct {
	tier model.Tier
	lead model.Lead
}

// Refine re-scores leads on engagement: contact channels, address quality,
// absentee strength, portfolio size, value band and name simplicity. Each
// lead lands in the first tier whose minimum it meets.
func Refine(ctx context.Context, env *Env, opts LeadOptions) (*Summary, error) {
	p, err := loadProfile(env, opts.Profile, scorer.ProfileEngagement, config.ModeEngagement)
	if err != nil {
		return nil, err
	}
	sc := scorer.New(p)

	var files []output.File[model.Tier]
	seen := make(map[model.Tier]bool)
	for _, t := range p.Tiers {
		tier := model.Tier(t.Name)
		if !seen[tier] {
			seen[tier] = true
			files = append(files, output.File[model.Tier]{Key: tier, Name: RefineFile(tier)})
		}
	}
	if !seen[model.TierReview] {
		files = append(files, output.File[model.Tier]{Key: model.TierReview, Name: RefineFile(model.TierReview)})
	}

	return runLeads(ctx, env, "refine", opts, files, func(l *model.Lead) model.Tier {
		f := sc.EngagementFacts(*l)
		res := sc.Engagement(f)
		l.EngagementScore = strconv.Itoa(res.Score)
		l.EngagementReason = res.Why()
		l.EquityEstimate = ""
		if v, ok := signal.Equity(l.TotalValue, l.ImprovementValue); ok {
			l.EquityEstimate = strconv.FormatFloat(v, 'f', 0, 64)
		}
		l.HasEmail = signal.YesNo(f.Email)
		l.HasPhone = signal.YesNo(f.Phone)
		l.ContactQuality = signal.ContactQuality(f.Email, f.Phone, f.Street)
		return route.Engagement(p.Tiers, res.Score, f.HasContact())
	})
}

// Roles classifies the entity behind every lead and applies the role's score
// modifier. Banks, government and utilities are excluded with score 0.
func Roles(ctx context.Context, env *Env, opts LeadOptions) (*Summary, error) {
	p, err := loadProfile(env, opts.Profile, scorer.ProfileRoles, config.ModeRoles)
	if err != nil {
		return nil, err
	}
	sc := scorer.New(p)
	files := []output.File[model.Tier]{
		{Key: model.TierInvestor, Name: FileRolesInvestor},
		{Key: model.TierIndividual, Name: FileRolesIndividual},
		{Key: model.TierLegal, Name: FileRolesLegal},
		{Key: model.TierExcluded, Name: FileRolesExcluded},
	}

	return runLeads(ctx, env, "roles", opts, files, func(l *model.Lead) model.Tier {
		rs := sc.Role(*l)
		l.EntityRole = string(rs.Role.Category)
		l.RoleScoreModifier = rs.Modifier
		l.RoleReason = rs.Role.Reason
		l.SetActiveScore(strconv.Itoa(rs.Score))
		return route.Role(rs)
	})
}

func loadProfile(env *Env, name, fallback, mode string) (config.ProfileConfig, error) {
	if name == "" {
		name = fallback
	}
	return env.Profile(name, mode)
}

// runLeads streams a lead file through fn and writes each lead to the file of
// the tier fn returns. fn may modify the lead it is given.
func runLeads(ctx context.Context, env *Env, stage string, opts LeadOptions,
	files []output.File[model.Tier], fn func(*model.Lead) model.Tier) (*Summary, error) {
	log := env.Log
	tiers, err := output.NewPartition[model.Tier, model.Lead](env.outDir(opts.OutDir), files)
	if err != nil {
		return nil, err
	}
	var sinks closer
	defer sinks.close() //nolint:errcheck
	sinks.add(tiers.Close)

	r, closeInput, err := env.openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	log.Info(stage+": starting", zap.String("input", opts.Input))
	sum := env.summary(stage, opts.Input)
	progress := NewProgress(log, env.Cfg.Pipeline)

	pool := NewPool(ctx, env.Cfg.Pipeline.Workers, env.Cfg.Pipeline.BatchSize,
		func(l model.Lead) (o leadOutcome) {
			defer func() {
				if r := recover(); r != nil {
					log.Debug(stage+": lead failed", zap.String("lead_id", l.LeadID), zap.Any("panic", r))
					o = leadOutcome{tier: model.TierReview, lead: l}
					o.lead.WhyFlagged = fmt.Sprintf("Unexpected error: %v", r)
				}
			}()
			tier := fn(&l)
			return leadOutcome{tier: tier, lead: l}
		},
		func(o leadOutcome) error {
			if !tiers.Has(o.tier) {
				return eris.Errorf("%s: tier %s has no output file", stage, o.tier)
			}
			return tiers.Write(o.tier, o.lead)
		})

	_, err = fetcher.DecodeCSV(ctx, r, env.recordOptions(), func(_ int, l model.Lead) error {
		progress.Tick(nil)
		return pool.Add(l)
	})
	if err == nil {
		err = pool.Flush()
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: process leads", stage)
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	sum.Rows = pool.Added()
	counts := tiers.Counts()
	for _, f := range files {
		sum.Add(strings.ToLower(string(f.Key)), counts[f.Key])
	}
	sum.Files = tiers.Paths()
	return sum.finish(log), nil
}
