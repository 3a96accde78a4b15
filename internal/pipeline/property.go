package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/classify"
	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/group"
	"github.com/sells-group/note-leads/internal/identity"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/output"
	"github.com/sells-group/note-leads/internal/route"
	"github.com/sells-group/note-leads/internal/scorer"
	"github.com/sells-group/note-leads/internal/signal"
)

// Targets stage output files.
const (
	FileTargets        = "property_targets_email_ready.csv"
	FileTargetsReview  = "property_targets_review.csv"
	FileTargetsDiscard = "property_targets_discarded.csv"
)

// Favorites stage output files.
const (
	FileFavorites        = "favorites.csv"
	FileFavoritesReview  = "favorites_review.csv"
	FileFavoritesDiscard = "favorites_discarded.csv"
)

// BucketFile names the targets file of one value bucket.
func BucketFile(bucket string) string {
	return "property_targets_" + bucket + ".csv"
}

// PropertyOptions configures a targets or favorites run over prop_clean.csv.
type PropertyOptions struct {
	Input   string
	Profile string
	OutDir  string
	// Buckets also writes each TARGET to its value-bucket file. Targets only.
	Buckets bool
}

type propertyOutcome struct {
	tier   model.Tier
	lead   model.Lead
	bucket string
}

type propertyStage struct {
	name       string
	sc         *scorer.Scorer
	lim        config.LimitConfig
	route      func(config.LimitConfig, scorer.PropertyFacts) route.Decision
	score      func(scorer.PropertyFacts) scorer.Result
	owners     *group.OwnerCounter
	limitation string
	bucketSize float64
	files      []output.File[model.Tier]
}

// Targets routes appraisal-roll records to TARGET, REVIEW or DISCARD and
// scores the targets by owner type, absentee status and value.
func Targets(ctx context.Context, env *Env, opts PropertyOptions) (*Summary, error) {
	st, err := newPropertyStage(env, opts.Profile, scorer.ProfileTargets, config.ModeTargets)
	if err != nil {
		return nil, err
	}
	st.name = "targets"
	st.route, st.score = route.Target, st.sc.Target
	st.files = []output.File[model.Tier]{
		{Key: model.TierTarget, Name: FileTargets},
		{Key: model.TierReview, Name: FileTargetsReview},
		{Key: model.TierDiscard, Name: FileTargetsDiscard},
	}
	if opts.Buckets {
		st.bucketSize = st.lim.BucketSize
	}
	return st.run(ctx, env, opts)
}

// Favorites screens records against the buy box. A first pass counts the
// properties of every owner so the portfolio signal can score the second.
func Favorites(ctx context.Context, env *Env, opts PropertyOptions) (*Summary, error) {
	st, err := newPropertyStage(env, opts.Profile, scorer.ProfileFavorites, config.ModeFavorites)
	if err != nil {
		return nil, err
	}
	st.name = "favorites"
	st.route, st.score = route.Favorite, st.sc.Favorite
	st.files = []output.File[model.Tier]{
		{Key: model.TierTarget, Name: FileFavorites},
		{Key: model.TierReview, Name: FileFavoritesReview},
		{Key: model.TierDiscard, Name: FileFavoritesDiscard},
	}
	st.limitation = strings.Join(st.lim.DataLimitations, "; ")

	if st.owners, err = countOwners(ctx, env, opts.Input); err != nil {
		return nil, err
	}
	env.Log.Info("favorites: owners counted",
		zap.Int("owners", st.owners.Owners()),
		zap.Int("multi_property_owners", st.owners.MultiOwners()),
	)
	return st.run(ctx, env, opts)
}

func newPropertyStage(env *Env, name, fallback, mode string) (*propertyStage, error) {
	p, err := loadProfile(env, name, fallback, mode)
	if err != nil {
		return nil, err
	}
	return &propertyStage{sc: scorer.New(p), lim: p.Limits}, nil
}

func (st *propertyStage) run(ctx context.Context, env *Env, opts PropertyOptions) (*Summary, error) {
	log := env.Log
	dir := env.outDir(opts.OutDir)
	var sinks closer
	defer sinks.close() //nolint:errcheck

	tiers, err := output.NewPartition[model.Tier, model.Lead](dir, st.files)
	if err != nil {
		return nil, err
	}
	sinks.add(tiers.Close)

	var buckets *output.Partition[string, model.Lead]
	if st.bucketSize > 0 {
		names := route.Buckets(st.lim.MinValue, st.lim.MaxValue, st.bucketSize)
		files := make([]output.File[string], len(names))
		for i, b := range names {
			files[i] = output.File[string]{Key: b, Name: BucketFile(b)}
		}
		if buckets, err = output.NewPartition[string, model.Lead](dir, files); err != nil {
			return nil, err
		}
		sinks.add(buckets.Close)
	}

	r, closeInput, err := env.openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	log.Info(st.name+": starting", zap.String("input", opts.Input), zap.String("profile", st.sc.Profile().Name))
	sum := env.summary(st.name, opts.Input)
	progress := NewProgress(log, env.Cfg.Pipeline)

	pool := NewPool(ctx, env.Cfg.Pipeline.Workers, env.Cfg.Pipeline.BatchSize, st.classify,
		func(o propertyOutcome) error {
			if err := tiers.Write(o.tier, o.lead); err != nil {
				return err
			}
			if buckets != nil && o.bucket != "" && buckets.Has(o.bucket) {
				return buckets.Write(o.bucket, o.lead)
			}
			return nil
		})

	_, err = fetcher.DecodeCSV(ctx, r, env.recordOptions(), func(_ int, p model.Property) error {
		progress.Tick(nil)
		return pool.Add(p)
	})
	if err == nil {
		err = pool.Flush()
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: process records", st.name)
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	counts := tiers.Counts()
	sum.Rows = pool.Added()
	sum.Add("targets", counts[model.TierTarget])
	sum.Add("review", counts[model.TierReview])
	sum.Add("discarded", counts[model.TierDiscard])
	sum.Files = tiers.Paths()
	if buckets != nil {
		sum.Add("bucketed", buckets.Total())
		sum.Files = append(sum.Files, buckets.Paths()...)
	}
	return sum.finish(log), nil
}

func (st *propertyStage) classify(p model.Property) (o propertyOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o.tier = model.TierDiscard
			o.lead = st.lead(p, scorer.PropertyFacts{}, 1)
			o.lead.LeadScore, o.lead.WhyFlagged = "0", fmt.Sprintf("Unexpected error: %v", r)
		}
	}()

	count := 1
	if st.owners != nil {
		count = st.owners.Count(p.OwnerName)
	}
	f := st.sc.PropertyFacts(p, count)
	d := st.route(st.lim, f)

	o.tier = d.Tier
	o.lead = st.lead(p, f, count)
	o.lead.OwnerType = d.Label
	if d.Tier != model.TierTarget {
		o.lead.LeadScore, o.lead.WhyFlagged = "0", d.Reason
		return o
	}

	res := st.score(f)
	o.lead.LeadScore, o.lead.WhyFlagged = strconv.Itoa(res.Score), res.Why()
	if st.bucketSize > 0 {
		o.bucket = route.Bucket(f.Value, st.bucketSize)
	}
	return o
}

func (st *propertyStage) lead(p model.Property, f scorer.PropertyFacts, count int) model.Lead {
	owner := strings.TrimSpace(p.OwnerName)
	full, company := classify.SplitOwner(owner, f.OwnerType)
	mailingZip := strings.TrimSpace(p.MailingZip)
	return model.Lead{
		LeadID:             identity.PropertyLeadID(owner, p.AccountID, mailingZip),
		FullName:           full,
		CompanyName:        company,
		OwnerType:          string(f.OwnerType),
		MailingAddress:     strings.TrimSpace(p.MailingAddress),
		MailingCity:        strings.TrimSpace(p.MailingCity),
		MailingState:       strings.TrimSpace(p.MailingState),
		MailingZip:         mailingZip,
		SitusAddress:       strings.TrimSpace(p.SitusAddress),
		SitusCity:          strings.TrimSpace(p.SitusCity),
		SitusState:         strings.TrimSpace(p.SitusState),
		SitusZip:           strings.TrimSpace(p.SitusZip),
		AccountID:          strings.TrimSpace(p.AccountID),
		OwnerOccupiedGuess: signal.YesNo(!f.Absentee),
		LandValue:          strings.TrimSpace(p.LandValue),
		ImprovementValue:   strings.TrimSpace(p.ImprovementValue),
		TotalValue:         strings.TrimSpace(p.TotalValue),
		PropertyType:       strings.TrimSpace(p.PropertyType),
		PropertyCount:      strconv.Itoa(count),
		DataLimitations:    st.limitation,
	}
}

// countOwners is the favorites pre-pass over the roll.
func countOwners(ctx context.Context, env *Env, path string) (*group.OwnerCounter, error) {
	r, closeInput, err := env.openInput(path)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	owners := group.NewOwnerCounter()
	_, err = fetcher.DecodeCSV(ctx, r, env.recordOptions(), func(_ int, p model.Property) error {
		owners.Add(p.OwnerName)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "favorites: count owners")
	}
	return owners, nil
}
