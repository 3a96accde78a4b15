// Package group consolidates leads that belong to the same owner. Groups
// cannot be finalized until every record has been seen, so aggregation is a
// full pass: Add every lead, then walk the groups.
package group

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/classify"
	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/identity"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/scorer"
	"github.com/sells-group/note-leads/internal/signal"
	"github.com/sells-group/note-leads/internal/store"
)

// Mode selects the grouping key and the aggregate columns written.
type Mode string

const (
	// ModeOwner keys on the person name, or the company name when there is
	// none, and adds a portfolio bonus.
	ModeOwner Mode = "owner"
	// ModeInvestor keys on the entity name and keeps the best member score.
	ModeInvestor Mode = "investor"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOwner, ModeInvestor:
		return m, nil
	}
	return "", eris.Errorf("group: unknown mode %q (owner, investor)", s)
}

// Options tunes one aggregation run.
type Options struct {
	Mode           Mode
	IDCap          int
	AddressCap     int
	BonusCap       int
	SpillThreshold int
	TempDir        string
}

// NewOptions derives run options from configuration.
func NewOptions(cfg config.GroupConfig, mode Mode) Options {
	opts := Options{
		Mode:           mode,
		IDCap:          cfg.IDCap,
		AddressCap:     cfg.AddressCap,
		BonusCap:       cfg.BonusCap,
		SpillThreshold: cfg.SpillThreshold,
		TempDir:        cfg.TempDir,
	}
	if mode == ModeInvestor {
		opts.IDCap = cfg.InvestorIDCap
	}
	return opts
}

// Key returns the grouping key of l. Nameless leads are never merged; they
// key on their lead id.
func (o Options) Key(l model.Lead) string {
	name := l.Name()
	if o.Mode == ModeInvestor {
		name = l.EntityName()
	}
	name = classify.NormalizeName(name)
	if name == "" {
		return "#" + l.LeadID
	}
	return identity.GroupKey(name, l.MailingZip)
}

// Group is the running aggregate of one key. The first lead seen is the base
// row every output column starts from.
type Group struct {
	Key          string     `json:"key"`
	Base         model.Lead `json:"base"`
	Count        int        `json:"count"`
	Total        float64    `json:"total"`
	Valued       int        `json:"valued"`
	MaxScore     int        `json:"max_score"`
	IDs          []string   `json:"ids"`
	IDCount      int        `json:"id_count"`
	Addresses    []string   `json:"addresses"`
	AddressCount int        `json:"address_count"`
	AnyEmail     bool       `json:"any_email"`
	AnyPhone     bool       `json:"any_phone"`
}

func (g *Group) add(l model.Lead, o Options) {
	g.Count++
	if v, ok := signal.ParseAmount(l.TotalValue); ok {
		g.Total += v
		g.Valued++
	}
	if s := scorer.ParseScore(l.ActiveScore()); g.Count == 1 || s > g.MaxScore {
		g.MaxScore = s
	}
	if id := strings.TrimSpace(l.AccountID); id != "" {
		g.IDCount++
		if len(g.IDs) < o.IDCap {
			g.IDs = append(g.IDs, id)
		}
	}
	if addr := strings.TrimSpace(l.SitusAddress); addr != "" {
		g.AddressCount++
		if len(g.Addresses) < o.AddressCap {
			g.Addresses = append(g.Addresses, addr)
		}
	}
	g.AnyEmail = g.AnyEmail || signal.HasEmail(l.Email)
	g.AnyPhone = g.AnyPhone || strings.TrimSpace(l.Phone) != ""
}

// Lead renders the consolidated row.
func (g *Group) Lead(o Options) model.Lead {
	l := g.Base
	l.PropertiesCount = strconv.Itoa(g.Count)
	l.TotalPortfolioValue = money(g.Total)
	l.PropertyIDs = capped(g.IDs, g.IDCount)
	l.MaxScore = strconv.Itoa(g.MaxScore)

	score := g.MaxScore
	switch o.Mode {
	case ModeOwner:
		if g.Count > 1 {
			score = scorer.Clamp(score + min(o.BonusCap, g.Count-1))
			l.WhyFlagged = appendReason(l.WhyFlagged, " + ", fmt.Sprintf("%d properties", g.Count))
		}
	case ModeInvestor:
		if g.Valued > 0 {
			l.AvgPropertyValue = money(g.Total / float64(g.Valued))
		}
		l.PropertyAddresses = capped(g.Addresses, g.AddressCount)
		l.HasAnyEmail = signal.YesNo(g.AnyEmail)
		l.HasAnyPhone = signal.YesNo(g.AnyPhone)
		if g.Count > 1 {
			l.WhyFlagged = appendReason(l.WhyFlagged, " | ", fmt.Sprintf("%d properties consolidated", g.Count))
		}
	}
	l.SetActiveScore(strconv.Itoa(score))
	return l
}

// appendReason adds note to a reason trail, using sep only when the trail
// is not empty.
func appendReason(why, sep, note string) string {
	if strings.TrimSpace(why) == "" {
		return note
	}
	return why + sep + note
}

// capped joins the kept values with " | " and marks how many were dropped.
func capped(kept []string, total int) string {
	s := strings.Join(kept, " | ")
	if extra := total - len(kept); extra > 0 {
		s += fmt.Sprintf(" ... (+%d more)", extra)
	}
	return s
}

func money(v float64) string {
	if v == 0 {
		return ""
	}
	return humanize.Comma(int64(math.Round(v)))
}

// Aggregator builds groups in memory and moves them to a temporary SQLite
// table once the number of distinct keys passes the spill threshold. It has
// a single writer; it is not safe for concurrent use.
type Aggregator struct {
	opts  Options
	mem   *memTable
	spill store.Store
	rows  int
}

// NewAggregator returns an empty aggregator. Close releases any spill file.
func NewAggregator(opts Options) *Aggregator {
	return &Aggregator{opts: opts, mem: newMemTable()}
}

// Add folds one lead into its group.
func (a *Aggregator) Add(ctx context.Context, l model.Lead) error {
	key := a.opts.Key(l)
	a.rows++

	if a.spill == nil {
		g, ok := a.mem.groups[key]
		if !ok {
			g = &Group{Key: key, Base: l}
			a.mem.put(g)
		}
		g.add(l, a.opts)
		if a.opts.SpillThreshold > 0 && a.mem.len() > a.opts.SpillThreshold {
			return a.spillToDisk(ctx)
		}
		return nil
	}

	g, err := a.load(ctx, key)
	if err != nil {
		return err
	}
	if g == nil {
		g = &Group{Key: key, Base: l}
	}
	g.add(l, a.opts)
	return a.save(ctx, g)
}

// Rows is the number of leads added.
func (a *Aggregator) Rows() int { return a.rows }

// Spilled reports whether groups moved to disk.
func (a *Aggregator) Spilled() bool { return a.spill != nil }

// Each calls fn with every consolidated lead in first-seen key order.
func (a *Aggregator) Each(ctx context.Context, fn func(model.Lead) error) error {
	if a.spill == nil {
		for _, key := range a.mem.order {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "group: each")
			}
			if err := fn(a.mem.groups[key].Lead(a.opts)); err != nil {
				return err
			}
		}
		return nil
	}
	return a.spill.EachGroup(ctx, func(_ string, data []byte) error {
		var g Group
		if err := json.Unmarshal(data, &g); err != nil {
			return eris.Wrap(err, "group: decode spilled group")
		}
		return fn(g.Lead(a.opts))
	})
}

// Groups is the number of distinct keys.
func (a *Aggregator) Groups(ctx context.Context) (int, error) {
	if a.spill == nil {
		return a.mem.len(), nil
	}
	return a.spill.CountGroups(ctx)
}

// Close removes the spill table, if any.
func (a *Aggregator) Close() error {
	if a.spill == nil {
		return nil
	}
	return a.spill.Close()
}

func (a *Aggregator) spillToDisk(ctx context.Context) error {
	st, err := store.NewTemp(ctx, a.opts.TempDir)
	if err != nil {
		return eris.Wrap(err, "group: open spill table")
	}
	a.spill = st
	zap.L().Info("group: spilling to disk",
		zap.Int("groups", a.mem.len()),
		zap.Int("threshold", a.opts.SpillThreshold),
	)
	for _, key := range a.mem.order {
		if err := a.save(ctx, a.mem.groups[key]); err != nil {
			return err
		}
	}
	a.mem = newMemTable()
	return nil
}

func (a *Aggregator) load(ctx context.Context, key string) (*Group, error) {
	data, err := a.spill.GetGroup(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}
	var g Group
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, eris.Wrapf(err, "group: decode spilled group %s", key)
	}
	return &g, nil
}

func (a *Aggregator) save(ctx context.Context, g *Group) error {
	data, err := json.Marshal(g)
	if err != nil {
		return eris.Wrapf(err, "group: encode group %s", g.Key)
	}
	return a.spill.PutGroup(ctx, g.Key, data)
}

type memTable struct {
	groups map[string]*Group
	order  []string
}

func newMemTable() *memTable {
	return &memTable{groups: make(map[string]*Group)}
}

func (m *memTable) put(g *Group) {
	m.groups[g.Key] = g
	m.order = append(m.order, g.Key)
}

func (m *memTable) len() int { return len(m.order) }

// Consolidate groups leads in memory and returns one row per group.
func Consolidate(ctx context.Context, leads []model.Lead, opts Options) ([]model.Lead, error) {
	opts.SpillThreshold = 0
	a := NewAggregator(opts)
	defer a.Close() //nolint:errcheck
	for _, l := range leads {
		if err := a.Add(ctx, l); err != nil {
			return nil, err
		}
	}
	out := make([]model.Lead, 0, a.mem.len())
	err := a.Each(ctx, func(l model.Lead) error {
		out = append(out, l)
		return nil
	})
	return out, err
}
