package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/note-leads/internal/classify"
	"github.com/sells-group/note-leads/internal/config"
	"github.com/sells-group/note-leads/internal/fetcher"
	"github.com/sells-group/note-leads/internal/identity"
	"github.com/sells-group/note-leads/internal/mapper"
	"github.com/sells-group/note-leads/internal/model"
	"github.com/sells-group/note-leads/internal/output"
	"github.com/sells-group/note-leads/internal/route"
	"github.com/sells-group/note-leads/internal/scorer"
	"github.com/sells-group/note-leads/internal/signal"
)

// Note stage output files.
const (
	FileNoteEmail   = "note_leads_email_ready.csv"
	FileNoteMail    = "note_leads_mail_ready.csv"
	FileNoteReview  = "review_queue.csv"
	FileNoteDiscard = "discarded.csv"
)

// ReasonColumn is appended to source rows written to review and discard files.
const ReasonColumn = "classification_reason"

// NotesOptions configures a recorder-export run.
type NotesOptions struct {
	Input string
	// Profile names a notes-mode profile; empty means "notes".
	Profile string
	// Props, when set, is a prop_clean.csv joined on the mapped apn column
	// to fill mailing and property addresses.
	Props string
	// Mapping, when set, is a saved field mapping used instead of matching.
	Mapping string
	OutDir  string
}

type noteOutcome struct {
	row    []string
	tier   model.Tier
	reason string
	lead   model.NoteLead
	mail   model.MailLead
}

type noteStage struct {
	sc      *scorer.Scorer
	lim     config.LimitConfig
	mapping *mapper.Mapping
	props   map[string]model.Property
	source  string
	env     *Env
}

// Notes classifies every recorder row as LEAD, REVIEW or DISCARD. Leads are
// written to the email-ready and mail-ready files; other rows keep their
// source columns plus the routing reason.
func Notes(ctx context.Context, env *Env, opts NotesOptions) (*Summary, error) {
	log := env.Log
	name := opts.Profile
	if name == "" {
		name = scorer.ProfileNotes
	}
	profile, err := env.Profile(name, config.ModeNotes)
	if err != nil {
		return nil, err
	}

	st := &noteStage{
		sc:     scorer.New(profile),
		lim:    profile.Limits,
		source: filepath.Base(opts.Input),
		env:    env,
	}
	if opts.Props != "" {
		if st.props, err = loadProps(ctx, env, opts.Props); err != nil {
			return nil, err
		}
		log.Info("notes: property lookup loaded", zap.Int("accounts", len(st.props)))
	}

	r, closeInput, err := env.openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeInput() //nolint:errcheck

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	rows, rowErrs := fetcher.StreamCSV(streamCtx, r, env.csvOptions())

	header, ok := <-rows
	if !ok {
		if err := <-rowErrs; err != nil {
			return nil, eris.Wrap(err, "notes: read header")
		}
		return nil, eris.Errorf("notes: %s is empty", opts.Input)
	}
	header = append([]string(nil), header...)

	if st.mapping, err = mapHeader(header, env.Cfg.Mapper, opts.Mapping); err != nil {
		return nil, err
	}
	logMapping(log, st.mapping)

	dir := env.outDir(opts.OutDir)
	var sinks closer
	defer sinks.close() //nolint:errcheck

	email, err := output.Create[model.NoteLead](filepath.Join(dir, FileNoteEmail))
	if err != nil {
		return nil, err
	}
	sinks.add(email.Close)
	mail, err := output.Create[model.MailLead](filepath.Join(dir, FileNoteMail))
	if err != nil {
		return nil, err
	}
	sinks.add(mail.Close)
	rawHeader := append(append([]string(nil), header...), ReasonColumn)
	review, err := output.CreateRaw(filepath.Join(dir, FileNoteReview), rawHeader)
	if err != nil {
		return nil, err
	}
	sinks.add(review.Close)
	discard, err := output.CreateRaw(filepath.Join(dir, FileNoteDiscard), rawHeader)
	if err != nil {
		return nil, err
	}
	sinks.add(discard.Close)

	log.Info("notes: starting", zap.String("input", opts.Input), zap.String("profile", profile.Name))
	sum := env.summary("notes", opts.Input)
	progress := NewProgress(log, env.Cfg.Pipeline)

	pool := NewPool(ctx, env.Cfg.Pipeline.Workers, env.Cfg.Pipeline.BatchSize, st.classify,
		func(o noteOutcome) error {
			switch o.tier {
			case model.TierLead:
				if err := email.Write(o.lead); err != nil {
					return err
				}
				return mail.Write(o.mail)
			case model.TierReview:
				return review.Write(append(o.row, o.reason))
			default:
				return discard.Write(append(o.row, o.reason))
			}
		})

	err = drain(rows, rowErrs, func(row []string) error {
		progress.Tick(func() []zap.Field {
			return []zap.Field{zap.Int("leads", email.Rows()), zap.Int("review", review.Rows()), zap.Int("discarded", discard.Rows())}
		})
		return pool.Add(row)
	})
	if err == nil {
		err = pool.Flush()
	}
	if err != nil {
		return nil, eris.Wrap(err, "notes: process rows")
	}
	if err := sinks.close(); err != nil {
		return nil, err
	}

	sum.Rows = pool.Added()
	sum.Add("leads", email.Rows())
	sum.Add("review", review.Rows())
	sum.Add("discarded", discard.Rows())
	sum.Files = []string{email.Path(), mail.Path(), review.Path(), discard.Path()}
	return sum.finish(log), nil
}

func (st *noteStage) classify(row []string) (o noteOutcome) {
	o.row = copyRow(row)
	defer func() {
		if r := recover(); r != nil {
			o.tier, o.reason = model.TierDiscard, fmt.Sprintf("Unexpected error: %v", r)
		}
	}()

	rec := st.mapping.Recording(row)
	facts := st.sc.NoteFacts(rec, st.env.Now)
	d := route.Note(st.lim, facts)
	o.tier, o.reason = d.Tier, d.Reason
	if d.Tier != model.TierLead {
		return o
	}

	var prop *model.Property
	if p, ok := st.props[strings.TrimSpace(rec.APN)]; ok && rec.APN != "" {
		prop = &p
	}
	o.lead, o.mail = st.lead(rec, facts, st.sc.Note(facts), prop)
	return o
}

func (st *noteStage) lead(rec model.Recording, f scorer.NoteFacts, res scorer.Result, prop *model.Property) (model.NoteLead, model.MailLead) {
	first, last := classify.ParseName(f.LenderName)
	_, company := classify.SplitOwner(f.LenderName, f.OwnerType)
	n := model.NoteLead{
		FirstName:          first,
		LastName:           last,
		FullName:           f.LenderName,
		CompanyName:        company,
		OwnerType:          string(f.OwnerType),
		DocType:            f.DocType,
		RecordingDate:      rec.RecordingDate,
		OriginalLoanAmount: rec.LoanAmount,
		InterestRate:       signal.FormatRate(rec.InterestRate),
		LoanTermMonths:     signal.LoanTermMonths(rec.LoanTerm),
		AccountID:          strings.TrimSpace(rec.APN),
		SourceFile:         st.source,
		LeadScore:          strconv.Itoa(res.Score),
		WhyFlagged:         res.Why(),
	}

	occupied, equity := "UNKNOWN", ""
	if prop != nil {
		n.MailingAddress1 = strings.TrimSpace(prop.MailingAddress)
		n.MailingCity = strings.TrimSpace(prop.MailingCity)
		n.MailingState = strings.TrimSpace(prop.MailingState)
		n.MailingZip = strings.TrimSpace(prop.MailingZip)
		n.PropertyAddress1 = strings.TrimSpace(prop.SitusAddress)
		n.PropertyCity = strings.TrimSpace(prop.SitusCity)
		n.PropertyState = strings.TrimSpace(prop.SitusState)
		n.PropertyZip = strings.TrimSpace(prop.SitusZip)
		if n.AccountID == "" {
			n.AccountID = strings.TrimSpace(prop.AccountID)
		}
		occupied = signal.YesNo(!signal.IsAbsentee(prop.Situs(), prop.Mailing()))
		if v, ok := signal.Equity(prop.TotalValue, prop.ImprovementValue); ok {
			equity = strconv.FormatFloat(v, 'f', 0, 64)
		}
	}
	if n.PropertyAddress1 == "" {
		n.PropertyAddress1 = strings.TrimSpace(rec.PropertyAddress)
		n.PropertyCity = strings.TrimSpace(rec.PropertyCity)
		n.PropertyState = strings.TrimSpace(rec.PropertyState)
		n.PropertyZip = strings.TrimSpace(rec.PropertyZip)
	}
	n.LeadID = identity.NoteLeadID(n.FullName, n.MailingZip, rec.LoanAmount, rec.RecordingDate)
	return n, model.NewMailLead(n, occupied, equity)
}

// copyRow leaves room for the reason column without aliasing the reader's row.
func copyRow(row []string) []string {
	out := make([]string, len(row), len(row)+1)
	copy(out, row)
	return out
}

// mapHeader maps a recorder header onto the canonical fields, from a saved
// mapping when path is set.
func mapHeader(header []string, cfg config.MapperConfig, path string) (*mapper.Mapping, error) {
	opts := mapper.Options{
		Threshold:         cfg.Threshold,
		OptionalThreshold: cfg.OptionalThreshold,
		Optional:          cfg.Optional,
		Required:          cfg.Required,
	}
	if path != "" {
		return mapper.Load(path, header, opts)
	}
	return mapper.Map(header, opts), nil
}

func logMapping(log *zap.Logger, m *mapper.Mapping) {
	for _, match := range m.Matches {
		log.Debug("notes: field mapped",
			zap.String("field", match.Field),
			zap.String("column", match.Column),
			zap.Float64("score", match.Score),
		)
	}
	log.Info("notes: header mapped", zap.Strings("found", m.Found), zap.Strings("missing", m.Missing))
	if len(m.MissingRequired) > 0 {
		log.Warn("notes: required fields not found; affected rows will go to review",
			zap.Strings("fields", m.MissingRequired))
	}
}

// loadProps reads a prop_clean.csv into a lookup keyed by account id. A
// repeated account keeps the first record.
func loadProps(ctx context.Context, env *Env, path string) (map[string]model.Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open %s", path)
	}
	defer f.Close()

	props := make(map[string]model.Property)
	_, err = fetcher.DecodeCSV(ctx, f, env.recordOptions(), func(_ int, p model.Property) error {
		if id := strings.TrimSpace(p.AccountID); id != "" {
			if _, dup := props[id]; !dup {
				props[id] = p
			}
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read %s", path)
	}
	return props, nil
}
