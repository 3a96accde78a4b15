package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/note-leads/internal/estimate"
	"github.com/sells-group/note-leads/internal/group"
	"github.com/sells-group/note-leads/internal/identity"
	"github.com/sells-group/note-leads/internal/layout"
	"github.com/sells-group/note-leads/internal/model"
)

func rollLayout() *layout.Layout {
	return &layout.Layout{
		Version: "test",
		Fields: []layout.Field{
			{Name: "account_id", Start: 1, End: 5},
			{Name: "owner_name", Start: 6, End: 15},
			{Name: "total_value", Start: 16, End: 23, Numeric: true},
		},
	}
}

func rollLine(account, owner, value string) string {
	return fmt.Sprintf("%-5s%-10s%8s", account, owner, value)
}

func TestParse(t *testing.T) {
	env := testEnv(t)
	in := writeFile(t, t.TempDir(), "PROP.TXT", strings.Join([]string{
		rollLine("00001", "SMITH JOHN", "250000"),
		"",
		"00002SHORT",
		rollLine("00003", "DOE JANE", "12X456"),
		rollLine("00004", "ROE RAY", ""),
	}, "\n")+"\n")

	sum, err := Parse(context.Background(), env, ParseOptions{Input: in, Layout: rollLayout()})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Rows)
	assert.Equal(t, 2, sum.Count("clean"))
	assert.Equal(t, 2, sum.Count("errors"))
	assert.Equal(t, 1, sum.Count("blank"))

	dir := env.Cfg.Output.Dir
	assert.Equal(t, model.PropertyColumns, readHeader(t, filepath.Join(dir, FilePropClean)))
	clean := readRows(t, filepath.Join(dir, FilePropClean))
	require.Len(t, clean, 2)
	assert.Equal(t, "00001", clean[0]["account_id"])
	assert.Equal(t, "SMITH JOHN", clean[0]["owner_name"])
	assert.Equal(t, "250000", clean[0]["total_value"])
	assert.Equal(t, "00004", clean[1]["account_id"])

	errs := readRows(t, filepath.Join(dir, FilePropErrors))
	require.Len(t, errs, 2)
	assert.Equal(t, "3", errs[0]["line_number"])
	assert.Equal(t, "00002SHORT", errs[0]["line_content"])
	assert.Equal(t, "Line too short (expected at least 23 chars, got 10)", errs[0]["error_reason"])
	assert.Equal(t, "4", errs[1]["line_number"])
	assert.Equal(t, "Failed to parse numeric field 'total_value': '12X456'", errs[1]["error_reason"])
}

func TestParse_Wrap(t *testing.T) {
	env := testEnv(t)
	in := writeFile(t, t.TempDir(), "PROP.TXT", rollLine("00001", "SMITH JOHN", "250000")+"\n")

	var size int64
	_, err := Parse(context.Background(), env, ParseOptions{
		Input:  in,
		Layout: rollLayout(),
		Wrap: func(r io.Reader, n int64) io.Reader {
			size = n
			return r
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 24, size)
}

func TestNotes(t *testing.T) {
	env := testEnv(t)
	src := t.TempDir()
	in := writeFile(t, src, "recorder.csv", strings.Join([]string{
		"Recording Date,Doc Type,Lender,Loan Amount,APN",
		`2020-01-15,DEED OF TRUST,"SMITH, JOHN","150,000",A1`,
		`2020-01-15,NOTE,"WELLS FARGO BANK, N.A.",150000,A2`,
		`2020-01-15,NOTE,JOHN DOE,,A3`,
	}, "\n")+"\n")
	props := writeRecords(t, src, "prop_clean.csv", model.Property{
		AccountID:        "A1",
		OwnerName:        "SMITH JOHN",
		SitusAddress:     "1 ELM ST",
		SitusCity:        "AUSTIN",
		SitusState:       "TX",
		SitusZip:         "78701",
		MailingAddress:   "9 OAK AVE",
		MailingCity:      "DALLAS",
		MailingState:     "TX",
		MailingZip:       "75001",
		ImprovementValue: "200000",
		TotalValue:       "300000",
	})

	sum, err := Notes(context.Background(), env, NotesOptions{Input: in, Props: props})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 1, sum.Count("leads"))
	assert.Equal(t, 1, sum.Count("review"))
	assert.Equal(t, 1, sum.Count("discarded"))

	dir := env.Cfg.Output.Dir
	leads := readRows(t, filepath.Join(dir, FileNoteEmail))
	require.Len(t, leads, 1)
	l := leads[0]
	assert.Equal(t, "JOHN", l["first_name"])
	assert.Equal(t, "SMITH", l["last_name"])
	assert.Equal(t, "SMITH, JOHN", l["full_name"])
	assert.Equal(t, "PERSON", l["owner_type"])
	assert.Equal(t, "9 OAK AVE", l["mailing_address_1"])
	assert.Equal(t, "75001", l["mailing_zip"])
	assert.Equal(t, "1 ELM ST", l["property_address_1"])
	assert.Equal(t, "A1", l["account_id"])
	assert.Equal(t, "recorder.csv", l["source_file"])
	assert.Equal(t, "100", l["lead_score"])
	assert.Equal(t, "person lender + medium amount + seller finance doc + recent recording", l["why_flagged"])
	assert.Equal(t, identity.NoteLeadID("SMITH, JOHN", "75001", "150,000", "2020-01-15"), l["lead_id"])

	mail := readRows(t, filepath.Join(dir, FileNoteMail))
	require.Len(t, mail, 1)
	assert.Equal(t, "SMITH, JOHN", mail[0]["owner_mailing_name_line"])
	assert.Equal(t, "N", mail[0]["property_owner_occupied_guess"])
	assert.Equal(t, "100000", mail[0]["equity_estimate"])

	assert.Equal(t, []string{"Recording Date", "Doc Type", "Lender", "Loan Amount", "APN", ReasonColumn},
		readHeader(t, filepath.Join(dir, FileNoteReview)))
	review := readRows(t, filepath.Join(dir, FileNoteReview))
	require.Len(t, review, 1)
	assert.Equal(t, "A3", review[0]["APN"])
	assert.Equal(t, "Missing loan_amount", review[0][ReasonColumn])

	discarded := readRows(t, filepath.Join(dir, FileNoteDiscard))
	require.Len(t, discarded, 1)
	assert.Equal(t, "Lender is a bank or large financial institution", discarded[0][ReasonColumn])
}

func TestNotes_WrongProfileMode(t *testing.T) {
	env := testEnv(t)
	in := writeFile(t, t.TempDir(), "recorder.csv", "Lender,Loan Amount\n")
	_, err := Notes(context.Background(), env, NotesOptions{Input: in, Profile: "targets"})
	require.Error(t, err)
}

func TestNotes_EmptyInput(t *testing.T) {
	env := testEnv(t)
	in := writeFile(t, t.TempDir(), "recorder.csv", "")
	_, err := Notes(context.Background(), env, NotesOptions{Input: in})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func roll(owner, account, situs, mailing, value string) model.Property {
	return model.Property{
		AccountID:        account,
		OwnerName:        owner,
		SitusAddress:     situs,
		SitusCity:        "AUSTIN",
		MailingAddress:   mailing,
		MailingCity:      "AUSTIN",
		PropertyType:     "R1",
		LandValue:        "50000",
		ImprovementValue: "150000",
		TotalValue:       value,
	}
}

func TestTargets(t *testing.T) {
	env := testEnv(t)
	in := writeRecords(t, t.TempDir(), "prop_clean.csv",
		roll("DOE, JANE", "1", "1 ELM ST", "9 OAK AVE", "300000"),
		roll("WELLS FARGO BANK", "2", "2 ELM ST", "2 ELM ST", "300000"),
		roll("DOE, JANE", "3", "3 ELM ST", "", ""),
	)

	sum, err := Targets(context.Background(), env, PropertyOptions{Input: in, Buckets: true})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 1, sum.Count("targets"))
	assert.Equal(t, 1, sum.Count("review"))
	assert.Equal(t, 1, sum.Count("discarded"))
	assert.Equal(t, 1, sum.Count("bucketed"))

	dir := env.Cfg.Output.Dir
	targets := readRows(t, filepath.Join(dir, FileTargets))
	require.Len(t, targets, 1)
	tg := targets[0]
	assert.Equal(t, "DOE, JANE", tg["full_name"])
	assert.Empty(t, tg["company_name"])
	assert.Equal(t, "PERSON", tg["owner_type"])
	assert.Equal(t, "N", tg["owner_occupied_guess"])
	assert.Equal(t, "1", tg["property_count"])
	assert.Equal(t, "100", tg["lead_score"])
	assert.Equal(t, "person owner + absentee owner + value in range", tg["why_flagged"])
	assert.Equal(t, identity.PropertyLeadID("DOE, JANE", "1", ""), tg["lead_id"])

	discarded := readRows(t, filepath.Join(dir, FileTargetsDiscard))
	require.Len(t, discarded, 1)
	assert.Equal(t, "INSTITUTIONAL", discarded[0]["owner_type"])
	assert.Equal(t, "0", discarded[0]["lead_score"])
	assert.Equal(t, "Institutional/bank owner", discarded[0]["why_flagged"])

	review := readRows(t, filepath.Join(dir, FileTargetsReview))
	require.Len(t, review, 1)
	assert.Equal(t, "Missing total_value", review[0]["why_flagged"])

	assert.Len(t, readRows(t, filepath.Join(dir, BucketFile("300k-400k"))), 1)
	assert.Empty(t, readRows(t, filepath.Join(dir, BucketFile("200k-300k"))))
}

func TestFavorites_CountsOwnersFirst(t *testing.T) {
	env := testEnv(t)
	vacant := roll("ACME LLC", "3", "3 ELM ST", "3 ELM ST", "90000")
	vacant.ImprovementValue = "0"
	in := writeRecords(t, t.TempDir(), "prop_clean.csv",
		roll("DOE, JANE", "1", "1 ELM ST", "9 OAK AVE", "300000"),
		vacant,
		roll("DOE,  JANE", "2", "2 ELM ST", "9 OAK AVE", "250000"),
	)

	sum, err := Favorites(context.Background(), env, PropertyOptions{Input: in})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count("targets"))
	assert.Equal(t, 1, sum.Count("discarded"))

	dir := env.Cfg.Output.Dir
	favs := readRows(t, filepath.Join(dir, FileFavorites))
	require.Len(t, favs, 2)
	for _, f := range favs {
		assert.Equal(t, "2", f["property_count"])
		assert.Equal(t, "SQ_FT_REVIEW; BED_BATH_REVIEW", f["data_limitations"])
	}
	discarded := readRows(t, filepath.Join(dir, FileFavoritesDiscard))
	require.Len(t, discarded, 1)
	assert.Equal(t, "VACANT", discarded[0]["owner_type"])
	assert.Equal(t, "1", discarded[0]["property_count"])
}

func TestRefine(t *testing.T) {
	env := testEnv(t)
	in := writeRecords(t, t.TempDir(), "targets.csv",
		model.Lead{
			LeadID: "L1", FullName: "JOHN SMITH",
			MailingAddress: "9 OAK AVE", MailingCity: "DALLAS",
			SitusAddress: "1 ELM ST", SitusCity: "AUSTIN",
			ImprovementValue: "200000", TotalValue: "300000",
			Email: "john@example.com", Phone: "512-555-0100",
		},
		model.Lead{LeadID: "L2", CompanyName: "NOVA STAR LLC", MailingAddress: "PO BOX 9"},
	)

	sum, err := Refine(context.Background(), env, LeadOptions{Input: in})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, 1, sum.Count("high_priority"))
	assert.Equal(t, 1, sum.Count("review"))

	dir := env.Cfg.Output.Dir
	high := readRows(t, filepath.Join(dir, RefineFile(model.TierHigh)))
	require.Len(t, high, 1)
	assert.Equal(t, "100", high[0]["engagement_score"])
	assert.Equal(t, "Y", high[0]["has_email"])
	assert.Equal(t, "Y", high[0]["has_phone"])
	assert.Equal(t, "EMAIL | PHONE | STREET_ADDRESS", high[0]["contact_quality"])
	assert.Equal(t, "100000", high[0]["equity_estimate"])

	review := readRows(t, filepath.Join(dir, "note_broker_review.csv"))
	require.Len(t, review, 1)
	assert.Equal(t, "L2", review[0]["lead_id"])
	assert.Equal(t, "NONE", review[0]["contact_quality"])
	assert.Empty(t, readRows(t, filepath.Join(dir, "note_broker_medium_priority.csv")))
}

func TestRoles(t *testing.T) {
	env := testEnv(t)
	in := writeRecords(t, t.TempDir(), "refined.csv",
		model.Lead{LeadID: "1", CompanyName: "ACME CAPITAL LLC", Engagement: model.Engagement{EngagementScore: "55"}},
		model.Lead{LeadID: "2", CompanyName: "WELLS FARGO BANK", Engagement: model.Engagement{EngagementScore: "90"}},
		model.Lead{LeadID: "3", FullName: "JOHN SMITH", OwnerType: "PERSON", LeadScore: "40"},
	)

	sum, err := Roles(context.Background(), env, LeadOptions{Input: in})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Count("investor_priority"))
	assert.Equal(t, 1, sum.Count("individual_priority"))
	assert.Equal(t, 1, sum.Count("excluded"))
	assert.Equal(t, 0, sum.Count("legal_review"))

	dir := env.Cfg.Output.Dir
	inv := readRows(t, filepath.Join(dir, FileRolesInvestor))
	require.Len(t, inv, 1)
	assert.Equal(t, "INVESTOR_ENTITY", inv[0]["entity_role"])
	assert.Equal(t, "20", inv[0]["role_score_modifier"])
	assert.Equal(t, "75", inv[0]["engagement_score"])

	ex := readRows(t, filepath.Join(dir, FileRolesExcluded))
	require.Len(t, ex, 1)
	assert.Equal(t, "EXCLUDED", ex[0]["role_score_modifier"])
	assert.Equal(t, "0", ex[0]["engagement_score"])

	ind := readRows(t, filepath.Join(dir, FileRolesIndividual))
	require.Len(t, ind, 1)
	assert.Equal(t, "50", ind[0]["lead_score"])
}

func TestGroup(t *testing.T) {
	env := testEnv(t)
	in := writeRecords(t, t.TempDir(), "leads.csv",
		model.Lead{LeadID: "a", FullName: "JOHN SMITH", MailingZip: "78701", AccountID: "1", TotalValue: "100000", LeadScore: "60", WhyFlagged: "absentee owner"},
		model.Lead{LeadID: "b", FullName: "JANE DOE", MailingZip: "78702", AccountID: "2", LeadScore: "50"},
		model.Lead{LeadID: "c", FullName: "john  smith", MailingZip: "78701", AccountID: "3", TotalValue: "200000", LeadScore: "70"},
	)

	sum, err := Group(context.Background(), env, GroupOptions{Input: in, Mode: group.ModeOwner})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 2, sum.Count("groups"))
	assert.Equal(t, 1, sum.Count("merged"))

	rows := readRows(t, filepath.Join(env.Cfg.Output.Dir, "leads_grouped.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, "JOHN SMITH", rows[0]["full_name"])
	assert.Equal(t, "2", rows[0]["properties_count"])
	assert.Equal(t, "300,000", rows[0]["total_portfolio_value"])
	assert.Equal(t, "1 | 3", rows[0]["property_ids"])
	assert.Equal(t, "70", rows[0]["max_score"])
	assert.Equal(t, "JANE DOE", rows[1]["full_name"])
	assert.Equal(t, "1", rows[1]["properties_count"])
}

func TestGroupFile(t *testing.T) {
	assert.Equal(t, "x_grouped.csv", GroupFile("out/x.csv", group.ModeOwner))
	assert.Equal(t, "x_consolidated.csv", GroupFile("out/x.csv", group.ModeInvestor))
}

func TestEnrich(t *testing.T) {
	env := testEnv(t)
	src := t.TempDir()
	in := writeFile(t, src, "leads.csv", "lead_id,full_name\nL1,JOHN\nL2,JANE\n")
	lookup := writeFile(t, src, "results.csv", "lead_id,email,phone\nL1,john@example.com,\n")

	sum, err := Enrich(context.Background(), env, EnrichOptions{Input: in, Lookup: lookup})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, 1, sum.Count("matched"))
	assert.Equal(t, 1, sum.Count("unmatched"))
	assert.Equal(t, 1, sum.Count("with_email"))
	assert.Equal(t, 0, sum.Count("with_phone"))

	path := filepath.Join(env.Cfg.Output.Dir, EnrichFile(in))
	assert.Equal(t, []string{"lead_id", "full_name", "email", "phone"}, readHeader(t, path))
	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "john@example.com", rows[0]["email"])
	assert.Empty(t, rows[1]["email"])
}

func TestExport(t *testing.T) {
	env := testEnv(t)
	in := writeRecords(t, t.TempDir(), "leads.csv",
		model.Lead{LeadID: "1", FullName: "JOHN SMITH", MailingZip: "78701", Email: "john@example.com", TotalValue: "250000"},
		model.Lead{LeadID: "2", FullName: "john smith", MailingZip: "78701", Email: "not-an-email"},
		model.Lead{LeadID: "3", MailingZip: "78703"},
	)

	sum, err := Export(context.Background(), env, ExportOptions{Input: in, Kind: ExportEnrichment})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 1, sum.Count("written"))
	assert.Equal(t, 2, sum.Count("skipped"))
	assert.Len(t, readRows(t, filepath.Join(env.Cfg.Output.Dir, FileEnrichmentUpload)), 1)

	sum, err = Export(context.Background(), env, ExportOptions{Input: in, Kind: "Outreach"})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Count("written"))
	rows := readRows(t, filepath.Join(env.Cfg.Output.Dir, FileOutreachUpload))
	require.Len(t, rows, 1)
	assert.Equal(t, "JOHN", rows[0]["first_name"])
	assert.Equal(t, "SMITH", rows[0]["last_name"])
	assert.Equal(t, "200k-300k", rows[0]["value_band"])
	assert.Equal(t, "0", rows[0]["engagement_score"])

	_, err = Export(context.Background(), env, ExportOptions{Input: in, Kind: "fax"})
	require.Error(t, err)
}

func TestNoteStage_RecoversRowPanic(t *testing.T) {
	env := testEnv(t)
	header := []string{"Recording Date", "Doc Type", "Lender", "Loan Amount", "APN"}
	m, err := mapHeader(header, env.Cfg.Mapper, "")
	require.NoError(t, err)

	// No scorer: scoring the row panics.
	st := &noteStage{mapping: m, env: env}
	row := []string{"2020-01-15", "DEED OF TRUST", "SMITH, JOHN", "150,000", "A1"}
	o := st.classify(row)

	assert.Equal(t, model.TierDiscard, o.tier)
	assert.True(t, strings.HasPrefix(o.reason, "Unexpected error: "), o.reason)
	assert.Equal(t, row, o.row)
}

func TestEstimateOne_RecoversPanic(t *testing.T) {
	env := testEnv(t)
	o := estimateOne(env.Log, nil, model.Property{AccountID: "1", OwnerName: "SMITH JOHN", TotalValue: "250000"}, "roll.csv")
	assert.Equal(t, skipUnexpected, o.skip)
	assert.Empty(t, o.lead.LeadID)
}

func TestEstimate(t *testing.T) {
	env := testEnv(t)
	env.Now = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	in := writeRecords(t, t.TempDir(), "prop_clean.csv",
		model.Property{AccountID: "1", OwnerName: "SMITH JOHN", MailingZip: "78701", TotalValue: "250,000", AssessedYear: "02023"},
		model.Property{AccountID: "2", OwnerName: "DOE JANE"},
	)

	sum, err := Estimate(context.Background(), env, LeadOptions{Input: in})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, 1, sum.Count("leads"))
	assert.Equal(t, 1, sum.Count(estimate.SkipNoValue))

	dir := env.Cfg.Output.Dir
	leads := readRows(t, filepath.Join(dir, FileEstimateEmail))
	require.Len(t, leads, 1)
	assert.Equal(t, "Y", leads[0]["estimated"])
	assert.Equal(t, "100", leads[0]["lead_score"])
	mail := readRows(t, filepath.Join(dir, FileEstimateMail))
	require.Len(t, mail, 1)
	assert.Equal(t, "SMITH JOHN", mail[0]["owner_mailing_name_line"])
	assert.Equal(t, "Y", mail[0]["estimated"])
}

func TestStages_Cancelled(t *testing.T) {
	env := testEnv(t)
	in := writeRecords(t, t.TempDir(), "prop_clean.csv", roll("DOE, JANE", "1", "1 ELM ST", "9 OAK AVE", "300000"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Targets(ctx, env, PropertyOptions{Input: in})
	require.ErrorIs(t, err, context.Canceled)
}
