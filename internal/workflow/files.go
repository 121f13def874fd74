package workflow

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/contactfile"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/reconcile"
	"github.com/sells-group/enrich-cli/pkg/surfe"
)

// FileInput names the input and output tables of a file workflow.
type FileInput struct {
	Input  string
	Output string
	Format contactfile.Format
}

// ContactFile enriches people from a CSV or XLSX table and writes the merged
// table with a per-row update status.
type ContactFile struct {
	Base
	Engine *reconcile.Engine
}

// Run reads in.Input, enriches every row, and writes in.Output.
func (w *ContactFile) Run(ctx context.Context, in FileInput) (*Report, error) {
	rec := startRun(ctx, w.Ledger, NameContactFile, in.Input)

	people, err := contactfile.ReadContacts(in.Input)
	if err != nil {
		return rec.finish(ctx, err)
	}
	rec.report.Summary.Total = len(people)
	rec.log.Info("workflow: contacts loaded", zap.Int("contacts", len(people)))

	var results []reconcile.Result
	if len(people) > 0 {
		enriched, err := w.enrich(ctx, rec, people)
		if err != nil {
			return rec.finish(ctx, err)
		}
		results = engineOrDefault(w.Engine).ReconcileBatch(people, enriched)
	}

	for _, r := range results {
		rec.record(r.Original.ExternalID, r.Outcome(), r.Status(), nil)
	}

	if err := contactfile.WriteContacts(in.Output, results, in.Format); err != nil {
		return rec.finish(ctx, err)
	}
	rec.log.Info("workflow: contacts written", zap.String("output", in.Output))
	return rec.finish(ctx, nil)
}

func engineOrDefault(e *reconcile.Engine) *reconcile.Engine {
	if e == nil {
		return reconcile.New(reconcile.Overwrite)
	}
	return e
}

// CompanyFile enriches the companies behind each contact's email domain and
// writes one row per contact with the company details.
type CompanyFile struct {
	Base
}

// Run reads in.Input, enriches each distinct email domain once, and writes
// in.Output.
func (w *CompanyFile) Run(ctx context.Context, in FileInput) (*Report, error) {
	rec := startRun(ctx, w.Ledger, NameCompanyFile, in.Input)

	people, err := contactfile.ReadContacts(in.Input)
	if err != nil {
		return rec.finish(ctx, err)
	}
	rec.report.Summary.Total = len(people)

	domains := make([]string, len(people))
	for i, p := range people {
		domains[i] = emailDomain(p.Email)
	}
	domains = uniqueStrings(domains)

	var companies map[string]surfe.Organization
	if len(domains) > 0 {
		companies, err = w.enrichOrganizations(ctx, rec, domains)
		if err != nil {
			return rec.finish(ctx, err)
		}
	}

	rows := make([]contactfile.CompanyRow, len(people))
	for i, p := range people {
		row := contactfile.CompanyRow{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			JobTitle:  p.JobTitle,
		}
		org, ok := companies[emailDomain(p.Email)]
		if ok {
			row.CompanyName = org.Name
			row.Industry = org.PrimaryIndustry()
			row.Revenue = org.AnnualRevenueRange
			rec.record(p.ExternalID, model.OutcomeFilled, "Filled: Company", nil)
		} else {
			rec.record(p.ExternalID, model.OutcomeUnchanged, "No company match", nil)
		}
		rows[i] = row
	}

	if err := contactfile.WriteCompanies(in.Output, rows, in.Format); err != nil {
		return rec.finish(ctx, err)
	}
	return rec.finish(ctx, nil)
}

// enrichOrganizations runs one organization job and indexes the results by
// normalised website host, falling back to the returned domain.
func (w *CompanyFile) enrichOrganizations(ctx context.Context, rec *recorder, domains []string) (map[string]surfe.Organization, error) {
	if w.Surfe == nil {
		return nil, eris.New("workflow: surfe client is required")
	}
	orgs := make([]surfe.OrganizationInput, len(domains))
	for i, d := range domains {
		orgs[i] = surfe.OrganizationInput{Domain: d}
	}
	rec.report.Summary.Submitted = len(orgs)

	jobID, err := w.Surfe.StartOrganizationEnrichment(ctx, surfe.OrganizationRequest{
		Name:          "Enriched Companies",
		Organizations: orgs,
	})
	if err != nil {
		return nil, err
	}
	rec.job(ctx, jobID)

	job, err := surfe.PollOrganizationEnrichment(ctx, w.Surfe, jobID, w.pollOptions(rec)...)
	if err != nil {
		return nil, err
	}
	rec.report.Summary.Enriched = len(job.Organizations)

	byHost := make(map[string]surfe.Organization, len(job.Organizations))
	for _, org := range job.Organizations {
		for _, h := range []string{hostOf(org.Website), hostOf(org.Domain)} {
			if _, seen := byHost[h]; h != "" && !seen {
				byHost[h] = org
			}
		}
	}
	return byHost, nil
}
