// Package workflow wires the Surfe enrichment client to each source and
// destination system. Every workflow reads records, runs one enrichment job,
// writes results back, and returns a Report.
package workflow

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/surfe"
)

// Workflow names used in the run ledger.
const (
	NameContactFile  = "contacts"
	NameCompanyFile  = "companies"
	NameHubSpot      = "hubspot"
	NamePipedrive    = "pipedrive"
	NameSalesforce   = "salesforce"
	NameZoomOutreach = "zoom_outreach"
	NameZoomDeals    = "zoom_deals"
	NameLookalikes   = "lookalikes"
)

// Ledger records runs and their per-record outcomes. A nil Ledger disables
// recording.
type Ledger interface {
	CreateRun(ctx context.Context, workflow, source string) (*model.Run, error)
	SetRunJob(ctx context.Context, runID, jobID string) error
	FinishRun(ctx context.Context, runID string, result model.RunResult) error
	AddOutcomes(ctx context.Context, runID string, outcomes []model.RecordOutcome) error
}

// Base holds the dependencies every enrichment workflow shares.
type Base struct {
	Surfe  surfe.Client
	Ledger Ledger
	Poll   []surfe.PollOption
}

// RecordError is a per-record failure that did not stop the batch.
type RecordError struct {
	ExternalID string
	Err        error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.ExternalID, e.Err)
}

// CreatedDeal is a deal created by the ZoomDeals or Lookalikes workflows.
type CreatedDeal struct {
	ID      int64
	Title   string
	Company string
	Value   float64
}

// Report summarises one workflow invocation.
type Report struct {
	Workflow string
	RunID    string
	JobID    string
	Summary  model.RunSummary
	Errors   []RecordError

	Deals      []CreatedDeal
	Lookalikes []surfe.Organization
}

// PipelineValue sums the value of created deals.
func (r *Report) PipelineValue() float64 {
	var total float64
	for _, d := range r.Deals {
		total += d.Value
	}
	return total
}

// TopDeals returns up to n deals, highest value first.
func (r *Report) TopDeals(n int) []CreatedDeal {
	deals := slices.Clone(r.Deals)
	slices.SortStableFunc(deals, func(a, b CreatedDeal) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if len(deals) > n {
		deals = deals[:n]
	}
	return deals
}

// recorder accumulates outcomes for a Report and mirrors them to the ledger.
// Ledger failures are logged and never fail the workflow.
type recorder struct {
	ledger   Ledger
	report   *Report
	outcomes []model.RecordOutcome
	log      *zap.Logger
}

func startRun(ctx context.Context, ledger Ledger, workflow, source string) *recorder {
	rec := &recorder{
		ledger: ledger,
		report: &Report{Workflow: workflow},
		log:    zap.L().With(zap.String("workflow", workflow)),
	}
	if ledger == nil {
		return rec
	}
	run, err := ledger.CreateRun(ctx, workflow, source)
	if err != nil {
		rec.log.Warn("workflow: failed to create run", zap.Error(err))
		rec.ledger = nil
		return rec
	}
	rec.report.RunID = run.ID
	rec.log = rec.log.With(zap.String("run_id", run.ID))
	return rec
}

func (r *recorder) job(ctx context.Context, jobID string) {
	r.report.JobID = jobID
	r.log = r.log.With(zap.String("job_id", jobID))
	if r.ledger == nil {
		return
	}
	if err := r.ledger.SetRunJob(ctx, r.report.RunID, jobID); err != nil {
		r.log.Warn("workflow: failed to record job id", zap.Error(err))
	}
}

// record tallies one record. A non-nil err is also collected on the report.
func (r *recorder) record(externalID string, outcome model.Outcome, detail string, err error) {
	r.report.Summary.Add(outcome)
	out := model.RecordOutcome{
		RunID:      r.report.RunID,
		ExternalID: externalID,
		Outcome:    outcome,
		Detail:     detail,
	}
	if err != nil {
		out.Error = err.Error()
		r.report.Errors = append(r.report.Errors, RecordError{ExternalID: externalID, Err: err})
		r.log.Warn("workflow: record failed", zap.String("external_id", externalID), zap.Error(err))
	}
	r.outcomes = append(r.outcomes, out)
}

// finish closes the run. runErr is returned unchanged so callers can write
// `return rec.finish(ctx, err)`.
func (r *recorder) finish(ctx context.Context, runErr error) (*Report, error) {
	result := model.RunResult{
		Status:  model.RunStatusComplete,
		JobID:   r.report.JobID,
		Summary: &r.report.Summary,
	}
	if runErr != nil {
		result.Status = model.RunStatusFailed
		result.Error = runErr.Error()
	}

	if r.ledger != nil {
		if len(r.outcomes) > 0 {
			if err := r.ledger.AddOutcomes(ctx, r.report.RunID, r.outcomes); err != nil {
				r.log.Warn("workflow: failed to save outcomes", zap.Error(err))
			}
		}
		if err := r.ledger.FinishRun(ctx, r.report.RunID, result); err != nil {
			r.log.Warn("workflow: failed to finish run", zap.Error(err))
		}
	}

	if runErr != nil {
		r.log.Error("workflow: run failed", zap.Error(runErr))
		return r.report, runErr
	}
	s := r.report.Summary
	r.log.Info("workflow: run complete",
		zap.Int("total", s.Total),
		zap.Int("enriched", s.Enriched),
		zap.Int("updated", s.Updated),
		zap.Int("filled", s.Filled),
		zap.Int("skipped", s.Skipped),
		zap.Int("failed", s.Failed),
	)
	return r.report, nil
}

// personInputs maps source records to enrichment inputs.
func personInputs(people []model.Person) []surfe.PersonInput {
	inputs := make([]surfe.PersonInput, len(people))
	for i, p := range people {
		inputs[i] = surfe.PersonInput{
			ExternalID:    p.ExternalID,
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			CompanyName:   p.CompanyName,
			CompanyDomain: p.Domain,
			LinkedInURL:   p.LinkedInURL,
			Email:         p.Email,
		}
	}
	return inputs
}

// enrich submits people, records the job id, and polls to completion.
func (b Base) enrich(ctx context.Context, rec *recorder, people []model.Person) ([]surfe.EnrichedPerson, error) {
	if b.Surfe == nil {
		return nil, eris.New("workflow: surfe client is required")
	}
	rec.report.Summary.Submitted = len(people)

	jobID, err := b.Surfe.StartPeopleEnrichment(ctx, surfe.PeopleRequest{
		People:  personInputs(people),
		Include: surfe.DefaultInclude,
	})
	if err != nil {
		return nil, err
	}
	rec.job(ctx, jobID)
	rec.log.Info("workflow: enrichment started", zap.Int("people", len(people)))

	job, err := surfe.PollPeopleEnrichment(ctx, b.Surfe, jobID, b.pollOptions(rec)...)
	if err != nil {
		return nil, err
	}
	rec.report.Summary.Enriched = len(job.People)
	return job.People, nil
}

func (b Base) pollOptions(rec *recorder) []surfe.PollOption {
	opts := append([]surfe.PollOption{}, b.Poll...)
	return append(opts, surfe.WithProgress(func(jobID string, status surfe.JobStatus, attempt int) {
		rec.log.Debug("workflow: enrichment pending",
			zap.String("status", string(status)),
			zap.Int("attempt", attempt),
		)
	}))
}
