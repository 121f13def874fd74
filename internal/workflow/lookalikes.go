package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/pipedrive"
	"github.com/sells-group/enrich-cli/pkg/surfe"
)

const (
	defaultLookbackDays = 30
	lookalikeDealValue  = 5000
	recentDealLimit     = 100
)

// Lookalikes finds companies similar to recently won Pipedrive customers and
// optionally creates a prospect deal for each.
type Lookalikes struct {
	Base
	Pipedrive  pipedrive.Client
	Days       int
	Max        int
	Create     bool
	PipelineID int64
	StageID    int64
	OwnerID    int64
	Now        func() time.Time
}

// Run collects domains from won deals, searches for lookalikes, and creates
// organizations and deals when Create is set.
func (w *Lookalikes) Run(ctx context.Context) (*Report, error) {
	days := w.Days
	if days <= 0 {
		days = defaultLookbackDays
	}
	rec := startRun(ctx, w.Ledger, NameLookalikes, fmt.Sprintf("pipedrive:won_deals:%dd", days))

	deals, err := w.recentWonDeals(ctx, days)
	if err != nil {
		return rec.finish(ctx, err)
	}
	rec.report.Summary.Total = len(deals)
	if len(deals) == 0 {
		rec.log.Info("workflow: no won deals in range", zap.Int("days", days))
		return rec.finish(ctx, nil)
	}

	domains := w.dealDomains(ctx, rec, deals)
	rec.report.Summary.Submitted = len(domains)
	if len(domains) == 0 {
		rec.log.Info("workflow: no company domains found on won deals")
		return rec.finish(ctx, nil)
	}

	companies, err := w.Surfe.SearchLookalikes(ctx, domains, w.Max)
	if err != nil {
		return rec.finish(ctx, err)
	}
	rec.report.Lookalikes = companies
	rec.report.Summary.Enriched = len(companies)
	rec.log.Info("workflow: lookalikes found", zap.Int("domains", len(domains)), zap.Int("companies", len(companies)))

	if !w.Create {
		return rec.finish(ctx, nil)
	}
	for _, c := range companies {
		deal, err := w.createProspect(ctx, c)
		if err != nil {
			rec.record(lookalikeID(c), model.OutcomeFailed, "", err)
			continue
		}
		rec.report.Deals = append(rec.report.Deals, *deal)
		rec.record(lookalikeID(c), model.OutcomeFilled, fmt.Sprintf("Created deal %d", deal.ID), nil)
	}
	return rec.finish(ctx, nil)
}

func (w *Lookalikes) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

// recentWonDeals returns won deals updated within the last days days.
func (w *Lookalikes) recentWonDeals(ctx context.Context, days int) ([]pipedrive.Deal, error) {
	deals, err := w.Pipedrive.ListDeals(ctx, pipedrive.DealFilter{
		Status:        "won",
		SortBy:        "update_time",
		SortDirection: "desc",
		Limit:         recentDealLimit,
	})
	if err != nil {
		return nil, err
	}

	cutoff := w.now().AddDate(0, 0, -days)
	var recent []pipedrive.Deal
	for _, d := range deals {
		if t, ok := d.UpdatedAt(); ok && !t.Before(cutoff) {
			recent = append(recent, d)
		}
	}
	return recent, nil
}

// dealDomains collects organization hosts and the company domains of deal
// contacts, in first-seen order. Deals whose organization cannot be loaded
// are skipped.
func (w *Lookalikes) dealDomains(ctx context.Context, rec *recorder, deals []pipedrive.Deal) []string {
	var domains []string
	for _, d := range deals {
		if d.OrgID != 0 {
			org, err := w.Pipedrive.GetOrganization(ctx, d.OrgID)
			if err != nil {
				rec.log.Warn("workflow: skipping deal without organization", zap.Int64("deal_id", d.ID), zap.Error(err))
				continue
			}
			domains = append(domains, org.Host())
		}
		if d.PersonID != 0 {
			person, err := w.Pipedrive.GetPerson(ctx, d.PersonID)
			if err != nil {
				rec.log.Warn("workflow: deal person lookup failed", zap.Int64("deal_id", d.ID), zap.Error(err))
				continue
			}
			for _, e := range person.Emails {
				domains = append(domains, companyDomain(e.Value))
			}
		}
	}
	return uniqueStrings(domains)
}

func (w *Lookalikes) createProspect(ctx context.Context, c surfe.Organization) (*CreatedDeal, error) {
	name := c.Name
	if name == "" {
		name = "Unknown Company"
	}
	org, err := findOrCreateOrg(ctx, w.Pipedrive, name)
	if err != nil {
		return nil, err
	}

	title := "Lookalike Prospect - " + name
	deal, err := w.Pipedrive.CreateDeal(ctx, pipedrive.DealInput{
		Title:      title,
		Value:      lookalikeDealValue,
		Currency:   "USD",
		OrgID:      orgID(org),
		OwnerID:    w.OwnerID,
		PipelineID: w.PipelineID,
		StageID:    w.StageID,
	})
	if err != nil {
		return nil, err
	}
	return &CreatedDeal{ID: deal.ID, Title: title, Company: name, Value: lookalikeDealValue}, nil
}

func lookalikeID(c surfe.Organization) string {
	switch {
	case c.Domain != "":
		return hostOf(c.Domain)
	case c.Website != "":
		return hostOf(c.Website)
	case c.Name != "":
		return c.Name
	default:
		return c.ExternalID
	}
}
