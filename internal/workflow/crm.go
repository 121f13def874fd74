package workflow

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/reconcile"
	"github.com/sells-group/enrich-cli/pkg/hubspot"
	"github.com/sells-group/enrich-cli/pkg/pipedrive"
	"github.com/sells-group/enrich-cli/pkg/salesforce"
)

const detailIneligible = "Insufficient identity for lookup"

// enrichEligible skips records without enough identity, enriches the rest,
// and returns one reconciled result per eligible record.
func (b Base) enrichEligible(ctx context.Context, rec *recorder, engine *reconcile.Engine, people []model.Person) ([]reconcile.Result, error) {
	rec.report.Summary.Total = len(people)

	var eligible []model.Person
	for _, p := range people {
		if !p.Eligible() {
			rec.record(p.ExternalID, model.OutcomeSkipped, detailIneligible, nil)
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		rec.log.Info("workflow: no eligible records")
		return nil, nil
	}

	enriched, err := b.enrich(ctx, rec, eligible)
	if err != nil {
		return nil, err
	}

	results := engineOrDefault(engine).ReconcileBatch(eligible, enriched)
	out := results[:0]
	for _, r := range results {
		if !r.Extra {
			out = append(out, r)
		}
	}
	return out, nil
}

// hubspotProps maps reconciled fields to the writable HubSpot properties.
var hubspotProps = []struct {
	field model.Field
	prop  string
}{
	{model.FieldEmail, hubspot.PropEmail},
	{model.FieldPhone, hubspot.PropPhone},
	{model.FieldJobTitle, hubspot.PropJobTitle},
	{model.FieldLinkedInURL, hubspot.PropLinkedInURL},
}

// HubSpot enriches HubSpot contacts in place.
type HubSpot struct {
	Base
	Engine *reconcile.Engine
	Client hubspot.Client
	Limit  int
}

// Run lists contacts, enriches the eligible ones, and batch-updates the
// properties that changed.
func (w *HubSpot) Run(ctx context.Context) (*Report, error) {
	rec := startRun(ctx, w.Ledger, NameHubSpot, "hubspot:contacts")

	contacts, err := w.Client.ListContacts(ctx, w.Limit, hubspot.ContactProperties)
	if err != nil {
		return rec.finish(ctx, err)
	}
	people := make([]model.Person, len(contacts))
	for i, c := range contacts {
		people[i] = hubspotPerson(c)
	}

	results, err := w.enrichEligible(ctx, rec, w.Engine, people)
	if err != nil {
		return rec.finish(ctx, err)
	}

	byID := make(map[string]reconcile.Result, len(results))
	var updates []hubspot.ContactUpdate
	for _, r := range results {
		if !r.Changed() {
			rec.record(r.Original.ExternalID, model.OutcomeUnchanged, r.Status(), nil)
			continue
		}
		props := make(map[string]string)
		for _, m := range hubspotProps {
			if r.Touched(m.field) {
				props[m.prop] = r.Merged.Get(m.field)
			}
		}
		if len(props) == 0 {
			rec.record(r.Original.ExternalID, model.OutcomeUnchanged, r.Status(), nil)
			continue
		}
		byID[r.Original.ExternalID] = r
		updates = append(updates, hubspot.ContactUpdate{ID: r.Original.ExternalID, Properties: props})
	}

	for _, batch := range hubspot.UpdateContacts(ctx, w.Client, updates) {
		for _, u := range batch.Updates {
			r := byID[u.ID]
			if batch.Err != nil {
				rec.record(u.ID, model.OutcomeFailed, r.Status(), batch.Err)
				continue
			}
			rec.record(u.ID, r.Outcome(), r.Status(), nil)
		}
	}
	return rec.finish(ctx, nil)
}

func hubspotPerson(c hubspot.Contact) model.Person {
	return model.Person{
		ExternalID:  c.ID,
		FirstName:   c.Prop(hubspot.PropFirstName),
		LastName:    c.Prop(hubspot.PropLastName),
		CompanyName: c.Prop(hubspot.PropCompany),
		Domain:      c.Prop(hubspot.PropEmailDomain),
		LinkedInURL: c.Prop(hubspot.PropLinkedInURL),
		JobTitle:    c.Prop(hubspot.PropJobTitle),
		Email:       c.Prop(hubspot.PropEmail),
		Phone:       c.Prop(hubspot.PropPhone),
	}
}

// Pipedrive enriches Pipedrive persons in place.
type Pipedrive struct {
	Base
	Engine *reconcile.Engine
	Client pipedrive.Client
	Limit  int
}

// Run lists persons, resolves their organization names, enriches the
// eligible ones, and patches the emails, phones, and job titles that changed.
func (w *Pipedrive) Run(ctx context.Context) (*Report, error) {
	rec := startRun(ctx, w.Ledger, NamePipedrive, "pipedrive:persons")

	persons, err := w.Client.ListPersons(ctx, w.Limit)
	if err != nil {
		return rec.finish(ctx, err)
	}

	orgNames := make(map[int64]string)
	people := make([]model.Person, len(persons))
	for i, p := range persons {
		people[i] = pipedrivePerson(p, w.orgName(ctx, rec, orgNames, p.OrgID))
	}

	results, err := w.enrichEligible(ctx, rec, w.Engine, people)
	if err != nil {
		return rec.finish(ctx, err)
	}

	for _, r := range results {
		update := pipedriveUpdate(r)
		if update.Empty() {
			rec.record(r.Original.ExternalID, model.OutcomeUnchanged, r.Status(), nil)
			continue
		}
		id, err := strconv.ParseInt(r.Original.ExternalID, 10, 64)
		if err != nil {
			rec.record(r.Original.ExternalID, model.OutcomeFailed, r.Status(), eris.Wrap(err, "workflow: parse pipedrive person id"))
			continue
		}
		if _, err := w.Client.UpdatePerson(ctx, id, update); err != nil {
			rec.record(r.Original.ExternalID, model.OutcomeFailed, r.Status(), err)
			continue
		}
		rec.record(r.Original.ExternalID, r.Outcome(), r.Status(), nil)
	}
	return rec.finish(ctx, nil)
}

// orgName looks up an organization name once per id. Lookup failures leave
// the company name empty.
func (w *Pipedrive) orgName(ctx context.Context, rec *recorder, cache map[int64]string, orgID int64) string {
	if orgID == 0 {
		return ""
	}
	if name, ok := cache[orgID]; ok {
		return name
	}
	org, err := w.Client.GetOrganization(ctx, orgID)
	if err != nil {
		rec.log.Warn("workflow: organization lookup failed", zap.Int64("org_id", orgID), zap.Error(err))
		cache[orgID] = ""
		return ""
	}
	cache[orgID] = org.Name
	return org.Name
}

func pipedrivePerson(p pipedrive.Person, orgName string) model.Person {
	first, last := p.FirstName, p.LastName
	if first == "" && last == "" {
		first, last, _ = strings.Cut(strings.TrimSpace(p.Name), " ")
	}
	email := p.PrimaryEmail()
	return model.Person{
		ExternalID:  strconv.FormatInt(p.ID, 10),
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		CompanyName: orgName,
		Domain:      companyDomain(email),
		JobTitle:    p.JobTitle,
		Email:       email,
		Phone:       p.PrimaryPhone(),
	}
}

func pipedriveUpdate(r reconcile.Result) pipedrive.PersonUpdate {
	var u pipedrive.PersonUpdate
	if r.Touched(model.FieldEmail) {
		u.Emails = []pipedrive.ContactValue{{Value: r.Merged.Email, Primary: true, Label: "work"}}
	}
	if r.Touched(model.FieldPhone) {
		u.Phones = []pipedrive.ContactValue{{Value: r.Merged.Phone, Primary: true, Label: "mobile"}}
	}
	if r.Touched(model.FieldJobTitle) {
		u.JobTitle = r.Merged.JobTitle
	}
	return u
}

// salesforceFields maps reconciled fields to the Contact fields the sync writes.
var salesforceFields = []struct {
	field model.Field
	name  salesforce.ContactField
}{
	{model.FieldEmail, salesforce.ContactEmail},
	{model.FieldPhone, salesforce.ContactMobilePhone},
	{model.FieldJobTitle, salesforce.ContactTitle},
}

// Salesforce enriches Salesforce Contacts in place.
type Salesforce struct {
	Base
	Engine *reconcile.Engine
	Client salesforce.Client
	Limit  int
}

// Run queries Contacts, enriches the eligible ones, and writes the changed
// fields back.
func (w *Salesforce) Run(ctx context.Context) (*Report, error) {
	rec := startRun(ctx, w.Ledger, NameSalesforce, "salesforce:Contact")

	contacts, err := salesforce.ListContacts(ctx, w.Client, w.Limit)
	if err != nil {
		return rec.finish(ctx, err)
	}
	people := make([]model.Person, len(contacts))
	for i, c := range contacts {
		people[i] = model.Person{
			ExternalID:  c.ID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			CompanyName: c.AccountName(),
			Domain:      hostOf(c.AccountWebsite()),
			JobTitle:    c.Title,
			Email:       c.Email,
			Phone:       c.MobilePhone,
		}
	}

	results, err := w.enrichEligible(ctx, rec, w.Engine, people)
	if err != nil {
		return rec.finish(ctx, err)
	}

	var (
		updates []salesforce.ContactUpdate
		pending []reconcile.Result
	)
	for _, r := range results {
		u := salesforce.ContactUpdate{ID: r.Original.ExternalID}
		for _, m := range salesforceFields {
			if r.Touched(m.field) {
				u.Set(m.name, r.Merged.Get(m.field))
			}
		}
		if u.Empty() {
			rec.record(r.Original.ExternalID, model.OutcomeUnchanged, r.Status(), nil)
			continue
		}
		updates = append(updates, u)
		pending = append(pending, r)
	}

	collection, batchErr := w.write(ctx, updates)
	if rejected := salesforce.FailedResults(collection); len(rejected) > 0 {
		rec.log.Warn("workflow: salesforce rejected contacts", zap.Int("rejected", len(rejected)))
	}
	for i, r := range pending {
		id := r.Original.ExternalID
		switch {
		case i >= len(collection):
			err := batchErr
			if err == nil {
				err = eris.New("workflow: no result returned for contact")
			}
			rec.record(id, model.OutcomeFailed, r.Status(), err)
		case !collection[i].Success:
			rec.record(id, model.OutcomeFailed, r.Status(), eris.Errorf("workflow: salesforce rejected contact %s: %s", id, strings.Join(collection[i].Errors, "; ")))
		default:
			rec.record(id, r.Outcome(), r.Status(), nil)
		}
	}
	return rec.finish(ctx, nil)
}

// write sends a single change as one record update and anything larger
// through the Collections API.
func (w *Salesforce) write(ctx context.Context, updates []salesforce.ContactUpdate) ([]salesforce.CollectionResult, error) {
	if len(updates) != 1 {
		return salesforce.BulkUpdateContacts(ctx, w.Client, updates)
	}
	if err := salesforce.UpdateContact(ctx, w.Client, updates[0]); err != nil {
		return nil, err
	}
	return []salesforce.CollectionResult{{ID: updates[0].ID, Success: true}}, nil
}
