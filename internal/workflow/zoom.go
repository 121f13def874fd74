package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/outreach"
	"github.com/sells-group/enrich-cli/pkg/pipedrive"
	"github.com/sells-group/enrich-cli/pkg/surfe"
	"github.com/sells-group/enrich-cli/pkg/zoom"
)

// Webinar is the registrant source shared by the Zoom workflows. Registrants
// come from RegistrantsFile when set, otherwise from the Zoom API.
type Webinar struct {
	Zoom            zoom.Client
	WebinarID       string
	RegistrantsFile string
	// Topic overrides the topic fetched from Zoom.
	Topic string
}

func (wb Webinar) source() string {
	if wb.RegistrantsFile != "" {
		return wb.RegistrantsFile
	}
	return "zoom:webinar:" + wb.WebinarID
}

// load returns the registrants and the webinar topic. A failed topic lookup
// is logged and leaves the topic empty.
func (wb Webinar) load(ctx context.Context, rec *recorder) ([]zoom.Registrant, string, error) {
	if wb.RegistrantsFile != "" {
		regs, err := zoom.LoadRegistrants(wb.RegistrantsFile)
		return regs, wb.Topic, err
	}
	if wb.Zoom == nil {
		return nil, "", eris.New("workflow: zoom client or registrants file is required")
	}
	if wb.WebinarID == "" {
		return nil, "", eris.New("workflow: webinar id is required")
	}

	regs, err := zoom.AllRegistrants(ctx, wb.Zoom, wb.WebinarID)
	if err != nil {
		return nil, "", err
	}
	topic := wb.Topic
	if topic == "" {
		webinar, err := wb.Zoom.GetWebinar(ctx, wb.WebinarID)
		if err != nil {
			rec.log.Warn("workflow: webinar lookup failed", zap.Error(err))
		} else {
			topic = webinar.Topic
		}
	}
	return regs, topic, nil
}

// registrantPeople keeps registrants with a full name and an organization or
// email. Dropped registrants are recorded as skipped.
func registrantPeople(rec *recorder, regs []zoom.Registrant) []model.Person {
	var people []model.Person
	for i, r := range regs {
		id := registrantID(r, i)
		if !r.Eligible() {
			rec.record(id, model.OutcomeSkipped, detailIneligible, nil)
			continue
		}
		people = append(people, model.Person{
			ExternalID:  id,
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			CompanyName: r.Org,
			Domain:      companyDomain(r.Email),
			JobTitle:    r.JobTitle,
			Email:       r.Email,
		})
	}
	return people
}

func registrantID(r zoom.Registrant, index int) string {
	switch {
	case r.ID != "":
		return r.ID
	case r.Email != "":
		return strings.ToLower(r.Email)
	default:
		return fmt.Sprintf("registrant_%d", index+1)
	}
}

func enrichedID(p surfe.EnrichedPerson) string {
	if p.ExternalID != "" {
		return p.ExternalID
	}
	return p.FullName()
}

// ZoomOutreach enrolls enriched webinar registrants in an Outreach sequence.
type ZoomOutreach struct {
	Base
	Webinar
	Outreach   outreach.Client
	SequenceID int64
	MailboxID  int64
}

// Run loads registrants, enriches them, and adds every person with a valid
// email to the sequence, creating the prospect when it does not exist.
func (w *ZoomOutreach) Run(ctx context.Context) (*Report, error) {
	rec := startRun(ctx, w.Ledger, NameZoomOutreach, w.source())

	regs, topic, err := w.load(ctx, rec)
	if err != nil {
		return rec.finish(ctx, err)
	}
	rec.report.Summary.Total = len(regs)

	people := registrantPeople(rec, regs)
	if len(people) == 0 {
		return rec.finish(ctx, nil)
	}
	enriched, err := w.enrich(ctx, rec, people)
	if err != nil {
		return rec.finish(ctx, err)
	}

	for _, p := range enriched {
		w.enroll(ctx, rec, p, topic)
	}
	return rec.finish(ctx, nil)
}

func (w *ZoomOutreach) enroll(ctx context.Context, rec *recorder, p surfe.EnrichedPerson, topic string) {
	id := enrichedID(p)
	attrs := ProspectAttributes(p, topic)
	if len(attrs.Emails) == 0 {
		rec.record(id, model.OutcomeSkipped, "No valid email", nil)
		return
	}

	outcome, detail := model.OutcomeUpdated, "Existing prospect added to sequence"
	prospect, err := w.Outreach.FindProspectByEmail(ctx, attrs.Emails[0])
	if err != nil {
		rec.record(id, model.OutcomeFailed, "", err)
		return
	}
	if prospect == nil {
		prospect, err = w.Outreach.CreateProspect(ctx, attrs)
		if err != nil {
			rec.record(id, model.OutcomeFailed, "", err)
			return
		}
		outcome, detail = model.OutcomeFilled, "Created prospect and added to sequence"
	}

	if _, err := w.Outreach.AddToSequence(ctx, prospect.ID, w.SequenceID, w.MailboxID); err != nil {
		rec.record(id, model.OutcomeFailed, "", err)
		return
	}
	rec.log.Info("workflow: prospect enrolled", zap.Int64("prospect_id", prospect.ID))
	rec.record(id, outcome, detail, nil)
}

// ProspectAttributes builds Outreach prospect attributes from an enriched
// person. Only VALID emails are kept and phones are ordered by confidence.
func ProspectAttributes(p surfe.EnrichedPerson, event string) outreach.ProspectAttributes {
	tags := append(append([]string{}, p.Departments...), p.Seniorities...)
	return outreach.ProspectAttributes{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Company:     p.CompanyName,
		Title:       p.JobTitle,
		Occupation:  p.JobTitle,
		LinkedInURL: p.LinkedInURL,
		WebsiteURL1: p.Domain(),
		Tags:        tags,
		Event:       event,
		Emails:      surfe.ValidEmails(p.Emails),
		Phones:      surfe.PhonesByConfidence(p.MobilePhones),
	}
}

const baseDealValue = 5000

var (
	topSeniorities = []string{"c-level", "director", "founder", "board member"}
	midSeniorities = []string{"vp", "head", "owner", "partner"}
	lowSeniorities = []string{"manager"}
	growthKeywords = []string{"enterprise", "scale", "growth"}
)

// DealValue scores a lead: a 5000 base scaled by the most senior tier the
// person matches, then by 1.5 when the topic is about growth.
func DealValue(p surfe.EnrichedPerson, topic string) int {
	value := float64(baseDealValue)
	switch {
	case containsFold(p.Seniorities, topSeniorities):
		value *= 3
	case containsFold(p.Seniorities, midSeniorities):
		value *= 2.5
	case containsFold(p.Seniorities, lowSeniorities):
		value *= 1.5
	}

	t := strings.ToLower(topic)
	for _, k := range growthKeywords {
		if strings.Contains(t, k) {
			value *= 1.5
			break
		}
	}
	return int(value)
}

func containsFold(values, targets []string) bool {
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		for _, t := range targets {
			if v == t {
				return true
			}
		}
	}
	return false
}

// DefaultTerritories maps every known department to the default owner.
func DefaultTerritories(defaultOwner int64) map[string]int64 {
	return map[string]int64{
		"EXECUTIVE": defaultOwner,
		"FINANCE":   defaultOwner,
		"IT":        defaultOwner,
		"SALES":     defaultOwner,
	}
}

// AssignOwner returns the owner of the first department found in
// territories, falling back to defaultOwner.
func AssignOwner(p surfe.EnrichedPerson, territories map[string]int64, defaultOwner int64) int64 {
	for _, d := range p.Departments {
		if owner, ok := territories[strings.ToUpper(strings.TrimSpace(d))]; ok && owner != 0 {
			return owner
		}
	}
	return defaultOwner
}

// findOrCreateOrg returns the organization named name, creating it when the
// search finds nothing. An empty name yields nil.
func findOrCreateOrg(ctx context.Context, c pipedrive.Client, name string) (*pipedrive.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	org, err := c.SearchOrganization(ctx, name)
	if err != nil {
		return nil, err
	}
	if org != nil {
		return org, nil
	}
	return c.CreateOrganization(ctx, name)
}

func orgID(org *pipedrive.Organization) int64 {
	if org == nil {
		return 0
	}
	return org.ID
}

// ZoomDeals turns enriched webinar registrants into scored Pipedrive deals
// with a follow-up call.
type ZoomDeals struct {
	Base
	Webinar
	Pipedrive      pipedrive.Client
	PipelineID     int64
	StageID        int64
	DefaultOwnerID int64
	Territories    map[string]int64
	Now            func() time.Time
}

// Run loads registrants, enriches them, and creates a person, deal, and
// activity per enriched person with an email.
func (w *ZoomDeals) Run(ctx context.Context) (*Report, error) {
	rec := startRun(ctx, w.Ledger, NameZoomDeals, w.source())

	regs, topic, err := w.load(ctx, rec)
	if err != nil {
		return rec.finish(ctx, err)
	}
	rec.report.Summary.Total = len(regs)
	rec.log.Info("workflow: registrants loaded", zap.Int("registrants", len(regs)), zap.String("topic", topic))

	people := registrantPeople(rec, regs)
	if len(people) == 0 {
		return rec.finish(ctx, nil)
	}
	enriched, err := w.enrich(ctx, rec, people)
	if err != nil {
		return rec.finish(ctx, err)
	}

	for _, p := range enriched {
		deal, err := w.createDeal(ctx, p, topic)
		switch {
		case err != nil:
			rec.record(enrichedID(p), model.OutcomeFailed, "", err)
		case deal == nil:
			rec.record(enrichedID(p), model.OutcomeSkipped, "No email", nil)
		default:
			rec.report.Deals = append(rec.report.Deals, *deal)
			rec.record(enrichedID(p), model.OutcomeFilled, fmt.Sprintf("Created deal %d", deal.ID), nil)
		}
	}

	rec.log.Info("workflow: deals created",
		zap.Int("deals", len(rec.report.Deals)),
		zap.Float64("pipeline_value", rec.report.PipelineValue()),
	)
	return rec.finish(ctx, nil)
}

func (w *ZoomDeals) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

// createDeal returns nil without error when the person has no email.
func (w *ZoomDeals) createDeal(ctx context.Context, p surfe.EnrichedPerson, topic string) (*CreatedDeal, error) {
	email := surfe.BestEmail(p.Emails)
	if email == "" {
		return nil, nil
	}

	territories := w.Territories
	if territories == nil {
		territories = DefaultTerritories(w.DefaultOwnerID)
	}
	owner := AssignOwner(p, territories, w.DefaultOwnerID)
	value := DealValue(p, topic)

	org, err := findOrCreateOrg(ctx, w.Pipedrive, p.CompanyName)
	if err != nil {
		return nil, err
	}

	person, err := w.Pipedrive.FindPersonByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if person == nil {
		person, err = w.Pipedrive.CreatePerson(ctx, pipedrivePersonInput(p, orgID(org), owner))
		if err != nil {
			return nil, err
		}
	}

	name := p.FullName()
	title := "Webinar Lead - " + name
	now := w.now()
	deal, err := w.Pipedrive.CreateDeal(ctx, pipedrive.DealInput{
		Title:             title,
		Value:             float64(value),
		Currency:          "USD",
		Status:            "open",
		PersonID:          person.ID,
		OrgID:             orgID(org),
		OwnerID:           owner,
		PipelineID:        w.PipelineID,
		StageID:           w.StageID,
		ExpectedCloseDate: now.AddDate(0, 0, 30).Format(time.DateOnly),
	})
	if err != nil {
		return nil, err
	}

	_, err = w.Pipedrive.CreateActivity(ctx, pipedrive.ActivityInput{
		Subject:      "Follow up on webinar attendance - " + name,
		Type:         "call",
		OwnerID:      owner,
		DealID:       deal.ID,
		OrgID:        orgID(org),
		DueDate:      now.AddDate(0, 0, 2).Format(time.DateOnly),
		DueTime:      "10:00",
		Duration:     "00:30",
		Participants: []pipedrive.Participant{{PersonID: person.ID, Primary: true}},
		Note:         "Follow up call for webinar attendee. Interested in: " + topic,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "workflow: deal %d created without follow-up", deal.ID)
	}

	company := p.CompanyName
	if company == "" {
		company = "Unknown"
	}
	return &CreatedDeal{ID: deal.ID, Title: title, Company: company, Value: float64(value)}, nil
}

// pipedrivePersonInput lists every returned email and phone, the first of
// each marked primary.
func pipedrivePersonInput(p surfe.EnrichedPerson, orgID, ownerID int64) pipedrive.PersonInput {
	in := pipedrive.PersonInput{
		Name:     p.FullName(),
		OrgID:    orgID,
		OwnerID:  ownerID,
		JobTitle: p.JobTitle,
	}
	for i, e := range p.Emails {
		if e.Email != "" {
			in.Emails = append(in.Emails, pipedrive.ContactValue{Value: e.Email, Primary: i == 0})
		}
	}
	for i, ph := range surfe.PhonesByConfidence(p.MobilePhones) {
		in.Phones = append(in.Phones, pipedrive.ContactValue{Value: ph, Primary: i == 0})
	}
	return in
}
