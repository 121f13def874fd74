package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/hubspot"
	"github.com/sells-group/enrich-cli/pkg/intercom"
	"github.com/sells-group/enrich-cli/pkg/outreach"
	"github.com/sells-group/enrich-cli/pkg/pipedrive"
	"github.com/sells-group/enrich-cli/pkg/salesforce"
	"github.com/sells-group/enrich-cli/pkg/surfe"
	"github.com/sells-group/enrich-cli/pkg/zoom"
)

// --- Surfe Mock ---

type mockSurfe struct {
	mock.Mock
}

func (m *mockSurfe) Version() surfe.Version {
	return surfe.V1
}

func (m *mockSurfe) StartPeopleEnrichment(ctx context.Context, req surfe.PeopleRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockSurfe) GetPeopleEnrichment(ctx context.Context, id string) (*surfe.PeopleJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surfe.PeopleJob), args.Error(1)
}

func (m *mockSurfe) StartOrganizationEnrichment(ctx context.Context, req surfe.OrganizationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockSurfe) GetOrganizationEnrichment(ctx context.Context, id string) (*surfe.OrganizationJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surfe.OrganizationJob), args.Error(1)
}

func (m *mockSurfe) SearchLookalikes(ctx context.Context, domains []string, limit int) ([]surfe.Organization, error) {
	args := m.Called(ctx, domains, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]surfe.Organization), args.Error(1)
}

func (m *mockSurfe) SearchPersonByEmail(ctx context.Context, email string) (*surfe.EnrichedPerson, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surfe.EnrichedPerson), args.Error(1)
}

// completedJob stubs a people job that is already complete.
func (m *mockSurfe) completedJob(jobID string, people ...surfe.EnrichedPerson) {
	m.On("StartPeopleEnrichment", mock.Anything, mock.Anything).Return(jobID, nil).Once()
	m.On("GetPeopleEnrichment", mock.Anything, jobID).Return(&surfe.PeopleJob{
		ID:     jobID,
		Status: surfe.StatusCompleted,
		People: people,
	}, nil).Once()
}

// --- HubSpot Mock ---

type mockHubSpot struct {
	mock.Mock
}

func (m *mockHubSpot) ListContacts(ctx context.Context, limit int, properties []string) ([]hubspot.Contact, error) {
	args := m.Called(ctx, limit, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.Contact), args.Error(1)
}

func (m *mockHubSpot) BatchUpdateContacts(ctx context.Context, updates []hubspot.ContactUpdate) ([]hubspot.Contact, error) {
	args := m.Called(ctx, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.Contact), args.Error(1)
}

// --- Pipedrive Mock ---

type mockPipedrive struct {
	mock.Mock
}

func (m *mockPipedrive) ListPersons(ctx context.Context, limit int) ([]pipedrive.Person, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pipedrive.Person), args.Error(1)
}

func (m *mockPipedrive) GetPerson(ctx context.Context, id int64) (*pipedrive.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Person), args.Error(1)
}

func (m *mockPipedrive) FindPersonByEmail(ctx context.Context, email string) (*pipedrive.Person, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Person), args.Error(1)
}

func (m *mockPipedrive) CreatePerson(ctx context.Context, in pipedrive.PersonInput) (*pipedrive.Person, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Person), args.Error(1)
}

func (m *mockPipedrive) UpdatePerson(ctx context.Context, id int64, update pipedrive.PersonUpdate) (*pipedrive.Person, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Person), args.Error(1)
}

func (m *mockPipedrive) GetOrganization(ctx context.Context, id int64) (*pipedrive.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Organization), args.Error(1)
}

func (m *mockPipedrive) SearchOrganization(ctx context.Context, name string) (*pipedrive.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Organization), args.Error(1)
}

func (m *mockPipedrive) CreateOrganization(ctx context.Context, name string) (*pipedrive.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Organization), args.Error(1)
}

func (m *mockPipedrive) ListDeals(ctx context.Context, filter pipedrive.DealFilter) ([]pipedrive.Deal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pipedrive.Deal), args.Error(1)
}

func (m *mockPipedrive) CreateDeal(ctx context.Context, in pipedrive.DealInput) (*pipedrive.Deal, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Deal), args.Error(1)
}

func (m *mockPipedrive) CreateActivity(ctx context.Context, in pipedrive.ActivityInput) (*pipedrive.Activity, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipedrive.Activity), args.Error(1)
}

// --- Salesforce Mock ---

type mockSalesforce struct {
	mock.Mock
}

func (m *mockSalesforce) Query(ctx context.Context, soql string, out any) error {
	args := m.Called(ctx, soql, out)
	return args.Error(0)
}

func (m *mockSalesforce) UpdateRecord(ctx context.Context, sObject string, rec salesforce.Record) error {
	args := m.Called(ctx, sObject, rec)
	return args.Error(0)
}

func (m *mockSalesforce) UpdateRecords(ctx context.Context, sObject string, recs []salesforce.Record) ([]salesforce.CollectionResult, error) {
	args := m.Called(ctx, sObject, recs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]salesforce.CollectionResult), args.Error(1)
}

// --- Outreach Mock ---

type mockOutreach struct {
	mock.Mock
}

func (m *mockOutreach) FindProspectByEmail(ctx context.Context, email string) (*outreach.Prospect, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outreach.Prospect), args.Error(1)
}

func (m *mockOutreach) CreateProspect(ctx context.Context, attrs outreach.ProspectAttributes) (*outreach.Prospect, error) {
	args := m.Called(ctx, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outreach.Prospect), args.Error(1)
}

func (m *mockOutreach) AddToSequence(ctx context.Context, prospectID, sequenceID, mailboxID int64) (*outreach.SequenceState, error) {
	args := m.Called(ctx, prospectID, sequenceID, mailboxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outreach.SequenceState), args.Error(1)
}

// --- Zoom Mock ---

type mockZoom struct {
	mock.Mock
}

func (m *mockZoom) GetWebinar(ctx context.Context, webinarID string) (*zoom.Webinar, error) {
	args := m.Called(ctx, webinarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*zoom.Webinar), args.Error(1)
}

func (m *mockZoom) ListRegistrants(ctx context.Context, webinarID string, pageSize int, pageToken string) (*zoom.RegistrantPage, error) {
	args := m.Called(ctx, webinarID, pageSize, pageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*zoom.RegistrantPage), args.Error(1)
}

// --- Intercom Mock ---

type mockIntercom struct {
	mock.Mock
}

func (m *mockIntercom) GetContact(ctx context.Context, contactID string) (*intercom.Contact, error) {
	args := m.Called(ctx, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intercom.Contact), args.Error(1)
}

func (m *mockIntercom) TagConversation(ctx context.Context, conversationID, adminID, tagID string) (*intercom.Tag, error) {
	args := m.Called(ctx, conversationID, adminID, tagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intercom.Tag), args.Error(1)
}

func (m *mockIntercom) SetPriority(ctx context.Context, conversationID, priority string) (*intercom.Conversation, error) {
	args := m.Called(ctx, conversationID, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intercom.Conversation), args.Error(1)
}

// --- Ledger Fake ---

type fakeLedger struct {
	runs     []string
	jobID    string
	result   *model.RunResult
	outcomes []model.RecordOutcome
	failAll  error
}

func (f *fakeLedger) CreateRun(_ context.Context, workflow, source string) (*model.Run, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.runs = append(f.runs, workflow+"|"+source)
	return &model.Run{ID: "run-1", Workflow: workflow, Source: source, Status: model.RunStatusRunning}, nil
}

func (f *fakeLedger) SetRunJob(_ context.Context, _ string, jobID string) error {
	f.jobID = jobID
	return nil
}

func (f *fakeLedger) FinishRun(_ context.Context, _ string, result model.RunResult) error {
	f.result = &result
	return nil
}

func (f *fakeLedger) AddOutcomes(_ context.Context, _ string, outcomes []model.RecordOutcome) error {
	f.outcomes = append(f.outcomes, outcomes...)
	return nil
}

func (f *fakeLedger) outcome(externalID string) model.Outcome {
	for _, o := range f.outcomes {
		if o.ExternalID == externalID {
			return o.Outcome
		}
	}
	return ""
}
