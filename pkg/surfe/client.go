// Package surfe is a client for the Surfe bulk enrichment API. People jobs
// are submitted, polled until terminal, and returned as enriched records.
package surfe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/pkg/apiclient"
)

// Default root for the Surfe API. The version segment is appended per client.
const defaultBaseURL = "https://api.surfe.com"

const (
	defaultEnrichmentType = "emailAndMobile"
	maxLookalikeResults   = 10
)

// Version selects the API generation.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
)

// ParseVersion accepts "v1" or "v2" (case-insensitive). Empty means V1.
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "v1":
		return V1, nil
	case "v2":
		return V2, nil
	default:
		return "", eris.Errorf("surfe: unknown api version %q", s)
	}
}

// endpoints describes how one API version submits and fetches people jobs.
type endpoints struct {
	submitPath string
	statusPath string
	idField    string
	payload    func(PeopleRequest) any
}

var variants = map[Version]endpoints{
	V1: {
		submitPath: "/people/enrichments/bulk",
		statusPath: "/people/enrichments/bulk/%s",
		idField:    "id",
		payload:    v1Payload,
	},
	V2: {
		submitPath: "/people/enrich",
		statusPath: "/people/enrich/%s",
		idField:    "enrichmentID",
		payload:    v2Payload,
	},
}

type wirePerson struct {
	ExternalID     string `json:"externalID,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	CompanyWebsite string `json:"companyWebsite,omitempty"`
	CompanyDomain  string `json:"companyDomain,omitempty"`
	LinkedInURL    string `json:"linkedinUrl,omitempty"`
	Email          string `json:"email,omitempty"`
}

type v1Request struct {
	EnrichmentType string       `json:"enrichmentType"`
	ListName       string       `json:"listName"`
	People         []wirePerson `json:"people"`
	Include        Include      `json:"include"`
}

type v2Request struct {
	Include Include      `json:"include"`
	People  []wirePerson `json:"people"`
}

func v1Payload(r PeopleRequest) any {
	people := make([]wirePerson, len(r.People))
	for i, p := range r.People {
		people[i] = wirePerson{
			ExternalID:     p.ExternalID,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			CompanyName:    p.CompanyName,
			CompanyWebsite: p.CompanyDomain,
			LinkedInURL:    p.LinkedInURL,
			Email:          p.Email,
		}
	}
	return v1Request{
		EnrichmentType: r.EnrichmentType,
		ListName:       r.ListName,
		People:         people,
		Include:        r.Include,
	}
}

func v2Payload(r PeopleRequest) any {
	people := make([]wirePerson, len(r.People))
	for i, p := range r.People {
		people[i] = wirePerson{
			ExternalID:    p.ExternalID,
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			CompanyName:   p.CompanyName,
			CompanyDomain: p.CompanyDomain,
			LinkedInURL:   p.LinkedInURL,
			Email:         p.Email,
		}
	}
	return v2Request{Include: r.Include, People: people}
}

// OrganizationRequest is a batch submitted to the organization endpoint.
type OrganizationRequest struct {
	Name          string              `json:"name"`
	Organizations []OrganizationInput `json:"organizations"`
}

// Client defines the Surfe API operations.
type Client interface {
	Version() Version
	StartPeopleEnrichment(ctx context.Context, req PeopleRequest) (string, error)
	GetPeopleEnrichment(ctx context.Context, id string) (*PeopleJob, error)
	StartOrganizationEnrichment(ctx context.Context, req OrganizationRequest) (string, error)
	GetOrganizationEnrichment(ctx context.Context, id string) (*OrganizationJob, error)
	SearchLookalikes(ctx context.Context, domains []string, limit int) ([]Organization, error)
	SearchPersonByEmail(ctx context.Context, email string) (*EnrichedPerson, error)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the API root (without the version segment).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithVersion selects the API generation. Defaults to V1.
func WithVersion(v Version) Option {
	return func(c *httpClient) {
		if _, ok := variants[v]; ok {
			c.version = v
		}
	}
}

// httpClient implements Client on top of apiclient.
type httpClient struct {
	baseURL string
	version Version
	http    *http.Client
	api     *apiclient.Client
	now     func() time.Time
}

// NewClient creates a new Surfe client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		version: V1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	apiOpts := []apiclient.Option{apiclient.WithBearerToken(apiKey)}
	if c.http != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(c.http))
	}
	c.api = apiclient.New(strings.TrimRight(c.baseURL, "/")+"/"+string(c.version), apiOpts...)
	return c
}

func (c *httpClient) Version() Version {
	return c.version
}

// StartPeopleEnrichment submits a people job and returns its id. Only 202 is
// accepted as success.
func (c *httpClient) StartPeopleEnrichment(ctx context.Context, req PeopleRequest) (string, error) {
	ep := variants[c.version]
	if req.Include == (Include{}) {
		req.Include = DefaultInclude
	}
	if req.EnrichmentType == "" {
		req.EnrichmentType = defaultEnrichmentType
	}
	if req.ListName == "" {
		req.ListName = "Enrichment " + c.now().Format(time.DateTime)
	}

	id, err := c.submit(ctx, ep.submitPath, ep.payload(req), ep.idField)
	if err != nil {
		return "", eris.Wrap(err, "surfe: start people enrichment")
	}
	return id, nil
}

// GetPeopleEnrichment fetches the current state of a people job.
func (c *httpClient) GetPeopleEnrichment(ctx context.Context, id string) (*PeopleJob, error) {
	ep := variants[c.version]
	var resp statusResponse
	if err := c.api.Get(ctx, fmt.Sprintf(ep.statusPath, url.PathEscape(id)), nil, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("surfe: get people enrichment %s", id))
	}
	return &PeopleJob{
		ID:     id,
		Status: normalizeStatus(resp.Status),
		People: resp.People,
		Error:  resp.Error,
	}, nil
}

// StartOrganizationEnrichment submits an organization job. v1 only.
func (c *httpClient) StartOrganizationEnrichment(ctx context.Context, req OrganizationRequest) (string, error) {
	if err := c.requireV1("organization enrichment"); err != nil {
		return "", err
	}
	if req.Name == "" {
		req.Name = "Company Enrichment " + c.now().Format(time.DateTime)
	}
	id, err := c.submit(ctx, "/organizations/enrichments/bulk", req, "id")
	if err != nil {
		return "", eris.Wrap(err, "surfe: start organization enrichment")
	}
	return id, nil
}

// GetOrganizationEnrichment fetches the current state of an organization job.
func (c *httpClient) GetOrganizationEnrichment(ctx context.Context, id string) (*OrganizationJob, error) {
	if err := c.requireV1("organization enrichment"); err != nil {
		return nil, err
	}
	var resp statusResponse
	if err := c.api.Get(ctx, "/organizations/enrichments/bulk/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("surfe: get organization enrichment %s", id))
	}
	return &OrganizationJob{
		ID:            id,
		Status:        normalizeStatus(resp.Status),
		Organizations: resp.Organizations,
		Error:         resp.Error,
	}, nil
}

// SearchLookalikes returns companies similar to the given domains. limit is
// clamped to 1..10.
func (c *httpClient) SearchLookalikes(ctx context.Context, domains []string, limit int) ([]Organization, error) {
	if err := c.requireV1("lookalike search"); err != nil {
		return nil, err
	}
	limit = min(max(limit, 1), maxLookalikeResults)

	body := map[string]any{
		"domains":    domains,
		"maxResults": limit,
	}
	var resp struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := c.api.Post(ctx, "/organizations/lookalikes", body, &resp); err != nil {
		return nil, eris.Wrap(err, "surfe: search lookalikes")
	}
	return resp.Organizations, nil
}

// SearchPersonByEmail looks up a single person profile. A nil person with a
// nil error means no match.
func (c *httpClient) SearchPersonByEmail(ctx context.Context, email string) (*EnrichedPerson, error) {
	if err := c.requireV1("person search"); err != nil {
		return nil, err
	}
	q := url.Values{
		"email":                 {email},
		"linkedInURLSufficient": {"false"},
	}
	var resp struct {
		Person *EnrichedPerson `json:"person"`
	}
	if err := c.api.Get(ctx, "/people/search/byEmail", q, &resp); err != nil {
		return nil, eris.Wrap(err, "surfe: search person by email")
	}
	return resp.Person, nil
}

func (c *httpClient) submit(ctx context.Context, path string, body any, idField string) (string, error) {
	var raw map[string]json.RawMessage
	data := json.RawMessage{}
	_, err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
		Expect: []int{http.StatusAccepted},
	}, &data)
	if err != nil {
		return "", err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return "", eris.Wrap(err, "decode submit response")
		}
	}

	var id string
	if v, ok := raw[idField]; ok {
		if err := json.Unmarshal(v, &id); err != nil {
			return "", eris.Wrapf(err, "surfe: decode %s %s", idField, string(v))
		}
	}
	if id == "" {
		return "", &apiclient.ProtocolError{Field: idField, Body: string(data)}
	}
	return id, nil
}

func (c *httpClient) requireV1(op string) error {
	if c.version != V1 {
		return eris.Errorf("surfe: %s is only available in API v1", op)
	}
	return nil
}

// PollPeopleEnrichment polls GetPeopleEnrichment until the job completes,
// fails, or the attempt budget is exhausted.
func PollPeopleEnrichment(ctx context.Context, client Client, id string, opts ...PollOption) (*PeopleJob, error) {
	return pollJob(ctx, id, func(ctx context.Context) (snapshot[*PeopleJob], error) {
		job, err := client.GetPeopleEnrichment(ctx, id)
		if err != nil {
			return snapshot[*PeopleJob]{}, err
		}
		return snapshot[*PeopleJob]{value: job, status: job.Status, failure: job.Error}, nil
	}, opts)
}

// PollOrganizationEnrichment polls GetOrganizationEnrichment until the job
// completes, fails, or the attempt budget is exhausted.
func PollOrganizationEnrichment(ctx context.Context, client Client, id string, opts ...PollOption) (*OrganizationJob, error) {
	return pollJob(ctx, id, func(ctx context.Context) (snapshot[*OrganizationJob], error) {
		job, err := client.GetOrganizationEnrichment(ctx, id)
		if err != nil {
			return snapshot[*OrganizationJob]{}, err
		}
		return snapshot[*OrganizationJob]{value: job, status: job.Status, failure: job.Error}, nil
	}, opts)
}
