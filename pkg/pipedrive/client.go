// Package pipedrive is a client for the Pipedrive v2 REST API, covering the
// person, organization, deal, and activity endpoints used by the enrichment
// workflows.
package pipedrive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/pkg/apiclient"
)

// Default base URL for the Pipedrive v2 API.
const defaultBaseURL = "https://api.pipedrive.com/api/v2"

const defaultLimit = 100

// Client defines the Pipedrive API operations.
type Client interface {
	ListPersons(ctx context.Context, limit int) ([]Person, error)
	GetPerson(ctx context.Context, id int64) (*Person, error)
	FindPersonByEmail(ctx context.Context, email string) (*Person, error)
	CreatePerson(ctx context.Context, in PersonInput) (*Person, error)
	UpdatePerson(ctx context.Context, id int64, update PersonUpdate) (*Person, error)
	GetOrganization(ctx context.Context, id int64) (*Organization, error)
	SearchOrganization(ctx context.Context, name string) (*Organization, error)
	CreateOrganization(ctx context.Context, name string) (*Organization, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]Deal, error)
	CreateDeal(ctx context.Context, in DealInput) (*Deal, error)
	CreateActivity(ctx context.Context, in ActivityInput) (*Activity, error)
}

// envelope wraps every v2 response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type searchResult[T any] struct {
	Items []struct {
		Item T `json:"item"`
	} `json:"items"`
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
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

// httpClient implements Client on top of apiclient.
type httpClient struct {
	baseURL string
	http    *http.Client
	api     *apiclient.Client
}

// NewClient creates a new Pipedrive client. The API token is sent as the
// api_token query parameter.
func NewClient(apiToken string, opts ...Option) Client {
	c := &httpClient{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	apiOpts := []apiclient.Option{apiclient.WithQueryToken("api_token", apiToken)}
	if c.http != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(c.http))
	}
	c.api = apiclient.New(c.baseURL, apiOpts...)
	return c
}

// call performs a request and decodes the envelope's data into out.
func (c *httpClient) call(ctx context.Context, action string, req apiclient.Request, out any) error {
	var env envelope
	if _, err := c.api.Do(ctx, req, &env); err != nil {
		return eris.Wrap(err, "pipedrive: "+action)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request unsuccessful"
		}
		return eris.Errorf("pipedrive: %s: %s", action, msg)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return eris.Wrap(err, fmt.Sprintf("pipedrive: %s: decode data", action))
	}
	return nil
}

func (c *httpClient) ListPersons(ctx context.Context, limit int) ([]Person, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	var persons []Person
	err := c.call(ctx, "list persons", apiclient.Request{
		Method: http.MethodGet,
		Path:   "/persons",
		Query:  url.Values{"limit": {strconv.Itoa(limit)}},
	}, &persons)
	return persons, err
}

func (c *httpClient) GetPerson(ctx context.Context, id int64) (*Person, error) {
	var p Person
	if err := c.call(ctx, fmt.Sprintf("get person %d", id), apiclient.Request{
		Method: http.MethodGet,
		Path:   "/persons/" + strconv.FormatInt(id, 10),
	}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPersonByEmail returns the first exact email match, or nil.
func (c *httpClient) FindPersonByEmail(ctx context.Context, email string) (*Person, error) {
	if email == "" {
		return nil, nil
	}
	var res searchResult[Person]
	if err := c.call(ctx, "search persons", apiclient.Request{
		Method: http.MethodGet,
		Path:   "/persons/search",
		Query: url.Values{
			"term":        {email},
			"fields":      {"email"},
			"exact_match": {"true"},
			"limit":       {"1"},
		},
	}, &res); err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, nil
	}
	return &res.Items[0].Item, nil
}

func (c *httpClient) CreatePerson(ctx context.Context, in PersonInput) (*Person, error) {
	var p Person
	if err := c.call(ctx, "create person", apiclient.Request{
		Method: http.MethodPost,
		Path:   "/persons",
		Body:   in,
	}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *httpClient) UpdatePerson(ctx context.Context, id int64, update PersonUpdate) (*Person, error) {
	var p Person
	if err := c.call(ctx, fmt.Sprintf("update person %d", id), apiclient.Request{
		Method: http.MethodPatch,
		Path:   "/persons/" + strconv.FormatInt(id, 10),
		Body:   update,
	}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *httpClient) GetOrganization(ctx context.Context, id int64) (*Organization, error) {
	var o Organization
	if err := c.call(ctx, fmt.Sprintf("get organization %d", id), apiclient.Request{
		Method: http.MethodGet,
		Path:   "/organizations/" + strconv.FormatInt(id, 10),
	}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SearchOrganization returns the first exact name match, or nil.
func (c *httpClient) SearchOrganization(ctx context.Context, name string) (*Organization, error) {
	if name == "" {
		return nil, nil
	}
	var res searchResult[Organization]
	if err := c.call(ctx, "search organizations", apiclient.Request{
		Method: http.MethodGet,
		Path:   "/organizations/search",
		Query: url.Values{
			"term":        {name},
			"fields":      {"name"},
			"exact_match": {"true"},
			"limit":       {"1"},
		},
	}, &res); err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, nil
	}
	return &res.Items[0].Item, nil
}

func (c *httpClient) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	var o Organization
	if err := c.call(ctx, "create organization", apiclient.Request{
		Method: http.MethodPost,
		Path:   "/organizations",
		Body:   map[string]string{"name": name},
	}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *httpClient) ListDeals(ctx context.Context, filter DealFilter) ([]Deal, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.SortBy != "" {
		q.Set("sort_by", filter.SortBy)
	}
	if filter.SortDirection != "" {
		q.Set("sort_direction", filter.SortDirection)
	}
	if filter.OwnerID > 0 {
		q.Set("owner_id", strconv.FormatInt(filter.OwnerID, 10))
	}
	if filter.StageID > 0 {
		q.Set("stage_id", strconv.FormatInt(filter.StageID, 10))
	}

	var deals []Deal
	err := c.call(ctx, "list deals", apiclient.Request{
		Method: http.MethodGet,
		Path:   "/deals",
		Query:  q,
	}, &deals)
	return deals, err
}

func (c *httpClient) CreateDeal(ctx context.Context, in DealInput) (*Deal, error) {
	var d Deal
	if err := c.call(ctx, "create deal", apiclient.Request{
		Method: http.MethodPost,
		Path:   "/deals",
		Body:   in,
	}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *httpClient) CreateActivity(ctx context.Context, in ActivityInput) (*Activity, error) {
	var a Activity
	if err := c.call(ctx, "create activity", apiclient.Request{
		Method: http.MethodPost,
		Path:   "/activities",
		Body:   in,
	}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
