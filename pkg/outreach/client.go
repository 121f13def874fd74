// Package outreach is a client for the Outreach v2 JSON:API endpoints used to
// create prospects and enroll them in sequences.
package outreach

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/pkg/apiclient"
)

const (
	defaultBaseURL = "https://api.outreach.io/api/v2"
	mediaType      = "application/vnd.api+json"
)

// ProspectAttributes are the writable attributes of a prospect.
type ProspectAttributes struct {
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Company     string   `json:"company,omitempty"`
	Title       string   `json:"title,omitempty"`
	Occupation  string   `json:"occupation,omitempty"`
	LinkedInURL string   `json:"linkedinUrl,omitempty"`
	WebsiteURL1 string   `json:"websiteUrl1,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Event       string   `json:"event,omitempty"`
	Emails      []string `json:"emails,omitempty"`
	Phones      []string `json:"mobilePhones,omitempty"`
}

// Prospect is an Outreach prospect resource.
type Prospect struct {
	ID         int64              `json:"id"`
	Type       string             `json:"type"`
	Attributes ProspectAttributes `json:"attributes"`
}

// SequenceState links a prospect to a sequence through a mailbox.
type SequenceState struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Client defines the Outreach API operations.
type Client interface {
	FindProspectByEmail(ctx context.Context, email string) (*Prospect, error)
	CreateProspect(ctx context.Context, attrs ProspectAttributes) (*Prospect, error)
	AddToSequence(ctx context.Context, prospectID, sequenceID, mailboxID int64) (*SequenceState, error)
}

type resourceRef struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

type relationship struct {
	Data resourceRef `json:"data"`
}

type document[T any] struct {
	Data T `json:"data"`
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

type httpClient struct {
	baseURL string
	http    *http.Client
	api     *apiclient.Client
}

// NewClient creates a new Outreach client with an OAuth access token.
func NewClient(accessToken string, opts ...Option) Client {
	c := &httpClient{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	apiOpts := []apiclient.Option{
		apiclient.WithBearerToken(accessToken),
		apiclient.WithContentType(mediaType),
	}
	if c.http != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(c.http))
	}
	c.api = apiclient.New(c.baseURL, apiOpts...)
	return c
}

// FindProspectByEmail returns the first prospect with the email, or nil.
func (c *httpClient) FindProspectByEmail(ctx context.Context, email string) (*Prospect, error) {
	var doc document[[]Prospect]
	q := url.Values{"filter[emails]": {email}}
	if err := c.api.Get(ctx, "/prospects", q, &doc); err != nil {
		return nil, eris.Wrap(err, "outreach: find prospect")
	}
	if len(doc.Data) == 0 {
		return nil, nil
	}
	return &doc.Data[0], nil
}

func (c *httpClient) CreateProspect(ctx context.Context, attrs ProspectAttributes) (*Prospect, error) {
	body := map[string]any{
		"data": map[string]any{
			"type":       "prospect",
			"attributes": attrs,
		},
	}
	var doc document[Prospect]
	if err := c.api.Post(ctx, "/prospects", body, &doc); err != nil {
		return nil, eris.Wrap(err, "outreach: create prospect")
	}
	if doc.Data.ID == 0 {
		return nil, eris.Wrap(&apiclient.ProtocolError{Field: "data.id"}, "outreach: create prospect")
	}
	return &doc.Data, nil
}

func (c *httpClient) AddToSequence(ctx context.Context, prospectID, sequenceID, mailboxID int64) (*SequenceState, error) {
	body := map[string]any{
		"data": map[string]any{
			"type": "sequenceState",
			"relationships": map[string]relationship{
				"prospect": {Data: resourceRef{Type: "prospect", ID: prospectID}},
				"sequence": {Data: resourceRef{Type: "sequence", ID: sequenceID}},
				"mailbox":  {Data: resourceRef{Type: "mailbox", ID: mailboxID}},
			},
		},
	}
	var doc document[SequenceState]
	if err := c.api.Post(ctx, "/sequenceStates", body, &doc); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("outreach: add prospect %d to sequence %d", prospectID, sequenceID))
	}
	return &doc.Data, nil
}
