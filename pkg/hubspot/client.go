// Package hubspot is a client for the HubSpot CRM v3 contacts API.
package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/pkg/apiclient"
)

// Default base URL for the HubSpot API.
const defaultBaseURL = "https://api.hubapi.com"

// MaxBatchSize is the batch update limit per request.
const MaxBatchSize = 100

// Contact property names.
const (
	PropFirstName   = "firstname"
	PropLastName    = "lastname"
	PropCompany     = "company"
	PropEmailDomain = "hs_email_domain"
	PropEmail       = "email"
	PropPhone       = "phone"
	PropJobTitle    = "jobtitle"
	PropLinkedInURL = "hs_linkedin_url"
)

// ContactProperties are the properties requested when listing contacts.
var ContactProperties = []string{
	PropFirstName, PropLastName, PropCompany, PropEmailDomain,
	PropEmail, PropPhone, PropJobTitle, PropLinkedInURL,
}

// Contact is a HubSpot contact with its requested properties.
type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Prop returns a property value, or "".
func (c Contact) Prop(name string) string {
	return c.Properties[name]
}

// ContactUpdate sets properties on one contact.
type ContactUpdate struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Client defines the HubSpot API operations.
type Client interface {
	ListContacts(ctx context.Context, limit int, properties []string) ([]Contact, error)
	BatchUpdateContacts(ctx context.Context, updates []ContactUpdate) ([]Contact, error)
}

type listResponse struct {
	Results []Contact `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// nextAfter returns the cursor of the following page, or "" on the last page.
func (r listResponse) nextAfter() string {
	if r.Paging == nil || r.Paging.Next == nil {
		return ""
	}
	return r.Paging.Next.After
}

type batchResponse struct {
	Status  string    `json:"status"`
	Results []Contact `json:"results"`
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

// NewClient creates a new HubSpot client authenticated with a private app
// access token.
func NewClient(accessToken string, opts ...Option) Client {
	c := &httpClient{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	apiOpts := []apiclient.Option{apiclient.WithBearerToken(accessToken)}
	if c.http != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(c.http))
	}
	c.api = apiclient.New(c.baseURL, apiOpts...)
	return c
}

// ListContacts returns up to limit contacts, following paging cursors in
// pages of at most MaxBatchSize.
func (c *httpClient) ListContacts(ctx context.Context, limit int, properties []string) ([]Contact, error) {
	if limit <= 0 {
		limit = MaxBatchSize
	}
	if len(properties) == 0 {
		properties = ContactProperties
	}

	var (
		contacts []Contact
		after    string
	)
	for len(contacts) < limit {
		q := url.Values{
			"limit":      {strconv.Itoa(min(limit-len(contacts), MaxBatchSize))},
			"properties": {strings.Join(properties, ",")},
		}
		if after != "" {
			q.Set("after", after)
		}

		var resp listResponse
		if err := c.api.Get(ctx, "/crm/v3/objects/contacts", q, &resp); err != nil {
			return nil, eris.Wrap(err, fmt.Sprintf("hubspot: list contacts (after %q)", after))
		}
		contacts = append(contacts, resp.Results...)

		after = resp.nextAfter()
		if after == "" || len(resp.Results) == 0 {
			break
		}
	}
	if len(contacts) > limit {
		contacts = contacts[:limit]
	}
	return contacts, nil
}

// BatchUpdateContacts sends one batch update. Callers split larger sets with
// UpdateContacts.
func (c *httpClient) BatchUpdateContacts(ctx context.Context, updates []ContactUpdate) ([]Contact, error) {
	if len(updates) > MaxBatchSize {
		return nil, eris.Errorf("hubspot: batch of %d exceeds limit %d", len(updates), MaxBatchSize)
	}
	var resp batchResponse
	body := map[string]any{"inputs": updates}
	if err := c.api.Post(ctx, "/crm/v3/objects/contacts/batch/update", body, &resp); err != nil {
		return nil, eris.Wrap(err, "hubspot: batch update contacts")
	}
	return resp.Results, nil
}

// BatchResult is the outcome of one batch update request.
type BatchResult struct {
	Updates []ContactUpdate
	Err     error
}

// UpdateContacts splits updates into batches of MaxBatchSize and sends each
// one. A failed batch does not stop the batches after it.
func UpdateContacts(ctx context.Context, c Client, updates []ContactUpdate) []BatchResult {
	var results []BatchResult
	for start := 0; start < len(updates); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(updates))
		batch := updates[start:end]
		_, err := c.BatchUpdateContacts(ctx, batch)
		if err != nil {
			err = eris.Wrap(err, fmt.Sprintf("hubspot: update contacts batch %d-%d", start, end))
		}
		results = append(results, BatchResult{Updates: batch, Err: err})
	}
	return results
}
