// Package salesforce reads and writes Salesforce Contacts over the REST API
// using the JWT bearer flow.
package salesforce

import (
	"context"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client is the record-level Salesforce surface the Contact sync runs on.
type Client interface {
	Query(ctx context.Context, soql string, out any) error
	UpdateRecord(ctx context.Context, sObject string, rec Record) error
	UpdateRecords(ctx context.Context, sObject string, recs []Record) ([]CollectionResult, error)
}

// Record is one sObject row keyed by API field name. Updates carry "Id".
type Record map[string]any

// ID returns the record's "Id" value, or "".
func (r Record) ID() string {
	id, _ := r["Id"].(string)
	return id
}

// CollectionResult is the per-record outcome of a Collections request.
type CollectionResult struct {
	ID      string   `json:"id"`
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

// Credentials holds the JWT bearer flow settings.
type Credentials struct {
	LoginURL       string
	Username       string
	ConsumerKey    string
	ConsumerRSAPem string
}

// Option configures a Client built by Connect or NewClient.
type Option func(*restClient)

// WithRequestsPerSecond throttles every API call to rps. Zero or less
// disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *restClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// restClient adapts go-salesforce, which has no context support. ctx only
// bounds the throttle wait.
type restClient struct {
	api     *salesforce.Salesforce
	limiter *rate.Limiter
}

// NewClient wraps an authenticated go-salesforce session.
func NewClient(api *salesforce.Salesforce, opts ...Option) Client {
	c := &restClient{api: api}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect authenticates with the JWT bearer flow.
func Connect(creds Credentials, opts ...Option) (Client, error) {
	if creds.ConsumerKey == "" {
		return nil, eris.New("sf: consumer key is required")
	}
	api, err := salesforce.Init(salesforce.Creds{
		Domain:         creds.LoginURL,
		Username:       creds.Username,
		ConsumerKey:    creds.ConsumerKey,
		ConsumerRSAPem: creds.ConsumerRSAPem,
	})
	if err != nil {
		return nil, eris.Wrap(err, "sf: jwt login")
	}
	return NewClient(api, opts...), nil
}

// call waits for the throttle, then runs fn and labels its failure with op.
func (c *restClient) call(ctx context.Context, op string, fn func() error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrapf(err, "sf: %s: throttle", op)
		}
	}
	if err := fn(); err != nil {
		return eris.Wrapf(err, "sf: %s", op)
	}
	return nil
}

func (c *restClient) Query(ctx context.Context, soql string, out any) error {
	return c.call(ctx, "query", func() error {
		return c.api.Query(soql, out)
	})
}

func (c *restClient) UpdateRecord(ctx context.Context, sObject string, rec Record) error {
	return c.call(ctx, "update "+sObject+" "+rec.ID(), func() error {
		return c.api.UpdateOne(sObject, map[string]any(rec))
	})
}

func (c *restClient) UpdateRecords(ctx context.Context, sObject string, recs []Record) ([]CollectionResult, error) {
	rows := make([]map[string]any, len(recs))
	for i, rec := range recs {
		rows[i] = rec
	}

	var out []CollectionResult
	err := c.call(ctx, "update collection "+sObject, func() error {
		res, err := c.api.UpdateCollection(sObject, rows, maxBatchSize)
		if err != nil {
			return err
		}
		out = make([]CollectionResult, 0, len(res.Results))
		for _, r := range res.Results {
			cr := CollectionResult{ID: r.Id, Success: r.Success}
			for _, e := range r.Errors {
				cr.Errors = append(cr.Errors, e.Message)
			}
			out = append(out, cr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
