// Package zoom is a client for the Zoom v2 webinar API and the
// server-to-server OAuth token endpoint.
package zoom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/pkg/apiclient"
)

const (
	defaultBaseURL  = "https://api.zoom.us/v2"
	defaultTokenURL = "https://zoom.us/oauth/token"
	defaultPageSize = 100
)

// Registrant is a webinar registrant.
type Registrant struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Org       string `json:"org"`
	JobTitle  string `json:"job_title"`
	Status    string `json:"status"`
}

// Eligible reports whether the registrant has a full name and either an
// organization or an email.
func (r Registrant) Eligible() bool {
	return r.FirstName != "" && r.LastName != "" && (r.Org != "" || r.Email != "")
}

// RegistrantPage is one page of registrants.
type RegistrantPage struct {
	PageSize      int          `json:"page_size"`
	TotalRecords  int          `json:"total_records"`
	NextPageToken string       `json:"next_page_token"`
	Registrants   []Registrant `json:"registrants"`
}

// Webinar holds the webinar fields the workflows use.
type Webinar struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	Topic     string `json:"topic"`
	StartTime string `json:"start_time"`
}

// Client defines the Zoom API operations.
type Client interface {
	GetWebinar(ctx context.Context, webinarID string) (*Webinar, error)
	ListRegistrants(ctx context.Context, webinarID string, pageSize int, pageToken string) (*RegistrantPage, error)
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

// NewClient creates a new Zoom client with an OAuth access token.
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

func (c *httpClient) GetWebinar(ctx context.Context, webinarID string) (*Webinar, error) {
	var w Webinar
	if err := c.api.Get(ctx, "/webinars/"+url.PathEscape(webinarID), nil, &w); err != nil {
		return nil, eris.Wrapf(err, "zoom: get webinar %s", webinarID)
	}
	return &w, nil
}

func (c *httpClient) ListRegistrants(ctx context.Context, webinarID string, pageSize int, pageToken string) (*RegistrantPage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	q := url.Values{"page_size": {strconv.Itoa(pageSize)}}
	if pageToken != "" {
		q.Set("next_page_token", pageToken)
	}
	var page RegistrantPage
	if err := c.api.Get(ctx, "/webinars/"+url.PathEscape(webinarID)+"/registrants", q, &page); err != nil {
		return nil, eris.Wrapf(err, "zoom: list registrants for webinar %s", webinarID)
	}
	return &page, nil
}

// AllRegistrants follows next_page_token until the last page.
func AllRegistrants(ctx context.Context, c Client, webinarID string) ([]Registrant, error) {
	var all []Registrant
	token := ""
	for {
		page, err := c.ListRegistrants(ctx, webinarID, defaultPageSize, token)
		if err != nil {
			return all, err
		}
		all = append(all, page.Registrants...)
		if page.NextPageToken == "" {
			return all, nil
		}
		token = page.NextPageToken
	}
}

// LoadRegistrants reads registrants from a JSON file holding either a
// registrants page object or a bare array.
func LoadRegistrants(path string) ([]Registrant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zoom: read registrants file %s", path)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []Registrant
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, eris.Wrapf(err, "zoom: decode registrants file %s", path)
		}
		return list, nil
	}
	var page RegistrantPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, eris.Wrapf(err, "zoom: decode registrants file %s", path)
	}
	return page.Registrants, nil
}

// Token is a server-to-server OAuth access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// TokenRequest holds the account credentials for the token exchange.
type TokenRequest struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// TokenURL overrides the OAuth endpoint.
	TokenURL string
	HTTP     *http.Client
}

// FetchAccessToken exchanges account credentials for an access token.
func FetchAccessToken(ctx context.Context, req TokenRequest) (*Token, error) {
	if req.AccountID == "" || req.ClientID == "" || req.ClientSecret == "" {
		return nil, eris.New("zoom: account id, client id, and client secret are required")
	}
	tokenURL := req.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	opts := []apiclient.Option{apiclient.WithBasicAuth(req.ClientID, req.ClientSecret)}
	if req.HTTP != nil {
		opts = append(opts, apiclient.WithHTTPClient(req.HTTP))
	}
	api := apiclient.New(tokenURL, opts...)

	var tok Token
	_, err := api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Form: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {req.AccountID},
		},
	}, &tok)
	if err != nil {
		return nil, eris.Wrap(err, "zoom: fetch access token")
	}
	if tok.AccessToken == "" {
		return nil, eris.Wrap(&apiclient.ProtocolError{Field: "access_token"}, "zoom: fetch access token")
	}
	return &tok, nil
}
