// Package apiclient provides the JSON-over-HTTP request capability shared by
// every provider client. Providers supply a base URL, an auth option, and
// their own endpoint paths and payload types.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// RequestError is returned when a provider responds with a status code the
// caller did not accept.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// ProtocolError is returned when a response body decodes but lacks a field
// the caller depends on.
type ProtocolError struct {
	Field string
	Body  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("response missing %q: %s", e.Field, e.Body)
}

// Request describes a single API call. Body is JSON-encoded; Form, when set,
// is sent as application/x-www-form-urlencoded instead. Expect lists accepted
// status codes; an empty list accepts any 2xx.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   url.Values
	Expect []int
}

// Option configures a Client.
type Option func(*Client)

// WithBearerToken sends "Authorization: Bearer <token>" on every request.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.authHeader = "Bearer " + token
	}
}

// WithBasicAuth sends HTTP basic credentials on every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.basicUser = username
		c.basicPass = password
		c.basic = true
	}
}

// WithQueryToken appends name=token to every request's query string.
func WithQueryToken(name, token string) Option {
	return func(c *Client) {
		c.queryTokenName = name
		c.queryToken = token
	}
}

// WithHeader sets a static header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithContentType overrides the JSON content type (and Accept header).
func WithContentType(ct string) Option {
	return func(c *Client) {
		c.contentType = ct
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client performs JSON requests against a single base URL.
type Client struct {
	baseURL        string
	http           *http.Client
	authHeader     string
	basic          bool
	basicUser      string
	basicPass      string
	queryTokenName string
	queryToken     string
	contentType    string
	headers        map[string]string
}

// New creates a Client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		contentType: "application/json",
		headers:     make(map[string]string),
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root every request path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
	return err
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
	return err
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
	return err
}

// Do executes r and decodes a JSON response into out when out is non-nil and
// the body is non-empty. It returns the response status code.
func (c *Client) Do(ctx context.Context, r Request, out any) (int, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, eris.Wrap(err, "read response body")
	}

	if !accepted(resp.StatusCode, r.Expect) {
		return resp.StatusCode, &RequestError{
			Method:     r.Method,
			Path:       r.Path,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, eris.Wrap(err, "decode response")
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	u := c.baseURL + r.Path

	query := url.Values{}
	for k, vs := range r.Query {
		query[k] = vs
	}
	if c.queryTokenName != "" {
		query.Set(c.queryTokenName, c.queryToken)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.Body != nil:
		buf, err := json.Marshal(r.Body)
		if err != nil {
			return nil, eris.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(buf)
		contentType = c.contentType
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", c.contentType)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	switch {
	case c.basic:
		req.SetBasicAuth(c.basicUser, c.basicPass)
	case c.authHeader != "":
		req.Header.Set("Authorization", c.authHeader)
	}
	return req, nil
}

func accepted(status int, expect []int) bool {
	if len(expect) == 0 {
		return status >= 200 && status < 300
	}
	return slices.Contains(expect, status)
}
