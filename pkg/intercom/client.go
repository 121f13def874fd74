// Package intercom is a client for the Intercom REST API endpoints used by
// conversation triage, plus webhook payload parsing and signature checks.
package intercom

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/pkg/apiclient"
)

const (
	defaultBaseURL = "https://api.intercom.io"
	apiVersion     = "2.1"
)

// Priority values for a conversation.
const (
	PriorityHigh = "priority"
	PriorityNone = "not_priority"
)

// Contact is an Intercom contact.
type Contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Tag is a tag applied to a conversation.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Conversation holds the conversation fields returned by updates.
type Conversation struct {
	ID       string `json:"id"`
	Priority string `json:"priority"`
	State    string `json:"state"`
}

// Client defines the Intercom API operations.
type Client interface {
	GetContact(ctx context.Context, contactID string) (*Contact, error)
	TagConversation(ctx context.Context, conversationID, adminID, tagID string) (*Tag, error)
	SetPriority(ctx context.Context, conversationID, priority string) (*Conversation, error)
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

// NewClient creates a new Intercom client.
func NewClient(accessToken string, opts ...Option) Client {
	c := &httpClient{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	apiOpts := []apiclient.Option{
		apiclient.WithBearerToken(accessToken),
		apiclient.WithHeader("Intercom-Version", apiVersion),
	}
	if c.http != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(c.http))
	}
	c.api = apiclient.New(c.baseURL, apiOpts...)
	return c
}

func (c *httpClient) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	if contactID == "" {
		return nil, eris.New("intercom: contact id is required")
	}
	var ct Contact
	if err := c.api.Get(ctx, "/contacts/"+url.PathEscape(contactID), nil, &ct); err != nil {
		return nil, eris.Wrapf(err, "intercom: get contact %s", contactID)
	}
	return &ct, nil
}

// TagConversation attaches an existing tag. The response must echo the tag id.
func (c *httpClient) TagConversation(ctx context.Context, conversationID, adminID, tagID string) (*Tag, error) {
	body := map[string]string{"id": tagID, "admin_id": adminID}
	var tag Tag
	path := fmt.Sprintf("/conversations/%s/tags", url.PathEscape(conversationID))
	if err := c.api.Post(ctx, path, body, &tag); err != nil {
		return nil, eris.Wrapf(err, "intercom: tag conversation %s", conversationID)
	}
	if tag.ID != tagID {
		return nil, eris.Errorf("intercom: tag conversation %s: response tag %q does not match %q", conversationID, tag.ID, tagID)
	}
	return &tag, nil
}

func (c *httpClient) SetPriority(ctx context.Context, conversationID, priority string) (*Conversation, error) {
	var conv Conversation
	path := "/conversations/" + url.PathEscape(conversationID)
	if err := c.api.Put(ctx, path, map[string]string{"priority": priority}, &conv); err != nil {
		return nil, eris.Wrapf(err, "intercom: set priority on conversation %s", conversationID)
	}
	return &conv, nil
}
