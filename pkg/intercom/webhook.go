package intercom

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Intercom signs webhooks with HMAC-SHA1.
	"encoding/hex"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// SignatureHeader carries the webhook body signature.
const SignatureHeader = "X-Hub-Signature"

// TopicConversationCreated is the topic for a new user-initiated conversation.
const TopicConversationCreated = "conversation.user.created"

// Sign returns "sha1=<hex HMAC-SHA1(secret, body)>".
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares signature against the expected body signature in
// constant time. An empty secret or signature never verifies.
func VerifySignature(secret, signature string, body []byte) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Notification is a webhook delivery.
type Notification struct {
	Topic string `json:"topic"`
	Data  struct {
		Item NotificationItem `json:"item"`
	} `json:"data"`
}

// NotificationItem is the conversation a notification is about.
type NotificationItem struct {
	ID       string `json:"id"`
	Contacts struct {
		Contacts []struct {
			ID string `json:"id"`
		} `json:"contacts"`
	} `json:"contacts"`
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// ParseNotification decodes a webhook body.
func ParseNotification(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, eris.Wrap(err, "intercom: decode notification")
	}
	return &n, nil
}

// ConversationID returns the conversation id.
func (n *Notification) ConversationID() string {
	return n.Data.Item.ID
}

// ContactID returns the first contact id on the conversation, or "".
func (n *Notification) ContactID() string {
	if cs := n.Data.Item.Contacts.Contacts; len(cs) > 0 {
		return cs[0].ID
	}
	return ""
}

// UserEmail returns the inline user email some payloads carry, or "".
func (n *Notification) UserEmail() string {
	return n.Data.Item.User.Email
}
