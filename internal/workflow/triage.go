package workflow

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/pkg/intercom"
	"github.com/sells-group/enrich-cli/pkg/surfe"
)

// Triage outcome statuses.
const (
	TriageProcessed = "success"
	TriageIgnored   = "ignored"
)

// ErrIncompleteNotification is returned when a conversation notification has
// no conversation id or no resolvable contact email.
var ErrIncompleteNotification = eris.New("workflow: missing required conversation data")

// TriageResult is the outcome of handling one Intercom notification.
type TriageResult struct {
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
	ConversationID  string `json:"conversation_id,omitempty"`
	ContactEmail    string `json:"contact_email,omitempty"`
	IsCLevel        bool   `json:"is_c_level"`
	PriorityUpdated bool   `json:"priority_updated"`
}

// Triage flags new Intercom conversations started by C-level contacts.
type Triage struct {
	Surfe    surfe.Client
	Intercom intercom.Client
	AdminID  string
	TagID    string
	// SetPriority also marks flagged conversations as priority.
	SetPriority bool
}

// Handle processes one notification. Topics other than a new user
// conversation are ignored.
func (t *Triage) Handle(ctx context.Context, n *intercom.Notification) (*TriageResult, error) {
	if n.Topic != intercom.TopicConversationCreated {
		return &TriageResult{Status: TriageIgnored, Reason: "irrelevant topic"}, nil
	}

	convID := n.ConversationID()
	email, err := t.contactEmail(ctx, n)
	if err != nil {
		return nil, err
	}
	if convID == "" || email == "" {
		return nil, ErrIncompleteNotification
	}
	log := zap.L().With(zap.String("conversation_id", convID))

	person, err := t.Surfe.SearchPersonByEmail(ctx, email)
	if err != nil {
		return nil, eris.Wrap(err, "workflow: look up conversation contact")
	}

	res := &TriageResult{
		Status:         TriageProcessed,
		ConversationID: convID,
		ContactEmail:   email,
		IsCLevel:       person != nil && IsCLevel(*person),
	}
	if !res.IsCLevel {
		return res, nil
	}

	if t.TagID != "" {
		if _, err := t.Intercom.TagConversation(ctx, convID, t.AdminID, t.TagID); err != nil {
			return nil, err
		}
		log.Info("workflow: conversation tagged", zap.String("tag_id", t.TagID))
	}
	if t.SetPriority {
		if _, err := t.Intercom.SetPriority(ctx, convID, intercom.PriorityHigh); err != nil {
			return nil, err
		}
		res.PriorityUpdated = true
		log.Info("workflow: conversation prioritised")
	}
	return res, nil
}

// contactEmail resolves the first conversation contact through Intercom,
// falling back to the inline user email.
func (t *Triage) contactEmail(ctx context.Context, n *intercom.Notification) (string, error) {
	if id := n.ContactID(); id != "" {
		contact, err := t.Intercom.GetContact(ctx, id)
		if err != nil {
			return "", err
		}
		if contact.Email != "" {
			return contact.Email, nil
		}
	}
	return n.UserEmail(), nil
}

// IsCLevel reports whether a seniority is "c-level" or a department is
// "c suite", ignoring case.
func IsCLevel(p surfe.EnrichedPerson) bool {
	for _, s := range p.Seniorities {
		if strings.EqualFold(strings.TrimSpace(s), "c-level") {
			return true
		}
	}
	for _, d := range p.Departments {
		if strings.EqualFold(strings.TrimSpace(d), "c suite") {
			return true
		}
	}
	return false
}
