package pipedrive

import (
	"strings"
	"time"
)

// ContactValue is one email address or phone number on a person.
type ContactValue struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary"`
	Label   string `json:"label,omitempty"`
}

// Person is a Pipedrive person record.
type Person struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	OrgID     int64          `json:"org_id"`
	OwnerID   int64          `json:"owner_id"`
	JobTitle  string         `json:"job_title"`
	Emails    []ContactValue `json:"emails"`
	Phones    []ContactValue `json:"phones"`
}

// PrimaryEmail returns the primary email, or the first non-empty one.
func (p Person) PrimaryEmail() string {
	return primaryValue(p.Emails)
}

// PrimaryPhone returns the primary phone, or the first non-empty one.
func (p Person) PrimaryPhone() string {
	return primaryValue(p.Phones)
}

func primaryValue(values []ContactValue) string {
	for _, v := range values {
		if v.Primary && v.Value != "" {
			return v.Value
		}
	}
	for _, v := range values {
		if v.Value != "" {
			return v.Value
		}
	}
	return ""
}

// PersonInput is the body for creating a person.
type PersonInput struct {
	Name     string         `json:"name"`
	OrgID    int64          `json:"org_id,omitempty"`
	OwnerID  int64          `json:"owner_id,omitempty"`
	JobTitle string         `json:"job_title,omitempty"`
	Emails   []ContactValue `json:"emails,omitempty"`
	Phones   []ContactValue `json:"phones,omitempty"`
}

// PersonUpdate is the body for patching a person. Nil slices are omitted.
type PersonUpdate struct {
	Emails   []ContactValue `json:"emails,omitempty"`
	Phones   []ContactValue `json:"phones,omitempty"`
	JobTitle string         `json:"job_title,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u PersonUpdate) Empty() bool {
	return len(u.Emails) == 0 && len(u.Phones) == 0 && u.JobTitle == ""
}

// Organization is a Pipedrive organization record.
type Organization struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id,omitempty"`
	Website string `json:"website,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

// Host returns the organization's bare domain from Domain or Website.
func (o Organization) Host() string {
	if o.Domain != "" {
		return HostOf(o.Domain)
	}
	return HostOf(o.Website)
}

// HostOf strips scheme, path, and a leading "www." from a URL or domain.
func HostOf(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

// Deal is a Pipedrive deal record.
type Deal struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Value             float64 `json:"value"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status"`
	OrgID             int64   `json:"org_id"`
	PersonID          int64   `json:"person_id"`
	OwnerID           int64   `json:"owner_id"`
	PipelineID        int64   `json:"pipeline_id"`
	StageID           int64   `json:"stage_id"`
	UpdateTime        string  `json:"update_time"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty"`
}

// UpdatedAt parses UpdateTime. Both RFC 3339 and "2006-01-02 15:04:05" (UTC)
// are accepted.
func (d Deal) UpdatedAt() (time.Time, bool) {
	if d.UpdateTime == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, d.UpdateTime); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateTime, d.UpdateTime); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// DealInput is the body for creating a deal.
type DealInput struct {
	Title             string  `json:"title"`
	Value             float64 `json:"value"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status,omitempty"`
	PersonID          int64   `json:"person_id,omitempty"`
	OrgID             int64   `json:"org_id,omitempty"`
	OwnerID           int64   `json:"owner_id,omitempty"`
	PipelineID        int64   `json:"pipeline_id,omitempty"`
	StageID           int64   `json:"stage_id,omitempty"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty"`
}

// DealFilter selects deals to list.
type DealFilter struct {
	Status        string
	SortBy        string
	SortDirection string
	OwnerID       int64
	StageID       int64
	Limit         int
}

// Participant links a person to an activity.
type Participant struct {
	PersonID int64 `json:"person_id"`
	Primary  bool  `json:"primary"`
}

// ActivityInput is the body for creating an activity.
type ActivityInput struct {
	Subject      string        `json:"subject"`
	Type         string        `json:"type"`
	OwnerID      int64         `json:"owner_id,omitempty"`
	DealID       int64         `json:"deal_id,omitempty"`
	OrgID        int64         `json:"org_id,omitempty"`
	DueDate      string        `json:"due_date,omitempty"`
	DueTime      string        `json:"due_time,omitempty"`
	Duration     string        `json:"duration,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	Note         string        `json:"note,omitempty"`
}

// Activity is a created activity.
type Activity struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	DealID  int64  `json:"deal_id"`
}
