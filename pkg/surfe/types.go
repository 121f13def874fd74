package surfe

import (
	"encoding/json"
	"strings"
)

// JobStatus is the state of an asynchronous enrichment job.
type JobStatus string

const (
	StatusInProgress JobStatus = "IN_PROGRESS"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// normalizeStatus folds the provider's spelling variants onto the three
// known states. Unknown values are passed through and treated as pending.
func normalizeStatus(s string) JobStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COMPLETED", "COMPLETE":
		return StatusCompleted
	case "FAILED", "FAILURE", "ERROR":
		return StatusFailed
	case "IN_PROGRESS", "":
		return StatusInProgress
	default:
		return JobStatus(strings.ToUpper(s))
	}
}

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// PersonInput is one person submitted for enrichment.
type PersonInput struct {
	ExternalID    string
	FirstName     string
	LastName      string
	CompanyName   string
	CompanyDomain string
	LinkedInURL   string
	Email         string
}

// Include selects which contact channels the job should look up.
type Include struct {
	Email  bool `json:"email"`
	Mobile bool `json:"mobile"`
}

// DefaultInclude requests both emails and mobile phones.
var DefaultInclude = Include{Email: true, Mobile: true}

// PeopleRequest is a batch submitted to the people enrichment endpoint.
// EnrichmentType and ListName are only sent by the v1 API.
type PeopleRequest struct {
	People         []PersonInput
	EnrichmentType string
	ListName       string
	Include        Include
}

// EmailCandidate is one possible email address for a person.
type EmailCandidate struct {
	Email            string `json:"email"`
	ValidationStatus string `json:"validationStatus"`
}

// PhoneCandidate is one possible mobile number for a person. A missing
// confidence score decodes as zero.
type PhoneCandidate struct {
	MobilePhone     string  `json:"mobilePhone"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// EnrichedPerson is a person record returned by a completed job or a search.
type EnrichedPerson struct {
	ExternalID     string           `json:"externalID"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	CompanyName    string           `json:"companyName"`
	CompanyWebsite string           `json:"companyWebsite"`
	CompanyDomain  string           `json:"companyDomain"`
	JobTitle       string           `json:"jobTitle"`
	LinkedInURL    string           `json:"linkedinUrl"`
	Country        string           `json:"country"`
	Seniorities    []string         `json:"seniorities"`
	Departments    []string         `json:"departments"`
	Subdepartments []string         `json:"subdepartments"`
	Emails         []EmailCandidate `json:"emails"`
	MobilePhones   []PhoneCandidate `json:"mobilePhones"`
}

// Domain returns the company domain, falling back to the company website.
func (p EnrichedPerson) Domain() string {
	if p.CompanyDomain != "" {
		return p.CompanyDomain
	}
	return p.CompanyWebsite
}

// FullName joins first and last name.
func (p EnrichedPerson) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PeopleJob is the state of a people enrichment job.
type PeopleJob struct {
	ID     string
	Status JobStatus
	People []EnrichedPerson
	Error  json.RawMessage
}

// OrganizationInput is one company submitted for enrichment.
type OrganizationInput struct {
	Domain     string `json:"domain"`
	ExternalID string `json:"externalID,omitempty"`
}

// Industry is a single industry classification.
type Industry struct {
	Industry string `json:"industry"`
}

// Organization is a company record returned by enrichment or lookalike search.
type Organization struct {
	ExternalID         string     `json:"externalID,omitempty"`
	Name               string     `json:"name"`
	Website            string     `json:"website"`
	Domain             string     `json:"domain"`
	Description        string     `json:"description,omitempty"`
	Industries         []Industry `json:"industries"`
	AnnualRevenueRange string     `json:"annualRevenueRange"`
	EmployeeCount      int        `json:"employeeCount,omitempty"`
}

// PrimaryIndustry returns the first listed industry, or "".
func (o Organization) PrimaryIndustry() string {
	if len(o.Industries) == 0 {
		return ""
	}
	return o.Industries[0].Industry
}

// OrganizationJob is the state of an organization enrichment job.
type OrganizationJob struct {
	ID            string
	Status        JobStatus
	Organizations []Organization
	Error         json.RawMessage
}

// statusResponse covers both the people and organization job payloads.
type statusResponse struct {
	Status        string           `json:"status"`
	People        []EnrichedPerson `json:"people"`
	Organizations []Organization   `json:"organizations"`
	Error         json.RawMessage  `json:"error"`
}
