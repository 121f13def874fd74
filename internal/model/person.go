package model

// Field names a tracked contact attribute. The string value is the column
// header used in files and in reconciliation status summaries.
type Field string

const (
	FieldFirstName   Field = "First Name"
	FieldLastName    Field = "Last Name"
	FieldCompanyName Field = "Company Name"
	FieldDomain      Field = "Company Domain"
	FieldJobTitle    Field = "Job Title"
	FieldLinkedInURL Field = "LinkedIn Profile URL"
	FieldEmail       Field = "Email Address"
	FieldPhone       Field = "Mobile Phone Number"
)

// ScalarFields are compared directly against enriched values, in report order.
var ScalarFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldCompanyName,
	FieldDomain,
	FieldJobTitle,
	FieldLinkedInURL,
}

// ContactFields are derived from candidate lists and reported after the
// scalar fields.
var ContactFields = []Field{FieldEmail, FieldPhone}

// Person is a contact record as read from a source system.
type Person struct {
	ExternalID  string `json:"external_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Domain      string `json:"company_domain"`
	LinkedInURL string `json:"linkedin_url"`
	JobTitle    string `json:"job_title"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// Get returns the value of f, or "" for an unknown field.
func (p Person) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return p.FirstName
	case FieldLastName:
		return p.LastName
	case FieldCompanyName:
		return p.CompanyName
	case FieldDomain:
		return p.Domain
	case FieldJobTitle:
		return p.JobTitle
	case FieldLinkedInURL:
		return p.LinkedInURL
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	}
	return ""
}

// Set assigns v to f. Unknown fields are ignored.
func (p *Person) Set(f Field, v string) {
	switch f {
	case FieldFirstName:
		p.FirstName = v
	case FieldLastName:
		p.LastName = v
	case FieldCompanyName:
		p.CompanyName = v
	case FieldDomain:
		p.Domain = v
	case FieldJobTitle:
		p.JobTitle = v
	case FieldLinkedInURL:
		p.LinkedInURL = v
	case FieldEmail:
		p.Email = v
	case FieldPhone:
		p.Phone = v
	}
}

// Eligible reports whether the record carries enough identity for a lookup:
// a LinkedIn URL, or a full name plus a company name or domain.
func (p Person) Eligible() bool {
	if p.LinkedInURL != "" {
		return true
	}
	if p.FirstName == "" || p.LastName == "" {
		return false
	}
	return p.CompanyName != "" || p.Domain != ""
}
