package contactfile

// CompanyRow is one contact with the details of the company behind their
// email domain.
type CompanyRow struct {
	FirstName   string
	LastName    string
	Email       string
	JobTitle    string
	CompanyName string
	Industry    string
	Revenue     string
}

var companyColumns = []string{
	"First Name",
	"Last Name",
	"Email Address",
	"Job Title",
	"Company Name",
	"Company Industry",
	"Company Revenue",
}

// WriteCompanies writes company rows. Empty values are written as N/A.
func WriteCompanies(path string, rows []CompanyRow, format Format) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			orNA(r.FirstName),
			orNA(r.LastName),
			orNA(r.Email),
			orNA(r.JobTitle),
			orNA(r.CompanyName),
			orNA(r.Industry),
			orNA(r.Revenue),
		}
	}
	return writeTable(path, format, companyColumns, out)
}
