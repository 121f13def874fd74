package contactfile

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/reconcile"
)

const statusColumn = "Update Status"

var requiredColumns = []model.Field{model.FieldFirstName, model.FieldLastName, model.FieldEmail}

var optionalColumns = []model.Field{
	model.FieldJobTitle,
	model.FieldCompanyName,
	model.FieldDomain,
	model.FieldLinkedInURL,
	model.FieldPhone,
}

var inputColumns = append(append([]model.Field{}, requiredColumns...), optionalColumns...)

// contactColumns is the output column order.
var contactColumns = []model.Field{
	model.FieldFirstName,
	model.FieldLastName,
	model.FieldCompanyName,
	model.FieldDomain,
	model.FieldEmail,
	model.FieldPhone,
	model.FieldJobTitle,
	model.FieldLinkedInURL,
}

// ReadContacts loads contacts from a CSV or XLSX file. Each record gets an
// external id derived from its name; repeated names are suffixed. Rows with
// no values at all are skipped.
func ReadContacts(path string) ([]model.Person, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("contactfile: %s has no header row", path)
	}

	idx := headerIndex(rows[0])
	var missing []string
	for _, f := range requiredColumns {
		if _, ok := idx[string(f)]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("contactfile: %s missing required columns: %s", path, strings.Join(missing, ", "))
	}

	ids := newIDAllocator()
	people := make([]model.Person, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		var p model.Person
		for _, f := range inputColumns {
			if i, ok := idx[string(f)]; ok && i < len(row) {
				p.Set(f, strings.TrimSpace(row[i]))
			}
		}
		p.ExternalID = ids.next(ExternalID(p.FirstName, p.LastName))
		people = append(people, p)
	}
	return people, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteContacts writes one row per result with its merged values and the
// update status. Empty values are written as N/A.
func WriteContacts(path string, results []reconcile.Result, format Format) error {
	header := make([]string, 0, len(contactColumns)+1)
	for _, f := range contactColumns {
		header = append(header, string(f))
	}
	header = append(header, statusColumn)

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := make([]string, 0, len(header))
		for _, f := range contactColumns {
			row = append(row, orNA(r.Merged.Get(f)))
		}
		row = append(row, r.Status())
		rows = append(rows, row)
	}
	return writeTable(path, format, header, rows)
}
