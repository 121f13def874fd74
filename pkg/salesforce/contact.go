package salesforce

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
)

const sObjectContact = "Contact"

// maxBatchSize is the Collections API record limit per request.
const maxBatchSize = 200

// ContactField is the API name of a Contact field the sync may write.
type ContactField string

const (
	ContactEmail       ContactField = "Email"
	ContactMobilePhone ContactField = "MobilePhone"
	ContactTitle       ContactField = "Title"
)

// Writable reports whether the sync is allowed to change f.
func (f ContactField) Writable() bool {
	switch f {
	case ContactEmail, ContactMobilePhone, ContactTitle:
		return true
	}
	return false
}

// ContactUpdate holds the new values for one Contact.
type ContactUpdate struct {
	ID      string
	Changes map[ContactField]string
}

// Set records a new value for f.
func (u *ContactUpdate) Set(f ContactField, v string) {
	if u.Changes == nil {
		u.Changes = make(map[ContactField]string)
	}
	u.Changes[f] = v
}

// Empty reports whether the update changes nothing.
func (u ContactUpdate) Empty() bool {
	return len(u.Changes) == 0
}

// Fields returns the changed field names in sorted order.
func (u ContactUpdate) Fields() []ContactField {
	fields := make([]ContactField, 0, len(u.Changes))
	for f := range u.Changes {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// record validates u and renders it as a Contact row.
func (u ContactUpdate) record() (Record, error) {
	if u.ID == "" {
		return nil, eris.New("sf: contact id is required")
	}
	if u.Empty() {
		return nil, eris.Errorf("sf: contact %s has no changes", u.ID)
	}
	rec := Record{"Id": u.ID}
	for _, f := range u.Fields() {
		if !f.Writable() {
			return nil, eris.Errorf("sf: contact %s: field %s is not writable", u.ID, f)
		}
		rec[string(f)] = u.Changes[f]
	}
	return rec, nil
}

// UpdateContact writes a single Contact.
func UpdateContact(ctx context.Context, c Client, u ContactUpdate) error {
	rec, err := u.record()
	if err != nil {
		return err
	}
	if err := c.UpdateRecord(ctx, sObjectContact, rec); err != nil {
		return eris.Wrapf(err, "sf: update contact %s", u.ID)
	}
	return nil
}

// BulkUpdateContacts validates every update, then writes them through the
// Collections API in batches of 200. Results of batches already written are
// returned alongside the first batch error.
func BulkUpdateContacts(ctx context.Context, c Client, updates []ContactUpdate) ([]CollectionResult, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	recs := make([]Record, len(updates))
	for i, u := range updates {
		rec, err := u.record()
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}

	var results []CollectionResult
	for start := 0; start < len(recs); start += maxBatchSize {
		end := min(start+maxBatchSize, len(recs))
		batch, err := c.UpdateRecords(ctx, sObjectContact, recs[start:end])
		if err != nil {
			return results, eris.Wrapf(err, "sf: bulk update contacts batch %d-%d", start, end)
		}
		results = append(results, batch...)
	}
	return results, nil
}

// FailedResults returns the results that did not succeed.
func FailedResults(results []CollectionResult) []CollectionResult {
	var failed []CollectionResult
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}
