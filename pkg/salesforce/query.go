package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ContactAccount is the parent Account relationship selected with a Contact.
type ContactAccount struct {
	Name    string `json:"Name" salesforce:"Name"`
	Website string `json:"Website" salesforce:"Website"`
}

// Contact represents a Salesforce Contact record.
type Contact struct {
	ID          string          `json:"Id" salesforce:"Id"`
	FirstName   string          `json:"FirstName" salesforce:"FirstName"`
	LastName    string          `json:"LastName" salesforce:"LastName"`
	Email       string          `json:"Email" salesforce:"Email"`
	MobilePhone string          `json:"MobilePhone" salesforce:"MobilePhone"`
	Title       string          `json:"Title" salesforce:"Title"`
	Account     *ContactAccount `json:"Account" salesforce:"Account"`
}

// AccountName returns the parent account name, or "".
func (c Contact) AccountName() string {
	if c.Account == nil {
		return ""
	}
	return c.Account.Name
}

// AccountWebsite returns the parent account website, or "".
func (c Contact) AccountWebsite() string {
	if c.Account == nil {
		return ""
	}
	return c.Account.Website
}

// contactFields are the SOQL fields selected for Contact queries.
var contactFields = []string{
	"Id", "FirstName", "LastName", "Email", "MobilePhone", "Title",
	"Account.Name", "Account.Website",
}

// ListContacts returns up to limit Contacts ordered by last modification.
func ListContacts(ctx context.Context, c Client, limit int) ([]Contact, error) {
	if limit <= 0 {
		limit = maxBatchSize
	}
	soql := fmt.Sprintf(
		"SELECT %s FROM Contact ORDER BY LastModifiedDate DESC LIMIT %d",
		strings.Join(contactFields, ", "),
		limit,
	)

	var contacts []Contact
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrap(err, "sf: list contacts")
	}
	return contacts, nil
}
