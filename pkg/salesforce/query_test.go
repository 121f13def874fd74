package salesforce

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func soqlContaining(parts ...string) any {
	return mock.MatchedBy(func(soql string) bool {
		for _, p := range parts {
			if !strings.Contains(soql, p) {
				return false
			}
		}
		return true
	})
}

func TestListContacts_SelectsAccountRelationship(t *testing.T) {
	mc := &mockClient{}
	mc.On("Query", mock.Anything, soqlContaining("Account.Name, Account.Website", "FROM Contact", "LIMIT 25"), mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]Contact)
			*out = []Contact{
				{ID: "003a", FirstName: "Jane", Account: &ContactAccount{Name: "Acme", Website: "https://acme.com"}},
				{ID: "003b", FirstName: "John"},
			}
		}).
		Return(nil)

	contacts, err := ListContacts(context.Background(), mc, 25)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Acme", contacts[0].AccountName())
	assert.Equal(t, "https://acme.com", contacts[0].AccountWebsite())
	assert.Equal(t, "", contacts[1].AccountName())
	assert.Equal(t, "", contacts[1].AccountWebsite())
	mc.AssertExpectations(t)
}

func TestListContacts_DefaultsLimitToBatchSize(t *testing.T) {
	mc := &mockClient{}
	mc.On("Query", mock.Anything, soqlContaining("LIMIT 200"), mock.Anything).Return(nil)

	contacts, err := ListContacts(context.Background(), mc, 0)
	require.NoError(t, err)
	assert.Empty(t, contacts)
	mc.AssertExpectations(t)
}

func TestListContacts_WrapsQueryError(t *testing.T) {
	mc := &mockClient{}
	mc.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := ListContacts(context.Background(), mc, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf: list contacts")
}
