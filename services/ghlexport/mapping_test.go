package ghlexport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Haazy99/AgencyTest2/services/ghlclient"
	"github.com/Haazy99/AgencyTest2/services/leads"
)

func TestMapContact(t *testing.T) {
	t.Run("Direct mapping omits empty values", func(t *testing.T) {
		contact, ignored := mapContact(leads.Lead{
			FirstName: "Jane",
			Address:   "1 Main St",
			ZipCode:   "78701",
			Website:   "https://acme.example",
			Category:  "Plumbers",
		}, nil)
		assert.Equal(t, ghlclient.Contact{
			FirstName:  "Jane",
			Address1:   "1 Main St",
			PostalCode: "78701",
			Website:    "https://acme.example",
		}, contact)
		assert.Empty(t, ignored)
	})

	t.Run("Mapping overrides and extends", func(t *testing.T) {
		contact, ignored := mapContact(leads.Lead{
			FirstName: "Jane",
			Country:   "US",
			Extra:     map[string]any{"owner": "Janet", "empty": ""},
		}, map[string]string{
			"firstName": "owner",
			"country":   "country",
			"lastName":  "empty",
			"tags":      "category",
		})
		assert.Equal(t, ghlclient.Contact{FirstName: "Janet", Country: "US"}, contact)
		assert.Equal(t, []string{"tags"}, ignored)
	})
}
