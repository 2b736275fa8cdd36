package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	q := Query{Keyword: "Plumbers", Location: "Austin", CountryCode: "us"}

	t.Run("Maps upstream field names", func(t *testing.T) {
		lead := normalize(RawLead{
			"name":            "Acme Plumbing",
			"first_name":      "Jo",
			"last_name":       "Smith",
			"email":           "jo@acme.com",
			"phone_number":    "+1 555 1234",
			"website":         "https://acme.com",
			"street_address":  "1 Main St",
			"city":            "Round Rock",
			"state_province":  "TX",
			"zip_postal_code": "78664",
			"country":         "United States",
			"category":        "Plumber",
			"social_media":    map[string]any{"facebook": "https://www.facebook.com/acmeplumbing"},
			"rating":          4.8,
		}, q)

		assert.Equal(t, Lead{
			Name:          "Acme Plumbing",
			FirstName:     "Jo",
			LastName:      "Smith",
			Email:         "jo@acme.com",
			Phone:         "+1 555 1234",
			CompanyName:   "Acme Plumbing",
			Website:       "https://acme.com",
			Address:       "1 Main St",
			City:          "Round Rock",
			State:         "TX",
			ZipCode:       "78664",
			Country:       "United States",
			Category:      "Plumber",
			FacebookPage:  "https://www.facebook.com/acmeplumbing",
			QueryKeyword:  "Plumbers",
			QueryLocation: "Austin, US",
			Extra:         map[string]any{"rating": 4.8},
		}, lead)
	})

	t.Run("Defaults from the query", func(t *testing.T) {
		lead := normalize(RawLead{"name": "Bob's Pipes & Co.", "contact_name": "Bob van der Berg"}, q)

		assert.Equal(t, "Bob", lead.FirstName)
		assert.Equal(t, "van der Berg", lead.LastName)
		assert.Equal(t, "Austin", lead.City)
		assert.Equal(t, "US", lead.Country)
		assert.Equal(t, "Plumbers", lead.Category)
		assert.Equal(t, "https://facebook.com/bobspipesco", lead.FacebookPage)
		assert.Nil(t, lead.Extra)
	})

	t.Run("Full address wins over street address", func(t *testing.T) {
		lead := normalize(RawLead{"full_address": "1 Main St, Austin", "street_address": "1 Main St"}, q)
		assert.Equal(t, "1 Main St, Austin", lead.Address)
	})

	t.Run("Facebook handle without scheme", func(t *testing.T) {
		lead := normalize(RawLead{"social_media": map[string]any{"facebook": "facebook.com/acme"}}, q)
		assert.Equal(t, "https://facebook.com/acme", lead.FacebookPage)
	})

	t.Run("Without name or facebook", func(t *testing.T) {
		lead := normalize(RawLead{"email": "x@example.com"}, q)
		assert.Equal(t, "", lead.FacebookPage)
	})
}
