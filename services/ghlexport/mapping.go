package ghlexport

import (
	"github.com/Haazy99/AgencyTest2/services/ghlclient"
	"github.com/Haazy99/AgencyTest2/services/leads"
)

// contactFields lists the standard contact fields a mapping may fill.
var contactFields = map[string]func(*ghlclient.Contact) *string{
	"firstName":   func(c *ghlclient.Contact) *string { return &c.FirstName },
	"lastName":    func(c *ghlclient.Contact) *string { return &c.LastName },
	"email":       func(c *ghlclient.Contact) *string { return &c.Email },
	"phone":       func(c *ghlclient.Contact) *string { return &c.Phone },
	"address1":    func(c *ghlclient.Contact) *string { return &c.Address1 },
	"city":        func(c *ghlclient.Contact) *string { return &c.City },
	"state":       func(c *ghlclient.Contact) *string { return &c.State },
	"postalCode":  func(c *ghlclient.Contact) *string { return &c.PostalCode },
	"country":     func(c *ghlclient.Contact) *string { return &c.Country },
	"website":     func(c *ghlclient.Contact) *string { return &c.Website },
	"companyName": func(c *ghlclient.Contact) *string { return &c.CompanyName },
}

// mapContact copies the lead onto a contact: first the direct mapping, then
// the overrides in mapping (contact field -> lead field).
func mapContact(lead leads.Lead, mapping map[string]string) (ghlclient.Contact, []string) {
	postalCode := lead.ZipCode
	if postalCode == "" {
		postalCode = lead.Field("postalCode")
	}
	contact := ghlclient.Contact{
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Address1:    lead.Address,
		City:        lead.City,
		State:       lead.State,
		PostalCode:  postalCode,
		Website:     lead.Website,
		CompanyName: lead.CompanyName,
	}

	ignored := []string{}
	for contactField, leadField := range mapping {
		field, found := contactFields[contactField]
		if !found || leadField == "" {
			ignored = append(ignored, contactField)
			continue
		}
		if value := lead.Field(leadField); value != "" {
			*field(&contact) = value
		}
	}
	return contact, ignored
}
