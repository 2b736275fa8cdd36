package leads

import (
	"fmt"
	"regexp"
	"strings"
)

// upstream keys that are mapped onto canonical fields and therefore not passed through
var mappedKeys = map[string]bool{
	"name":            true,
	"contact_name":    true,
	"first_name":      true,
	"last_name":       true,
	"email":           true,
	"phone_number":    true,
	"website":         true,
	"full_address":    true,
	"street_address":  true,
	"city":            true,
	"state_province":  true,
	"zip_postal_code": true,
	"country":         true,
	"category":        true,
	"social_media":    true,
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

func normalize(raw RawLead, q Query) Lead {
	field := func(key string) string {
		return scalarString(raw[key])
	}
	countryCode := strings.ToUpper(q.CountryCode)

	firstName, lastName := field("first_name"), field("last_name")
	if firstName == "" && lastName == "" {
		contactName := field("contact_name")
		if contactName != "" {
			parts := strings.Split(contactName, " ")
			firstName = parts[0]
			if len(parts) > 1 {
				lastName = strings.Join(parts[1:], " ")
			}
		}
	}

	lead := Lead{
		Name:          field("name"),
		FirstName:     firstName,
		LastName:      lastName,
		Email:         field("email"),
		Phone:         field("phone_number"),
		CompanyName:   field("name"),
		Website:       field("website"),
		Address:       firstNonEmpty(field("full_address"), field("street_address")),
		City:          firstNonEmpty(field("city"), q.Location),
		State:         field("state_province"),
		ZipCode:       field("zip_postal_code"),
		Country:       firstNonEmpty(field("country"), countryCode),
		Category:      firstNonEmpty(field("category"), q.Keyword),
		FacebookPage:  facebookPage(raw),
		QueryKeyword:  q.Keyword,
		QueryLocation: fmt.Sprintf("%s, %s", q.Location, countryCode),
	}

	for k, v := range raw {
		if mappedKeys[k] {
			continue
		}
		if lead.Extra == nil {
			lead.Extra = map[string]any{}
		}
		lead.Extra[k] = v
	}

	return lead
}

func facebookPage(raw RawLead) string {
	socialMedia, ok := raw["social_media"].(map[string]any)
	if ok {
		page := scalarString(socialMedia["facebook"])
		if page != "" {
			if !strings.HasPrefix(page, "http") {
				page = "https://facebook.com/" + strings.Replace(page, "facebook.com/", "", 1)
			}
			return page
		}
	}

	handle := nonAlphanumeric.ReplaceAllString(strings.ToLower(scalarString(raw["name"])), "")
	if handle == "" {
		return ""
	}
	return "https://facebook.com/" + handle
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
