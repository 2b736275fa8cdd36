package leads

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	PageStatusActive       = "active"
	PageStatusInaccessible = "inaccessible"
)

// Lead is the canonical lead record. Fields the record does not know are kept in Extra
// and written back at the top level.
type Lead struct {
	ID                 string
	Name               string
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	CompanyName        string
	Website            string
	Address            string
	City               string
	State              string
	ZipCode            string
	Country            string
	Category           string
	FacebookPage       string
	HasActiveAds       *bool
	AdLibraryURL       string
	FacebookPageStatus string
	FacebookPageError  string
	LastAdScanDate     string
	QueryKeyword       string
	QueryLocation      string
	Extra              map[string]any
}

func (l *Lead) stringFields() map[string]*string {
	return map[string]*string{
		"id":                 &l.ID,
		"name":               &l.Name,
		"firstName":          &l.FirstName,
		"lastName":           &l.LastName,
		"email":              &l.Email,
		"phone":              &l.Phone,
		"companyName":        &l.CompanyName,
		"website":            &l.Website,
		"address":            &l.Address,
		"city":               &l.City,
		"state":              &l.State,
		"zipCode":            &l.ZipCode,
		"country":            &l.Country,
		"category":           &l.Category,
		"facebookPage":       &l.FacebookPage,
		"adLibraryUrl":       &l.AdLibraryURL,
		"facebookPageStatus": &l.FacebookPageStatus,
		"facebookPageError":  &l.FacebookPageError,
		"lastAdScanDate":     &l.LastAdScanDate,
		"queryKeyword":       &l.QueryKeyword,
		"queryLocation":      &l.QueryLocation,
	}
}

// Field returns the value stored under a JSON field name, known or pass-through.
func (l Lead) Field(name string) string {
	if ptr, found := l.stringFields()[name]; found {
		return *ptr
	}
	return scalarString(l.Extra[name])
}

func (l Lead) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.Extra)+8)
	for k, v := range l.Extra {
		out[k] = v
	}
	for k, ptr := range l.stringFields() {
		if *ptr != "" {
			out[k] = *ptr
		} else {
			delete(out, k)
		}
	}
	if l.HasActiveAds != nil {
		out["hasActiveAds"] = *l.HasActiveAds
	} else {
		delete(out, "hasActiveAds")
	}
	return json.Marshal(out)
}

func (l *Lead) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	*l = Lead{}
	fields := l.stringFields()
	for k, v := range raw {
		if ptr, found := fields[k]; found {
			*ptr = scalarString(v)
			continue
		}
		if k == "hasActiveAds" {
			if b, ok := v.(bool); ok {
				l.HasActiveAds = &b
			}
			continue
		}
		if l.Extra == nil {
			l.Extra = map[string]any{}
		}
		l.Extra[k] = v
	}
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

type Query struct {
	Keyword     string `json:"keyword" form:"keyword"`
	Location    string `json:"location" form:"location"`
	CountryCode string `json:"countryCode" form:"countryCode"`
	Limit       int    `json:"limit" form:"limit"`
}
