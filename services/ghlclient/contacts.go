package ghlclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/myretry"
)

const defaultSearchLimit = 50

type Contact struct {
	FirstName    string         `json:"firstName,omitempty"`
	LastName     string         `json:"lastName,omitempty"`
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Address1     string         `json:"address1,omitempty"`
	City         string         `json:"city,omitempty"`
	State        string         `json:"state,omitempty"`
	PostalCode   string         `json:"postalCode,omitempty"`
	Country      string         `json:"country,omitempty"`
	Website      string         `json:"website,omitempty"`
	CompanyName  string         `json:"companyName,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

type ContactRecord struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	LocationID  string `json:"locationId,omitempty"`
}

type ContactResponse struct {
	Contact ContactRecord `json:"contact"`
}

type SearchParams struct {
	Email string
	Phone string
	Query string
	Limit int
}

type SearchResult struct {
	Contacts []ContactRecord `json:"contacts"`
	Total    int             `json:"total"`
}

func (cl *client) SearchContacts(c context.Context, token string, locationID string, params SearchParams) (SearchResult, error) {
	err := requireToken(token, "No agency access token available")
	if err != nil {
		return SearchResult{}, err
	}

	query := url.Values{}
	if params.Email != "" {
		query.Set("email", params.Email)
	}
	if params.Phone != "" {
		query.Set("phone", params.Phone)
	}
	if params.Query != "" {
		query.Set("query", params.Query)
	}
	query.Set("locationId", locationID)
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query.Set("limit", strconv.Itoa(limit))

	attempts := []myretry.Attempt[SearchResult]{}
	for _, path := range []string{"/contacts/search?", "/contacts?"} {
		endpoint := cl.baseURL + path + query.Encode()
		attempts = append(attempts, myretry.Attempt[SearchResult]{
			Name: endpoint,
			Do: func(c context.Context) (SearchResult, error) {
				result := SearchResult{}
				err := cl.getJSON(c, token, endpoint, &result)
				return result, err
			},
		})
	}

	result, err := myretry.Retry(c, "contact-search", cl.retry, func(c context.Context) (SearchResult, error) {
		return myretry.FirstSuccess(c, "contact-search", attempts)
	})
	if err != nil {
		return SearchResult{}, cl.fail(c, "contact search", err)
	}
	return result, nil
}

func (cl *client) GetContact(c context.Context, token string, contactID string) (ContactResponse, error) {
	err := requireToken(token, "No agency access token available")
	if err != nil {
		return ContactResponse{}, err
	}

	endpoint := cl.baseURL + "/contacts/" + url.PathEscape(contactID)
	contact, err := myretry.Retry(c, "contact-get", cl.retry, func(c context.Context) (ContactResponse, error) {
		contact := ContactResponse{}
		err := cl.getJSON(c, token, endpoint, &contact)
		return contact, err
	})
	if err != nil {
		return ContactResponse{}, cl.fail(c, "get contact", err)
	}
	return contact, nil
}

func (cl *client) getJSON(c context.Context, token string, endpoint string, dst any) error {
	resp, err := cl.send(c, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return endpointError(endpoint, resp)
	}
	err = json.Unmarshal(resp.Body, dst)
	if err != nil {
		return myerrors.NewProtocolError(fmt.Errorf("%s: invalid response: %s", endpoint, err))
	}
	return nil
}

type contactPayload struct {
	Contact
	LocationID string `json:"locationId"`
}

// CreateContact posts the contact with a location scoped token and falls back to the agency
// token when the location token is rejected or cannot be obtained.
func (cl *client) CreateContact(c context.Context, agencyToken string, companyID string, locationID string, contact Contact) (ContactResponse, error) {
	err := requireToken(agencyToken, "No agency access token available")
	if err != nil {
		return ContactResponse{}, err
	}

	endpoint := cl.baseURL + "/contacts/"
	payload := contactPayload{Contact: contact, LocationID: locationID}

	attempts := []myretry.Attempt[ContactResponse]{
		{
			Name: "location-token",
			Do: func(c context.Context) (ContactResponse, error) {
				locationToken, err := cl.GetLocationToken(c, agencyToken, companyID, locationID)
				if err != nil {
					if myretry.IsContextError(err) {
						return ContactResponse{}, myretry.Abort(err)
					}
					cl.logger.Log(c, companyID, mylog.SeverityWarn, "Location token unavailable, using agency token: %s", myerrors.Message(err))
					return ContactResponse{}, err
				}

				resp, err := cl.send(c, http.MethodPost, endpoint, locationToken, payload)
				if err != nil {
					return ContactResponse{}, err
				}
				if resp.StatusCode == http.StatusUnauthorized {
					cl.logger.Log(c, companyID, mylog.SeverityWarn, "Location token rejected, using agency token")
					return ContactResponse{}, responseError(endpoint, resp)
				}
				if !resp.IsSuccess() {
					return ContactResponse{}, myretry.Abort(&APIError{
						StatusCode: resp.StatusCode,
						Endpoint:   endpoint,
						Message:    fmt.Sprintf("Contact creation failed with location token (%d): %s", resp.StatusCode, orDefault(upstreamMessage(resp), http.StatusText(resp.StatusCode))),
					})
				}
				return decodeContact(endpoint, resp.Body)
			},
		},
		{
			Name: "agency-token",
			Do: func(c context.Context) (ContactResponse, error) {
				resp, err := cl.send(c, http.MethodPost, endpoint, agencyToken, payload)
				if err != nil {
					return ContactResponse{}, err
				}
				if !resp.IsSuccess() {
					msg := upstreamMessage(resp)
					text := fmt.Sprintf("Failed to create contact with agency token (%d): %s", resp.StatusCode, orDefault(msg, http.StatusText(resp.StatusCode)))
					if containsAny(msg, "authClass", "scope") {
						text = fmt.Sprintf("Failed to create contact with agency token: Authentication failed: %s. This typically means your GoHighLevel app needs additional OAuth scopes (oauth.write) or location-specific permissions.", msg)
					}
					return ContactResponse{}, &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Message: text}
				}
				return decodeContact(endpoint, resp.Body)
			},
		},
	}

	created, err := myretry.Retry(c, "contact-create", cl.retry, func(c context.Context) (ContactResponse, error) {
		return myretry.FirstSuccess(c, "contact-create", attempts)
	})
	if err != nil {
		return ContactResponse{}, cl.fail(c, "create contact", err)
	}

	cl.logger.Log(c, companyID, mylog.SeverityInfo, "Created contact %s in location %s", created.Contact.ID, locationID)

	return created, nil
}

func decodeContact(endpoint string, body []byte) (ContactResponse, error) {
	created := ContactResponse{}
	err := json.Unmarshal(body, &created)
	if err != nil {
		return ContactResponse{}, myerrors.NewProtocolError(fmt.Errorf("%s: invalid contact response: %s", endpoint, err))
	}
	return created, nil
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
