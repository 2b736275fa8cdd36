package ghlexport

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mypublisher"
	"github.com/Haazy99/AgencyTest2/services/ghlauth/ghlevents"
	"github.com/Haazy99/AgencyTest2/services/ghlclient"
	"github.com/Haazy99/AgencyTest2/services/ghlsession"
	"github.com/Haazy99/AgencyTest2/services/leads"
)

const (
	messageCreated = "Contact created successfully"
	messageExists  = "Contact already exists"
)

type service struct {
	ghl       ghlclient.API
	publisher mypublisher.Publisher
	logger    mylog.Logger
}

func newService(ghl ghlclient.API, pub mypublisher.Publisher) *service {
	return &service{
		ghl:       ghl,
		publisher: pub,
		logger:    mylog.New("ghlexport"),
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, ghlevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", ghlevents.TopicName, err)
	}
	return nil
}

type SubAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *service) subAccounts(c context.Context, session *ghlsession.Session) ([]SubAccount, error) {
	token, err := session.GetAccessToken(c)
	if err != nil {
		return nil, err
	}

	locations, err := s.ghl.GetLocations(c, token, session.GHLCompanyID)
	if err != nil {
		return nil, err
	}

	subAccounts := make([]SubAccount, 0, len(locations))
	for _, l := range locations {
		subAccounts = append(subAccounts, SubAccount{ID: l.ID, Name: l.Name})
	}
	return subAccounts, nil
}

type ExportRequest struct {
	Lead       *leads.Lead       `json:"lead"`
	LocationID string            `json:"locationId"`
	Mapping    map[string]string `json:"mapping"`
}

type ExportResult struct {
	ContactID string
	Contact   ghlclient.ContactRecord
	Message   string
}

func (s *service) export(c context.Context, session *ghlsession.Session, req ExportRequest) (ExportResult, error) {
	if req.Lead == nil || strings.TrimSpace(req.LocationID) == "" {
		return ExportResult{}, myerrors.NewInvalidInputErrorf("Lead data and location ID are required")
	}

	token, err := session.GetAccessToken(c)
	if err != nil {
		return ExportResult{}, err
	}
	if token == "" {
		return ExportResult{}, myerrors.NewAuthError(fmt.Errorf("No GHL access token found. Please connect to GoHighLevel first."))
	}

	contact, ignored := mapContact(*req.Lead, req.Mapping)
	if len(ignored) > 0 {
		sort.Strings(ignored)
		s.logger.Log(c, req.LocationID, mylog.SeverityDebug, "Ignoring unknown mapping fields: %s", strings.Join(ignored, ", "))
	}

	if contact.Email != "" {
		existing, found := s.findByEmail(c, token, req.LocationID, contact.Email)
		if found {
			s.logger.Log(c, req.LocationID, mylog.SeverityInfo, "Contact %s already exists", existing.ID)
			return ExportResult{
				ContactID: existing.ID,
				Contact:   existing,
				Message:   messageExists,
			}, nil
		}
	}

	created, err := s.ghl.CreateContact(c, token, session.GHLCompanyID, req.LocationID, contact)
	if err != nil {
		return ExportResult{}, err
	}
	s.logger.Log(c, req.LocationID, mylog.SeverityInfo, "Created contact %s", created.Contact.ID)

	s.publish(c, ghlevents.ContactExported{
		LocationID: req.LocationID,
		ContactID:  created.Contact.ID,
	})

	return ExportResult{
		ContactID: created.Contact.ID,
		Contact:   created.Contact,
		Message:   messageCreated,
	}, nil
}

// findByEmail is best effort: a failing lookup lets the export create the contact.
func (s *service) findByEmail(c context.Context, token string, locationID string, email string) (ghlclient.ContactRecord, bool) {
	result, err := s.ghl.SearchContacts(c, token, locationID, ghlclient.SearchParams{Email: email})
	if err != nil {
		s.logger.Log(c, locationID, mylog.SeverityWarn, "Contact lookup failed, creating a new contact: %s", err)
		return ghlclient.ContactRecord{}, false
	}

	for _, record := range result.Contacts {
		if !strings.EqualFold(record.Email, email) || record.ID == "" {
			continue
		}
		full, err := s.ghl.GetContact(c, token, record.ID)
		if err != nil {
			s.logger.Log(c, locationID, mylog.SeverityWarn, "Error reading contact %s: %s", record.ID, err)
			return record, true
		}
		return full.Contact, true
	}
	return ghlclient.ContactRecord{}, false
}

func (s *service) publish(c context.Context, event mypublisher.Event) {
	err := s.publisher.Publish(c, ghlevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, event.GetAggregateName(), mylog.SeverityError, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}
