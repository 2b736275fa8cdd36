package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/myretry"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
)

const (
	DefaultLimit    = 10
	DefaultMaxPolls = 1
	minimumWait     = 5 * time.Second
)

type service struct {
	d7       D7API
	uuider   myuuid.UUIDer
	maxPolls int
	sleep    func(c context.Context, d time.Duration) error
	logger   mylog.Logger
}

func newService(d7 D7API, uuider myuuid.UUIDer, maxPolls int) *service {
	if maxPolls < 1 {
		maxPolls = DefaultMaxPolls
	}
	return &service{
		d7:       d7,
		uuider:   uuider,
		maxPolls: maxPolls,
		sleep:    myretry.SleepContext,
		logger:   mylog.New("leads"),
	}
}

func validateQuery(q Query) (Query, error) {
	q.Keyword = strings.TrimSpace(q.Keyword)
	q.Location = strings.TrimSpace(q.Location)
	q.CountryCode = strings.TrimSpace(q.CountryCode)
	if q.Keyword == "" || q.Location == "" || q.CountryCode == "" {
		return q, myerrors.NewInvalidInputErrorf("Keyword, location and country code are required")
	}
	if len(q.CountryCode) != 2 {
		return q, myerrors.NewInvalidInputErrorf("Country code must be a 2-letter ISO code, got %q", q.CountryCode)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q, nil
}

// search submits the query and, unless the directory answers directly, waits and polls for the results.
func (s *service) search(c context.Context, q Query) ([]Lead, error) {
	q, err := validateQuery(q)
	if err != nil {
		return nil, err
	}

	searched, err := s.d7.Search(c, q.Keyword, q.CountryCode, q.Location)
	if err != nil {
		return nil, err
	}

	if searched.SearchID == "" {
		if len(searched.Leads) > 0 {
			s.logger.Log(c, "", mylog.SeverityInfo, "D7 returned %d leads directly", len(searched.Leads))
			return s.normalizeAll(searched.Leads, q), nil
		}
		if searched.Message != "" {
			return nil, myerrors.NewInternalError(fmt.Errorf("D7 Search API error: %s", searched.Message))
		}
		return nil, myerrors.NewProtocolError(fmt.Errorf("D7 Search API failed to provide a searchid and no direct leads were found."))
	}

	wait := time.Duration(searched.WaitSeconds) * time.Second
	if wait < minimumWait {
		wait = minimumWait
	}

	for poll := 1; ; poll++ {
		s.logger.Log(c, "", mylog.SeverityDebug, "Waiting %s before polling D7 search %s (poll %d/%d)", wait, searched.SearchID, poll, s.maxPolls)
		err = s.sleep(c, wait)
		if err != nil {
			return nil, err
		}

		results, err := s.d7.Results(c, searched.SearchID)
		if err != nil {
			return nil, err
		}

		switch results.Status {
		case "error":
			return nil, myerrors.NewInternalError(fmt.Errorf("D7 Results API error: %s", firstNonEmpty(results.Message, "unknown error")))
		case "pending":
			if poll >= s.maxPolls {
				s.logger.Log(c, "", mylog.SeverityWarn, "D7 search %s still pending after %d polls", searched.SearchID, poll)
				return []Lead{}, nil
			}
			wait *= 2
			continue
		}

		s.logger.Log(c, "", mylog.SeverityInfo, "Received %d raw leads for D7 search %s", len(results.Leads), searched.SearchID)
		return s.normalizeAll(results.Leads, q), nil
	}
}

// normalizeAll keeps at most q.Limit leads, each with a fresh id.
func (s *service) normalizeAll(raw []RawLead, q Query) []Lead {
	leads := make([]Lead, 0, min(len(raw), q.Limit))
	for _, r := range raw {
		if len(leads) == q.Limit {
			break
		}
		lead := normalize(r, q)
		lead.ID = s.uuider.Create()
		leads = append(leads, lead)
	}
	return leads
}
