package adscan

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Haazy99/AgencyTest2/lib/myconfig"
	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/services/leads"
)

const (
	BatchSize               = 10
	DefaultBatchConcurrency = 1
	scanDateLayout          = "2006-01-02T15:04:05.000Z07:00"
)

type service struct {
	scraper     PageScraper
	token       string
	nower       mytime.Nower
	concurrency int
	logger      mylog.Logger
}

func newService(scraper PageScraper, token string, nower mytime.Nower, concurrency int) *service {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}
	return &service{
		scraper:     scraper,
		token:       token,
		nower:       nower,
		concurrency: concurrency,
		logger:      mylog.New("adscan"),
	}
}

func (s *service) checkToken() error {
	return myconfig.ValidateApifyToken(s.token)
}

// scan returns the leads in their original order, each lead with a page
// annotated with the outcome of the ad scan.
func (s *service) scan(c context.Context, in []leads.Lead) ([]leads.Lead, error) {
	err := s.checkToken()
	if err != nil {
		return nil, err
	}

	pages := pageURLs(in)
	if len(pages) == 0 {
		return nil, myerrors.NewInvalidInputErrorf("No Facebook pages found in leads")
	}
	s.logger.Log(c, "", mylog.SeverityInfo, "Scanning %d Facebook pages for %d leads", len(pages), len(in))

	results, err := s.scrape(c, pages)
	if err != nil {
		return nil, err
	}

	scannedAt := s.nower.Now().UTC().Format(scanDateLayout)
	out := make([]leads.Lead, 0, len(in))
	for _, lead := range in {
		out = append(out, applyResult(lead, results, scannedAt))
	}
	return out, nil
}

// pageURLs lists the distinct pages to scan in first-seen order.
func pageURLs(in []leads.Lead) []string {
	seen := map[string]bool{}
	pages := []string{}
	for _, lead := range in {
		key := pageKey(lead.FacebookPage)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		pages = append(pages, lead.FacebookPage)
	}
	return pages
}

func batches(pages []string, size int) [][]string {
	out := [][]string{}
	for start := 0; start < len(pages); start += size {
		end := min(start+size, len(pages))
		out = append(out, pages[start:end])
	}
	return out
}

func (s *service) scrape(c context.Context, pages []string) (map[string]PageItem, error) {
	results := map[string]PageItem{}
	mutex := sync.Mutex{}

	all := batches(pages, BatchSize)
	g, gc := errgroup.WithContext(c)
	g.SetLimit(s.concurrency)
	for i, batch := range all {
		g.Go(func() error {
			s.logger.Log(gc, "", mylog.SeverityDebug, "Scanning batch %d/%d (%d pages)", i+1, len(all), len(batch))
			items, err := s.scraper.ScrapePages(gc, NewScraperInput(batch))
			if err != nil {
				return fmt.Errorf("scanning batch %d: %w", i+1, err)
			}

			mutex.Lock()
			defer mutex.Unlock()
			for _, item := range items {
				key := pageKey(item.PageURL)
				if item.failed() {
					key = pageKey(item.URL)
				}
				if key == "" {
					continue
				}
				results[key] = item
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}

func applyResult(lead leads.Lead, results map[string]PageItem, scannedAt string) leads.Lead {
	if pageKey(lead.FacebookPage) == "" {
		if lead.AdLibraryURL == "" {
			term := lead.Name
			if term == "" {
				term = lead.CompanyName
			}
			lead.AdLibraryURL = AdLibraryURL("", term)
		}
		return lead
	}

	lead.LastAdScanDate = scannedAt
	item, found := results[pageKey(lead.FacebookPage)]
	if !found || item.failed() {
		inactive := false
		lead.HasActiveAds = &inactive
		lead.FacebookPageStatus = leads.PageStatusInaccessible
		if !found {
			item = PageItem{PageURL: lead.FacebookPage}
		}
		lead.AdLibraryURL = item.constructedAdLibraryURL()
		if item.failed() {
			lead.FacebookPageError = item.ErrorDescription
			if lead.FacebookPageError == "" {
				lead.FacebookPageError = item.Error
			}
		}
		return lead
	}

	active := item.HasActiveAds
	lead.HasActiveAds = &active
	lead.FacebookPageStatus = leads.PageStatusActive
	lead.FacebookPageError = ""
	lead.AdLibraryURL = item.AdLibraryURL
	if lead.AdLibraryURL == "" {
		lead.AdLibraryURL = item.constructedAdLibraryURL()
	}
	return lead
}
