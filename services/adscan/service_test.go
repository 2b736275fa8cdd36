package adscan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/services/leads"
)

const testToken = "apify_api_test"

func setupService(t *testing.T, ctrl *gomock.Controller, token string, concurrency int) (*service, *MockPageScraper) {
	scraper := NewMockPageScraper(ctrl)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	return newService(scraper, token, nower, concurrency), scraper
}

func startURLs(input ScraperInput) []string {
	urls := []string{}
	for _, s := range input.StartURLs {
		urls = append(urls, s.URL)
	}
	return urls
}

func TestScan(t *testing.T) {
	t.Run("Matched and unmatched pages keep lead order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, scraper := setupService(t, ctrl, testToken, 1)

		scraper.EXPECT().ScrapePages(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, input ScraperInput) ([]PageItem, error) {
			assert.Equal(t, []string{"https://facebook.com/acme", "https://facebook.com/missing/"}, startURLs(input))
			assert.True(t, input.ScrapeAds)
			assert.False(t, input.ScrapePosts)
			assert.Equal(t, 1, input.SearchLimit)
			return []PageItem{
				{PageURL: "https://facebook.com/Acme", HasActiveAds: true, AdLibraryURL: "https://library.example/acme"},
			}, nil
		})

		results, err := sut.scan(t.Context(), []leads.Lead{
			{ID: "1", Name: "Acme", FacebookPage: "https://facebook.com/acme"},
			{ID: "2", Name: "Bob's Garage"},
			{ID: "3", Name: "Missing", FacebookPage: "https://facebook.com/missing/"},
		})
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, "1", results[0].ID)
		require.NotNil(t, results[0].HasActiveAds)
		assert.True(t, *results[0].HasActiveAds)
		assert.Equal(t, leads.PageStatusActive, results[0].FacebookPageStatus)
		assert.Equal(t, "https://library.example/acme", results[0].AdLibraryURL)
		assert.Equal(t, "2023-02-27T23:58:59.000Z", results[0].LastAdScanDate)

		assert.Equal(t, "2", results[1].ID)
		assert.Nil(t, results[1].HasActiveAds)
		assert.Equal(t, "", results[1].LastAdScanDate)
		assert.Equal(t, AdLibraryURL("", "Bob's Garage"), results[1].AdLibraryURL)

		assert.Equal(t, "3", results[2].ID)
		require.NotNil(t, results[2].HasActiveAds)
		assert.False(t, *results[2].HasActiveAds)
		assert.Equal(t, leads.PageStatusInaccessible, results[2].FacebookPageStatus)
		assert.Equal(t, AdLibraryURL("", "missing"), results[2].AdLibraryURL)
		assert.Equal(t, "", results[2].FacebookPageError)
		assert.Equal(t, "2023-02-27T23:58:59.000Z", results[2].LastAdScanDate)
	})

	t.Run("Error item marks page inaccessible", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, scraper := setupService(t, ctrl, testToken, 1)

		scraper.EXPECT().ScrapePages(gomock.Any(), gomock.Any()).Return([]PageItem{
			{URL: "https://facebook.com/gone", Error: "not_found", ErrorDescription: "Page not available"},
		}, nil)

		results, err := sut.scan(t.Context(), []leads.Lead{{Name: "Gone", FacebookPage: "https://facebook.com/gone"}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.False(t, *results[0].HasActiveAds)
		assert.Equal(t, leads.PageStatusInaccessible, results[0].FacebookPageStatus)
		assert.Equal(t, "Page not available", results[0].FacebookPageError)
		assert.Equal(t, AdLibraryURL("", "gone"), results[0].AdLibraryURL)
	})

	t.Run("Success without library link uses page id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, scraper := setupService(t, ctrl, testToken, 1)

		scraper.EXPECT().ScrapePages(gomock.Any(), gomock.Any()).Return([]PageItem{
			{PageURL: "https://facebook.com/acme", PageID: "987", HasActiveAds: false},
		}, nil)

		results, err := sut.scan(t.Context(), []leads.Lead{{FacebookPage: "https://facebook.com/acme", FacebookPageError: "stale"}})
		require.NoError(t, err)
		assert.False(t, *results[0].HasActiveAds)
		assert.Equal(t, leads.PageStatusActive, results[0].FacebookPageStatus)
		assert.Equal(t, "", results[0].FacebookPageError)
		assert.Equal(t, AdLibraryURL("987", ""), results[0].AdLibraryURL)
	})

	t.Run("Pages are split in batches of ten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, scraper := setupService(t, ctrl, testToken, 2)

		mutex := sync.Mutex{}
		sizes := []int{}
		scraper.EXPECT().ScrapePages(gomock.Any(), gomock.Any()).DoAndReturn(func(c context.Context, input ScraperInput) ([]PageItem, error) {
			mutex.Lock()
			defer mutex.Unlock()
			sizes = append(sizes, len(input.StartURLs))
			return []PageItem{}, nil
		}).Times(3)

		in := []leads.Lead{}
		for i := range 25 {
			in = append(in, leads.Lead{ID: fmt.Sprint(i), FacebookPage: fmt.Sprintf("https://facebook.com/page%d", i)})
		}
		// Duplicate pages are scanned once.
		in = append(in, leads.Lead{ID: "dup", FacebookPage: "https://facebook.com/PAGE3/"})

		results, err := sut.scan(t.Context(), in)
		require.NoError(t, err)
		assert.Len(t, results, 26)
		assert.Equal(t, "dup", results[25].ID)
		assert.Equal(t, leads.PageStatusInaccessible, results[25].FacebookPageStatus)

		sort.Ints(sizes)
		assert.Equal(t, []int{5, 10, 10}, sizes)
	})

	t.Run("Scraper failure fails the scan", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, scraper := setupService(t, ctrl, testToken, 1)

		scraper.EXPECT().ScrapePages(gomock.Any(), gomock.Any()).Return(nil, myerrors.NewInternalError(fmt.Errorf("Apify actor run failed (HTTP 402): Not enough credits")))

		_, err := sut.scan(t.Context(), []leads.Lead{{FacebookPage: "https://facebook.com/acme"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scanning batch 1")
		assert.Equal(t, "Apify actor run failed (HTTP 402): Not enough credits", myerrors.Message(err))
	})

	t.Run("No pages", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, _ := setupService(t, ctrl, testToken, 1)

		_, err := sut.scan(t.Context(), []leads.Lead{{Name: "Acme"}})
		require.Error(t, err)
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
		assert.Equal(t, "No Facebook pages found in leads", myerrors.Message(err))
	})

	t.Run("Invalid token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, _ := setupService(t, ctrl, "secret", 1)

		_, err := sut.scan(t.Context(), []leads.Lead{{FacebookPage: "https://facebook.com/acme"}})
		require.Error(t, err)
		assert.True(t, myerrors.IsKind(err, myerrors.KindConfig))
		assert.Equal(t, "Invalid Apify API token format", myerrors.Message(err))
	})
}
