package adscan

import (
	"net/url"
	"regexp"
	"strings"
)

const adLibraryBase = "https://www.facebook.com/ads/library/"

var facebookPrefix = regexp.MustCompile(`^https?://(www\.)?facebook\.com/?`)

// AdLibraryURL links to the active ads of a page. A known page id gives an
// exact match, otherwise the library is searched for term.
func AdLibraryURL(pageID string, term string) string {
	filter := ""
	switch {
	case pageID != "":
		filter = "view_all_page_id=" + url.QueryEscape(pageID)
	case term != "":
		filter = "q=" + strings.ReplaceAll(url.QueryEscape(term), "+", "%20")
	default:
		return ""
	}
	return adLibraryBase + "?active_status=active&ad_type=all&country=ALL&" + filter +
		"&sort_data[direction]=desc&sort_data[mode]=relevancy_monthly_grouped&search_type=page&media_type=all"
}

// PageSlug extracts the page handle from a Facebook page URL.
func PageSlug(pageURL string) string {
	cleaned := strings.ToLower(strings.TrimSpace(pageURL))
	cleaned = facebookPrefix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSuffix(cleaned, "/")
	cleaned = strings.TrimPrefix(cleaned, "pg/")
	cleaned = strings.TrimPrefix(cleaned, "pages/")

	segments := []string{}
	for _, s := range strings.Split(cleaned, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return cleaned
	}
	return segments[len(segments)-1]
}

func pageKey(pageURL string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(pageURL)), "/")
}
