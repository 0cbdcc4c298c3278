package trademe

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"trademe-scraper/models"
)

// TranslateURL converts a www.trademe.co.nz search-results URL into the
// equivalent residential search API query. It makes no network calls.
func TranslateURL(raw string) (*models.SearchQuery, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("trademe: parse search url: %w", err)
	}

	canonical := CanonicalPath(u.EscapedPath())

	params := models.NewParams()
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		params.Merge(key, value)
	}

	params.Set("page", "1")
	params.Set("rows", strconv.Itoa(PageSize))
	params.Set("return_canonical", "true")
	params.Set("return_metadata", "true")
	params.Set("canonical_path", canonical)
	params.Set("return_variants", "true")
	params.Set("snap_parameters", "true")

	return &models.SearchQuery{CanonicalPath: canonical, Params: params}, nil
}

// CanonicalPath derives the saved-search path from a URL path ending in
// /search, e.g. "/a/property/residential/sale/auckland/search" gives
// "/property/residential/sale/auckland". Any other path gives "".
func CanonicalPath(path string) string {
	segments := strings.Split(path, "/")
	if segments[len(segments)-1] != "search" || len(segments) <= 3 {
		return ""
	}
	return "/" + strings.Join(segments[2:len(segments)-1], "/")
}
