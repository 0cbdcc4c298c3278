package trademe

import (
	"context"
	"fmt"
	"strconv"

	"trademe-scraper/models"
)

const searchPath = "/v1/search/property/residential.json"

// TotalPages is the number of PageSize pages needed for total results.
func TotalPages(total int) int {
	pages := total / PageSize
	if total%PageSize > 0 {
		pages++
	}
	return pages
}

// FetchListings runs the paginated search for q and returns every listing
// stub in page order. A failure on any page aborts the whole fetch.
func (c *Client) FetchListings(ctx context.Context, q *models.SearchQuery) ([]models.ListingStub, error) {
	params := q.Params.Clone()
	params.Set("page", "1")

	first, err := c.searchPage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search page 1: %w", err)
	}
	c.logger.Info("[trademe] Total listings found: %d", first.TotalCount)

	listings := make([]models.ListingStub, 0, len(first.List))
	listings = append(listings, first.List...)

	totalPages := TotalPages(first.TotalCount)
	for page := 2; page <= totalPages; page++ {
		c.logger.Info("[trademe] Fetching page %d/%d", page, totalPages)
		params.Set("page", strconv.Itoa(page))

		resp, err := c.searchPage(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("search page %d/%d: %w", page, totalPages, err)
		}
		listings = append(listings, resp.List...)
	}

	return listings, nil
}

func (c *Client) searchPage(ctx context.Context, params *models.Params) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	if err := c.getJSON(ctx, c.apiBase+searchPath+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
