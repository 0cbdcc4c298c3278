package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trademe-scraper/models"
	"trademe-scraper/scraper/trademe"
	"trademe-scraper/storage"
	"trademe-scraper/utils"
)

// ListingSource fetches search stubs and per-listing detail records.
// *trademe.Client is the production implementation.
type ListingSource interface {
	FetchListings(ctx context.Context, q *models.SearchQuery) ([]models.ListingStub, error)
	FetchDetails(ctx context.Context, stub models.ListingStub) (models.ListingRecord, error)
}

// Pipeline runs search, enrichment and persistence for each input URL in turn.
type Pipeline struct {
	source ListingSource
	writer storage.RecordWriter
	logger *utils.Logger
}

// NewPipeline wires a listing source to an output writer.
func NewPipeline(source ListingSource, writer storage.RecordWriter, logger *utils.Logger) *Pipeline {
	return &Pipeline{source: source, writer: writer, logger: logger}
}

// Run processes every URL sequentially and saves each successful batch.
// A failing URL is logged and recorded in its result; the run continues.
func (p *Pipeline) Run(ctx context.Context, urls []string) []models.URLResult {
	p.logger.Info("[pipeline] Found %d URLs to process", len(urls))

	results := make([]models.URLResult, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("[pipeline] Run stopped before %s: %v", u, err)
			break
		}

		res := p.ProcessURL(ctx, u)
		if res.OK() && len(res.Records) > 0 {
			if err := p.writer.Append(res.Filename, res.Records); err != nil {
				res.Err = fmt.Errorf("save %s: %w", res.Filename, err)
			} else {
				p.logger.Info("[pipeline] Saved %d listings to %s (%s)", len(res.Records), res.Filename, res.Duration.Round(time.Millisecond))
			}
		}
		if !res.OK() {
			p.logger.Error("[pipeline] Error processing %s: %v", u, res.Err)
		}
		results = append(results, res)
	}
	return results
}

// ProcessURL fetches and enriches every listing for one search URL. It does
// not persist anything; on error the result carries no records.
func (p *Pipeline) ProcessURL(ctx context.Context, rawURL string) (res models.URLResult) {
	start := time.Now()
	res = models.URLResult{URL: rawURL, Filename: OutputFilename(rawURL)}
	defer func() { res.Duration = time.Since(start) }()

	p.logger.Info("[pipeline] Processing: %s", rawURL)

	q, err := trademe.TranslateURL(rawURL)
	if err != nil {
		res.Err = err
		return res
	}

	stubs, err := p.source.FetchListings(ctx, q)
	if err != nil {
		res.Err = fmt.Errorf("fetch listings: %w", err)
		return res
	}
	if len(stubs) == 0 {
		p.logger.Info("[pipeline] No listings found on %s", rawURL)
		return res
	}
	p.logger.Info("[pipeline] Found %d listings", len(stubs))

	records := make([]models.ListingRecord, 0, len(stubs))
	for i, stub := range stubs {
		p.logger.Info("[pipeline]   Scraping details for listing %d/%d", i+1, len(stubs))
		rec, err := p.source.FetchDetails(ctx, stub)
		if err != nil {
			res.Err = fmt.Errorf("listing %d/%d: %w", i+1, len(stubs), err)
			return res
		}
		records = append(records, rec)
	}

	res.Records = records
	return res
}

// OutputFilename names the output file for a search URL: for ".../sale/auckland/search"
// it is "sale_auckland"; anything not ending in /search goes to "listings".
func OutputFilename(rawURL string) string {
	trimmed := strings.Trim(rawURL, "/")
	trimmed, _, _ = strings.Cut(trimmed, "?")
	parts := strings.Split(trimmed, "/")

	name := "listings"
	if n := len(parts); n >= 3 && parts[n-1] == "search" {
		name = parts[n-3] + "_" + parts[n-2]
	}
	return strings.ReplaceAll(name, " ", "_")
}
