package trademe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trademe-scraper/config"
	"trademe-scraper/utils"
)

const (
	defaultAPIBase  = "https://api.trademe.co.nz"
	defaultSiteBase = "https://www.trademe.co.nz"

	// PageSize is the number of rows requested per search page.
	PageSize = 22
)

// defaultHeaders mimic a browser on www.trademe.co.nz calling the public API.
// Accept-Encoding is left to the transport so compressed bodies are decoded.
var defaultHeaders = http.Header{
	"Accept":          {"application/json, text/plain, */*"},
	"Accept-Language": {"en-US,en;q=0.5"},
	"Connection":      {"keep-alive"},
	"Origin":          {"https://www.trademe.co.nz"},
	"Referer":         {"https://www.trademe.co.nz/"},
	"Sec-Fetch-Dest":  {"empty"},
	"Sec-Fetch-Mode":  {"cors"},
	"Sec-Fetch-Site":  {"same-site"},
	"User-Agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:145.0) Gecko/20100101 Firefox/145.0"},
}

// DefaultHeaders returns a copy of the static header set sent with every request.
func DefaultHeaders() http.Header {
	return defaultHeaders.Clone()
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trademe: GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Options configures a Client. Empty fields take the production defaults.
type Options struct {
	APIBaseURL  string
	SiteBaseURL string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client talks to the Trade Me search, listing, estimates and nearby endpoints.
// Requests are issued one at a time by the caller; the client holds no per-listing state.
type Client struct {
	apiBase  string
	siteBase string
	http     *http.Client
	logger   *utils.Logger
}

// New creates a Client from application config.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return NewWithOptions(Options{
		APIBaseURL:  cfg.APIBaseURL,
		SiteBaseURL: cfg.SiteBaseURL,
		Timeout:     cfg.HTTPTimeout,
	}, logger)
}

// NewWithOptions creates a Client from explicit options.
func NewWithOptions(opts Options, logger *utils.Logger) *Client {
	apiBase := strings.TrimRight(opts.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	siteBase := strings.TrimRight(opts.SiteBaseURL, "/")
	if siteBase == "" {
		siteBase = defaultSiteBase
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{apiBase: apiBase, siteBase: siteBase, http: hc, logger: logger}
}

// getJSON issues a GET with the static headers and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("trademe: build request: %w", err)
	}
	req.Header = DefaultHeaders()

	c.logger.Debug("[trademe] GET %s", rawURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("trademe: GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{URL: rawURL, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("trademe: decode %s: %w", rawURL, err)
	}
	return nil
}

// siteURL builds a public www.trademe.co.nz link from an API path fragment.
func (c *Client) siteURL(path string) string {
	return c.siteBase + "/a" + path
}
