package trademe

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"trademe-scraper/utils"
)

// fakeAPI serves the four Trade Me endpoints from canned data and records
// every request it sees.
type fakeAPI struct {
	total       int
	noHomeID    bool
	noEstimates bool
	failPage    int
	failSection string

	mu       sync.Mutex
	requests []*http.Request
}

func (f *fakeAPI) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r.URL.Path, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last(prefix string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if strings.HasPrefix(f.requests[i].URL.Path, prefix) {
			return f.requests[i]
		}
	}
	return nil
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	switch {
	case r.URL.Path == searchPath:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == f.failPage {
			fmt.Fprint(w, "<html>not json</html>")
			return
		}
		items := []map[string]any{}
		for i := (page - 1) * PageSize; i < page*PageSize && i < f.total; i++ {
			items = append(items, map[string]any{"ListingId": 1000 + i, "Title": fmt.Sprintf("House %d", i)})
		}
		writeJSON(w, map[string]any{"TotalCount": f.total, "List": items})

	case strings.HasPrefix(r.URL.Path, "/v1/listings/"):
		if f.failSection == "detail" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		props := []map[string]string{{"Name": "homes_property_id", "Value": "H-77"}, {"Name": "other", "Value": "x"}}
		if f.noHomeID {
			props = props[1:]
		}
		writeJSON(w, map[string]any{
			"Body": "Sunny family home.",
			"Attributes": []map[string]string{
				{"Name": "bedrooms", "Value": "4 bedrooms"},
				{"Name": "bathrooms", "Value": "2 bathrooms"},
				{"Name": "rateable_value_(rv)", "Value": "$950,000"},
				{"Name": "land_area", "Value": "612m²"},
				{"Name": "parking", "Value": "Garage"},
			},
			"PropertyAttributes": props,
		})

	case strings.HasPrefix(r.URL.Path, "/v1/property/research/estimates/"):
		if f.failSection == "estimates" {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		if f.noEstimates {
			fmt.Fprint(w, `{"PropertyEstimates":{},"RentEstimates":null}`)
			return
		}
		writeJSON(w, map[string]any{
			"PropertyEstimates": map[string]string{"EstimatedMarketPriceRangeDisplay": "$900K - $1M"},
			"RentEstimates":     map[string]string{"EstimatedPricePerWeekRangeDisplay": "$700 - $780"},
		})

	case r.URL.Path == nearbyPath:
		if f.failSection == "nearby" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"Cards": []map[string]any{
			{
				"PropertyDetails": map[string]string{"DisplayAddress": "1 Queen Street, Auckland"},
				"Date":            "2024-03-01T00:00:00",
				"DisplayPrice":    "Sold $1.1M",
				"Url":             "/property/1",
			},
			{
				"Date": "2024-02-10T12:30:00",
				"Url":  "/property/2",
			},
		}})

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewWithOptions(Options{APIBaseURL: srv.URL, SiteBaseURL: "https://www.trademe.co.nz"}, utils.NewDiscardLogger())
}

func queryOf(t *testing.T, r *http.Request) url.Values {
	t.Helper()
	if r == nil {
		t.Fatal("expected a request, got none")
	}
	return r.URL.Query()
}
