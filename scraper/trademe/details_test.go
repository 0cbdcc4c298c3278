package trademe

import (
	"context"
	"encoding/json"
	"testing"

	"trademe-scraper/models"
)

const sampleStub = `{
	"ListingId": 4455,
	"Title": "Family home in Grey Lynn",
	"Address": "12 Kauri Road",
	"Suburb": "",
	"District": "Auckland City",
	"Region": "Auckland",
	"GeographicLocation": {"Latitude": -36.85, "Longitude": 174.76, "Accuracy": 1},
	"PriceDisplay": "Asking price $1,050,000",
	"CanonicalPath": "/property/residential/sale/auckland/listing/4455",
	"PropertySearchListingsTag": [{"Date": "/Date(1699999999000)/"}]
}`

func decodeStub(t *testing.T, s string) models.ListingStub {
	t.Helper()
	var stub models.ListingStub
	if err := json.Unmarshal([]byte(s), &stub); err != nil {
		t.Fatalf("decode stub: %v", err)
	}
	return stub
}

func TestFetchDetailsBuildsFullRecord(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	rec, err := c.FetchDetails(context.Background(), decodeStub(t, sampleStub))
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}

	want := models.ListingRecord{
		ListingDate:          "2023-11-15 11:13:19",
		PropertyTitle:        "Family home in Grey Lynn",
		PropertyAddress:      "12 Kauri Road, Auckland City, Auckland",
		Bedrooms:             "4",
		Bathrooms:            "2",
		Area:                 "612m²",
		CapitalValue:         "$950,000",
		PropertyURL:          "https://www.trademe.co.nz/a/property/residential/sale/auckland/listing/4455",
		EstimatedMarketPrice: "$900K - $1M",
		EstimatedWeeklyRent:  "$700 - $780",
		DisplayPrice:         "Asking price $1,050,000",
		GeographicLocation:   "{'Latitude': -36.85, 'Longitude': 174.76, 'Accuracy': 1}",
		Address:              "12 Kauri Road",
		Suburb:               "",
		District:             "Auckland City",
		Region:               "Auckland",
		Description:          "Sunny family home.",
		NearbyProperties: "1 Queen Street, Auckland ;; 2024-03-01 ;; Sold $1.1M ;; https://www.trademe.co.nz/a/property/1\r\n" +
			"2024-02-10 ;; https://www.trademe.co.nz/a/property/2",
	}
	if rec != want {
		got, exp := rec.Row(), want.Row()
		for i := range got {
			if got[i] != exp[i] {
				t.Errorf("%s = %q; want %q", models.Columns[i], got[i], exp[i])
			}
		}
	}

	nq := queryOf(t, api.last(nearbyPath))
	if nq.Get("property_id") != "H-77" || nq.Get("bedrooms_min") != "3" ||
		nq.Get("bedrooms_max") != "5" || nq.Get("limit") != "10" {
		t.Errorf("nearby query = %v", nq)
	}
	if api.last("/v1/listings/4455.json") == nil {
		t.Error("detail endpoint not called with listing id")
	}
}

func TestFetchDetailsWithoutListingID(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	stub := decodeStub(t, `{"Title": "Mystery", "Address": "5 Elm St", "Region": "Otago"}`)
	rec, err := c.FetchDetails(context.Background(), stub)
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if len(api.requests) != 0 {
		t.Errorf("expected no requests, got %d", len(api.requests))
	}
	want := models.ListingRecord{Address: "5 Elm St", Region: "Otago"}
	if rec != want {
		t.Errorf("record = %+v; want %+v", rec, want)
	}
}

func TestFetchDetailsSkipsNearbyWithoutHomeID(t *testing.T) {
	api := &fakeAPI{noHomeID: true}
	c := newTestClient(t, api)

	rec, err := c.FetchDetails(context.Background(), decodeStub(t, sampleStub))
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if rec.NearbyProperties != "" {
		t.Errorf("NearbyProperties = %q; want empty", rec.NearbyProperties)
	}
	if n := api.count(nearbyPath); n != 0 {
		t.Errorf("nearby requests = %d; want 0", n)
	}
}

func TestFetchDetailsDefaultsAndMissingDate(t *testing.T) {
	api := &fakeAPI{noHomeID: true}
	c := newTestClient(t, api)

	rec, err := c.FetchDetails(context.Background(), decodeStub(t, `{"ListingId": 9, "PropertySearchListingsTag": [{"Date": "soon"}]}`))
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if rec.PropertyTitle != "No Title" {
		t.Errorf("PropertyTitle = %q; want %q", rec.PropertyTitle, "No Title")
	}
	if rec.ListingDate != "" {
		t.Errorf("ListingDate = %q; want empty for malformed token", rec.ListingDate)
	}
	if rec.PropertyURL != "https://www.trademe.co.nz/a" {
		t.Errorf("PropertyURL = %q", rec.PropertyURL)
	}
}

func TestFetchDetailsPropagatesFailures(t *testing.T) {
	for _, section := range []string{"detail", "estimates", "nearby"} {
		t.Run(section, func(t *testing.T) {
			api := &fakeAPI{failSection: section}
			c := newTestClient(t, api)

			rec, err := c.FetchDetails(context.Background(), decodeStub(t, sampleStub))
			if err == nil {
				t.Fatal("expected error")
			}
			if rec != (models.ListingRecord{}) {
				t.Errorf("expected zero record on failure, got %+v", rec)
			}
		})
	}
}

func TestFetchDetailsWithoutEstimates(t *testing.T) {
	api := &fakeAPI{noEstimates: true}
	c := newTestClient(t, api)

	rec, err := c.FetchDetails(context.Background(), decodeStub(t, sampleStub))
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if rec.EstimatedMarketPrice != "" || rec.EstimatedWeeklyRent != "" {
		t.Errorf("estimates = %q / %q; want both empty", rec.EstimatedMarketPrice, rec.EstimatedWeeklyRent)
	}
	if rec.NearbyProperties == "" {
		t.Error("missing estimates should not stop the nearby lookup")
	}
}

func TestApplyAttributesKeepsLeadingToken(t *testing.T) {
	var rec models.ListingRecord
	applyAttributes(&rec, []models.Attribute{
		{Name: "bathrooms", Value: "2 bathrooms"},
		{Name: "bedrooms", Value: ""},
		{Name: "land_area", Value: "1,012 m²"},
		{Name: "unknown", Value: "ignored"},
	})
	if rec.Bathrooms != "2" {
		t.Errorf("Bathrooms = %q; want 2", rec.Bathrooms)
	}
	if rec.Bedrooms != "" {
		t.Errorf("Bedrooms = %q; want empty", rec.Bedrooms)
	}
	if rec.Area != "1,012 m²" {
		t.Errorf("Area = %q; want full value", rec.Area)
	}
}

func TestBedroomBand(t *testing.T) {
	tests := []struct {
		beds     string
		lo, hi int
	}{
		{"1", 1, 3},
		{"0", 1, 3},
		{"", 1, 3},
		{"studio", 1, 3},
		{"2", 1, 3},
		{"4", 3, 5},
		{"10", 9, 11},
	}
	for _, tt := range tests {
		lo, hi := BedroomBand(tt.beds)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("BedroomBand(%q) = [%d,%d]; want [%d,%d]", tt.beds, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestHomeID(t *testing.T) {
	tests := []struct {
		name  string
		attrs []models.Attribute
		want  string
	}{
		{"empty", nil, ""},
		{"last entry", []models.Attribute{{Name: "homes_property_id", Value: "A"}, {Name: "homes_property_id", Value: "B"}}, "B"},
		{"forward scan", []models.Attribute{{Name: "x"}, {Name: "homes_property_id", Value: "A"}, {Name: "homes_property_id", Value: "C"}, {Name: "y"}}, "A"},
		{"absent", []models.Attribute{{Name: "x", Value: "1"}}, ""},
	}
	for _, tt := range tests {
		if got := HomeID(tt.attrs); got != tt.want {
			t.Errorf("%s: HomeID = %q; want %q", tt.name, got, tt.want)
		}
	}
}
