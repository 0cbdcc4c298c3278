package trademe

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"trademe-scraper/models"
)

const (
	listingPath   = "/v1/listings/%s.json"
	estimatesPath = "/v1/property/research/estimates/%s.json"
	nearbyPath    = "/v1/property/homes/nearby.json"

	listingFlags = "return_canonical=true&return_member_profile=true&return_variants=true" +
		"&requestor=%7B%22type%22%3A%22human%22%7D&should_render_compliance_message=false" +
		"&preferred_shipping_location=use_delivery_address"

	homeIDAttribute = "homes_property_id"
	nearbyLimit     = 10
	defaultTitle    = "No Title"
)

// FetchDetails enriches one search stub with its detail, estimates and
// nearby-comparable lookups. A stub without a ListingId is returned as-is,
// coerced into the output schema, without any request. Any request failure
// returns an error and no record.
func (c *Client) FetchDetails(ctx context.Context, stub models.ListingStub) (models.ListingRecord, error) {
	id := stub.ListingID()
	if id == "" {
		c.logger.Debug("[trademe] Stub without ListingId, skipping enrichment")
		return models.RecordFromStub(stub), nil
	}

	rec := recordFromStub(stub, c.siteURL)

	detail, err := c.listingDetail(ctx, id)
	if err != nil {
		return models.ListingRecord{}, fmt.Errorf("listing %s detail: %w", id, err)
	}
	rec.Description = detail.Body
	applyAttributes(&rec, detail.Attributes)

	estimates, err := c.estimates(ctx, id)
	if err != nil {
		return models.ListingRecord{}, fmt.Errorf("listing %s estimates: %w", id, err)
	}
	if pe := estimates.PropertyEstimates; pe != nil {
		rec.EstimatedMarketPrice = pe.EstimatedMarketPriceRangeDisplay
	}
	if re := estimates.RentEstimates; re != nil {
		rec.EstimatedWeeklyRent = re.EstimatedPricePerWeekRangeDisplay
	}

	homeID := HomeID(detail.PropertyAttributes)
	if homeID == "" {
		return rec, nil
	}

	minBeds, maxBeds := BedroomBand(rec.Bedrooms)
	nearby, err := c.nearby(ctx, homeID, minBeds, maxBeds)
	if err != nil {
		return models.ListingRecord{}, fmt.Errorf("listing %s nearby: %w", id, err)
	}
	rec.NearbyProperties = c.formatNearby(nearby.Cards)

	return rec, nil
}

// recordFromStub fills the fields that come straight from the search result.
func recordFromStub(stub models.ListingStub, siteURL func(string) string) models.ListingRecord {
	rec := models.ListingRecord{
		PropertyTitle:      stub.String("Title"),
		Address:            stub.String("Address"),
		Suburb:             stub.String("Suburb"),
		District:           stub.String("District"),
		Region:             stub.String("Region"),
		GeographicLocation: models.FormatValue(stub["GeographicLocation"]),
		DisplayPrice:       stub.String("PriceDisplay"),
		PropertyURL:        siteURL(stub.String("CanonicalPath")),
	}
	if _, ok := stub["Title"]; !ok {
		rec.PropertyTitle = defaultTitle
	}
	rec.PropertyAddress = joinNonEmpty(", ", rec.Address, rec.Suburb, rec.District, rec.Region)

	if token := stub.PublishedDateToken(); token != "" {
		if date, err := ConvertDate(token); err == nil {
			rec.ListingDate = date
		}
	}
	return rec
}

// applyAttributes maps the recognised detail attributes onto the record.
// Later duplicates win.
func applyAttributes(rec *models.ListingRecord, attrs []models.Attribute) {
	for _, a := range attrs {
		switch a.Name {
		case "bathrooms":
			rec.Bathrooms = firstToken(a.Value)
		case "bedrooms":
			rec.Bedrooms = firstToken(a.Value)
		case "rateable_value_(rv)":
			rec.CapitalValue = a.Value
		case "land_area":
			rec.Area = a.Value
		}
	}
}

// HomeID finds the homes_property_id used for nearby lookups. The API
// usually puts it last, so that entry is checked before a forward scan.
func HomeID(attrs []models.Attribute) string {
	if len(attrs) == 0 {
		return ""
	}
	if last := attrs[len(attrs)-1]; last.Name == homeIDAttribute {
		return last.Value
	}
	for _, a := range attrs {
		if a.Name == homeIDAttribute {
			return a.Value
		}
	}
	return ""
}

// BedroomBand returns the bedrooms_min/bedrooms_max search band around a
// listing's bedroom count. Unparseable counts are treated as 1 and counts
// below 2 are raised to 2.
func BedroomBand(bedrooms string) (int, int) {
	beds, err := strconv.Atoi(strings.TrimSpace(bedrooms))
	if err != nil {
		beds = 1
	}
	if beds < 2 {
		beds = 2
	}
	return beds - 1, beds + 1
}

func (c *Client) listingDetail(ctx context.Context, id string) (*models.ListingDetail, error) {
	var detail models.ListingDetail
	u := c.apiBase + fmt.Sprintf(listingPath, url.PathEscape(id)) + "?" + listingFlags
	if err := c.getJSON(ctx, u, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) estimates(ctx context.Context, id string) (*models.EstimatesResponse, error) {
	var est models.EstimatesResponse
	if err := c.getJSON(ctx, c.apiBase+fmt.Sprintf(estimatesPath, url.PathEscape(id)), &est); err != nil {
		return nil, err
	}
	return &est, nil
}

func (c *Client) nearby(ctx context.Context, homeID string, minBeds, maxBeds int) (*models.NearbyResponse, error) {
	q := "property_id=" + url.QueryEscape(homeID) +
		"&bedrooms_min=" + strconv.Itoa(minBeds) +
		"&bedrooms_max=" + strconv.Itoa(maxBeds) +
		"&limit=" + strconv.Itoa(nearbyLimit)

	var resp models.NearbyResponse
	if err := c.getJSON(ctx, c.apiBase+nearbyPath+"?"+q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// formatNearby renders each card as "address ;; date ;; price ;; url",
// one card per CRLF-separated line.
func (c *Client) formatNearby(cards []models.NearbyCard) string {
	lines := make([]string, 0, len(cards))
	for _, card := range cards {
		var address string
		if card.PropertyDetails != nil {
			address = card.PropertyDetails.DisplayAddress
		}
		date, _, _ := strings.Cut(card.Date, "T")
		lines = append(lines, joinNonEmpty(" ;; ", address, date, card.DisplayPrice, c.siteURL(card.URL)))
	}
	return strings.Join(lines, "\r\n")
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
