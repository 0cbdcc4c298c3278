package models

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Params is an ordered query parameter set. Keys keep the position of their
// first insertion; Set on an existing key overwrites the value in place.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Get returns the value for key and whether it is present.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Set stores value under key, overwriting any previous value.
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Merge adds value under key, comma-joining it onto an existing value.
func (p *Params) Merge(key, value string) {
	if prev, ok := p.values[key]; ok {
		p.values[key] = prev + "," + value
		return
	}
	p.Set(key, value)
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len reports the number of parameters.
func (p *Params) Len() int { return len(p.keys) }

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := NewParams()
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}

// Encode renders the set as a query string in insertion order. Values are
// taken as they appeared in the source URL, so they are unescaped once
// before being escaped again.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(unescape(k)))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(unescape(p.values[k])))
	}
	return b.String()
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// SearchQuery is the API form of one search-results page URL.
type SearchQuery struct {
	CanonicalPath string
	Params        *Params
}

// ListingStub is one raw item from the search API's List array.
type ListingStub map[string]json.RawMessage

// ListingID returns the listing id as text, or "" when absent, null, zero or empty.
func (s ListingStub) ListingID() string {
	raw, ok := s["ListingId"]
	if !ok {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch id := v.(type) {
	case json.Number:
		if f, err := id.Float64(); err == nil && f == 0 {
			return ""
		}
		return id.String()
	case string:
		return id
	}
	return ""
}

// String returns a top-level string field, or "" when missing or not a string.
func (s ListingStub) String(key string) string {
	raw, ok := s[key]
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

// PublishedDateToken returns the Date of the first PropertySearchListingsTag entry.
func (s ListingStub) PublishedDateToken() string {
	raw, ok := s["PropertySearchListingsTag"]
	if !ok {
		return ""
	}
	var tags []struct {
		Date string `json:"Date"`
	}
	if err := json.Unmarshal(raw, &tags); err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].Date
}

// SearchResponse is the body of the residential search endpoint.
type SearchResponse struct {
	TotalCount int           `json:"TotalCount"`
	List       []ListingStub `json:"List"`
}

// Attribute is a Name/Value pair from a listing's attribute lists.
type Attribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// ListingDetail is the body of the per-listing detail endpoint.
type ListingDetail struct {
	Body               string      `json:"Body"`
	Attributes         []Attribute `json:"Attributes"`
	PropertyAttributes []Attribute `json:"PropertyAttributes"`
}

// EstimatesResponse is the body of the valuation estimates endpoint.
type EstimatesResponse struct {
	PropertyEstimates *struct {
		EstimatedMarketPriceRangeDisplay string `json:"EstimatedMarketPriceRangeDisplay"`
	} `json:"PropertyEstimates"`
	RentEstimates *struct {
		EstimatedPricePerWeekRangeDisplay string `json:"EstimatedPricePerWeekRangeDisplay"`
	} `json:"RentEstimates"`
}

// NearbyCard is one comparable property returned by the nearby endpoint.
type NearbyCard struct {
	PropertyDetails *struct {
		DisplayAddress string `json:"DisplayAddress"`
	} `json:"PropertyDetails"`
	Date         string `json:"Date"`
	DisplayPrice string `json:"DisplayPrice"`
	URL          string `json:"Url"`
}

// NearbyResponse is the body of the nearby homes endpoint.
type NearbyResponse struct {
	Cards []NearbyCard `json:"Cards"`
}
