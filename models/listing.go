package models

// Columns is the fixed output schema. Every sink writes rows positionally in
// this order, so the order must never change.
var Columns = []string{
	"Listing Date", "Property Title", "Property Address",
	"Bedrooms", "Bathrooms", "Area", "Capital Value", "Property URL",
	"Estimated Market Price", "Estimated Weekly Rent", "Display Price",
	"Geographic Location", "Address", "Suburb", "District", "Region",
	"Description", "Nearby Properties",
}

// ListingRecord is one enriched listing, ready to be appended to an output sink.
// Absent data is always the empty string.
type ListingRecord struct {
	ListingDate          string
	PropertyTitle        string
	PropertyAddress      string
	Bedrooms             string
	Bathrooms            string
	Area                 string
	CapitalValue         string
	PropertyURL          string
	EstimatedMarketPrice string
	EstimatedWeeklyRent  string
	DisplayPrice         string
	GeographicLocation   string
	Address              string
	Suburb               string
	District             string
	Region               string
	Description          string
	NearbyProperties     string
}

// fields returns pointers to the record fields in column order.
func (r *ListingRecord) fields() []*string {
	return []*string{
		&r.ListingDate, &r.PropertyTitle, &r.PropertyAddress,
		&r.Bedrooms, &r.Bathrooms, &r.Area, &r.CapitalValue, &r.PropertyURL,
		&r.EstimatedMarketPrice, &r.EstimatedWeeklyRent, &r.DisplayPrice,
		&r.GeographicLocation, &r.Address, &r.Suburb, &r.District, &r.Region,
		&r.Description, &r.NearbyProperties,
	}
}

// Row returns the record as a row matching Columns.
func (r ListingRecord) Row() []string {
	fields := r.fields()
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = *f
	}
	return row
}

// RecordFromRow builds a record from a positional row. Short rows leave the
// trailing columns empty; extra cells are ignored.
func RecordFromRow(row []string) ListingRecord {
	var r ListingRecord
	for i, f := range r.fields() {
		if i < len(row) {
			*f = row[i]
		}
	}
	return r
}

// RecordFromStub coerces an unenriched search stub into the output schema.
// Stub keys that happen to match a column name are kept; everything else is
// dropped and the remaining columns stay empty.
func RecordFromStub(stub ListingStub) ListingRecord {
	row := make([]string, len(Columns))
	for i, col := range Columns {
		if raw, ok := stub[col]; ok {
			row[i] = FormatValue(raw)
		}
	}
	return RecordFromRow(row)
}
