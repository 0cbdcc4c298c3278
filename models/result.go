package models

import "time"

// URLResult is the outcome of processing one input search URL.
// Err is set when the fetch, enrichment or any sink failed.
type URLResult struct {
	URL      string
	Filename string
	Records  []ListingRecord
	Err      error
	Duration time.Duration
}

// OK reports whether the URL was processed without error.
func (r URLResult) OK() bool { return r.Err == nil }

// Failure is a failed URL with its reason, as shown in the run report.
type Failure struct {
	URL    string
	Reason string
}

// RunReport summarises one run over the input URL list.
type RunReport struct {
	RunID            string
	URLsProcessed    int
	URLsSucceeded    int
	URLsEmpty        int
	URLsFailed       int
	ListingsSaved    int
	ListingsByRegion map[string]int
	RecordsByFile    map[string]int
	Failures         []Failure
}
