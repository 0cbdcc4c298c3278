package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"trademe-scraper/models"
	"trademe-scraper/utils"
)

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate summarises the per-URL results of one run.
func (s *ReportService) Generate(runID string, results []models.URLResult) *models.RunReport {
	report := &models.RunReport{
		RunID:            runID,
		ListingsByRegion: make(map[string]int),
		RecordsByFile:    make(map[string]int),
	}

	for _, r := range results {
		report.URLsProcessed++
		if !r.OK() {
			report.URLsFailed++
			report.Failures = append(report.Failures, models.Failure{URL: r.URL, Reason: r.Err.Error()})
			continue
		}
		if len(r.Records) == 0 {
			report.URLsEmpty++
			continue
		}
		report.URLsSucceeded++
		report.ListingsSaved += len(r.Records)
		report.RecordsByFile[r.Filename] += len(r.Records)
		for _, rec := range r.Records {
			region := rec.Region
			if region == "" {
				region = "(unknown)"
			}
			report.ListingsByRegion[region]++
		}
	}

	s.logger.Debug("[report] %d URLs, %d listings saved, %d failures",
		report.URLsProcessed, report.ListingsSaved, report.URLsFailed)
	return report
}

func (s *ReportService) Print(w io.Writer, r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  TRADE ME SCRAPE SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Run id          : %s\n", r.RunID)
	fmt.Fprintf(w, "  URLs processed  : \033[1m%d\033[0m\n", r.URLsProcessed)
	fmt.Fprintf(w, "  Succeeded       : \033[1;32m%d\033[0m\n", r.URLsSucceeded)
	fmt.Fprintf(w, "  No listings     : \033[1m%d\033[0m\n", r.URLsEmpty)
	fmt.Fprintf(w, "  Failed          : \033[1;31m%d\033[0m\n", r.URLsFailed)
	fmt.Fprintf(w, "  Listings saved  : \033[1m%d\033[0m\n", r.ListingsSaved)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Output Files\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.RecordsByFile) == 0 {
		fmt.Fprintf(w, "  Nothing written\n")
	} else {
		for _, kc := range sortedCounts(r.RecordsByFile) {
			fmt.Fprintf(w, "  %-30s %d\n", truncate(kc.key, 28), kc.count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Region\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByRegion) == 0 {
		fmt.Fprintf(w, "  No region data\n")
	} else {
		for _, kc := range sortedCounts(r.ListingsByRegion) {
			bar := strings.Repeat("█", min(kc.count, 40))
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(kc.key, 28), bar, kc.count)
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "\033[1;33m  Failures\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		for i, f := range r.Failures {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %s\n     \033[31m%s\033[0m\n", i+1, f.URL, truncate(f.Reason, 120))
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders by count descending, then key.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
