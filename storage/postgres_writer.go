package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"trademe-scraper/models"
)

// recordColumns are the listing_records columns holding the 18 output fields,
// in models.Columns order.
var recordColumns = []string{
	"listing_date", "property_title", "property_address",
	"bedrooms", "bathrooms", "area", "capital_value", "property_url",
	"estimated_market_price", "estimated_weekly_rent", "display_price",
	"geographic_location", "address", "suburb", "district", "region",
	"description", "nearby_properties",
}

// PostgresWriter appends listing records to PostgreSQL, tagging each row with
// the run id and the output name it was produced for.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn, runID string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	var cols strings.Builder
	for _, c := range recordColumns {
		cols.WriteString("\t\t\t" + c + " TEXT NOT NULL DEFAULT '',\n")
	}
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listing_records (
			id          BIGSERIAL PRIMARY KEY,
			run_id      UUID        NOT NULL,
			source_name TEXT        NOT NULL,
` + cols.String() + `
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listing_records_run    ON listing_records(run_id);
		CREATE INDEX IF NOT EXISTS idx_listing_records_source ON listing_records(source_name);
		CREATE INDEX IF NOT EXISTS idx_listing_records_region ON listing_records(region);
	`)
	return err
}

// Append batch-inserts records under source name. Existing rows are kept.
func (pw *PostgresWriter) Append(name string, records []models.ListingRecord) error {
	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.insertBatch(name, records[i:end]); err != nil {
			return fmt.Errorf("postgres: insert %s: %w", name, err)
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(name string, batch []models.ListingRecord) error {
	query, args := buildInsert(pw.runID, name, batch)
	_, err := pw.db.Exec(query, args...)
	return err
}

// buildInsert renders a multi-row INSERT for batch and its positional args.
func buildInsert(runID, name string, batch []models.ListingRecord) (string, []interface{}) {
	perRow := len(recordColumns) + 2
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*perRow)

	for idx, r := range batch {
		base := idx * perRow
		placeholders := make([]string, perRow)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		valueArgs = append(valueArgs, runID, name)
		for _, cell := range r.Row() {
			valueArgs = append(valueArgs, cell)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO listing_records (run_id, source_name, %s)
		VALUES %s
	`, strings.Join(recordColumns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

// CountRun returns how many rows this writer's run has stored.
func (pw *PostgresWriter) CountRun() (int, error) {
	var n int
	if err := pw.db.QueryRow(`SELECT COUNT(*) FROM listing_records WHERE run_id = $1`, pw.runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count run: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
