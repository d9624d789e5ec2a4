package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/1F47E/gee-subset/pkg/models"
	"github.com/1F47E/gee-subset/pkg/subset"
	"github.com/lib/pq"
)

const (
	DefaultTable = "gee_subset"

	columnLongitude = "longitude"
	columnLatitude  = "latitude"
)

// PostGISSink appends result rows to a PostGIS table.
type PostGISSink struct {
	db    *sql.DB
	table string
}

// NewPostGISSink connects to dsn and makes sure the target table exists.
func NewPostGISSink(ctx context.Context, dsn, table string) (*PostGISSink, error) {
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// a run is sequential, one connection is enough
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &PostGISSink{db: db, table: table}
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the result table and its spatial index if missing.
func (s *PostGISSink) InitSchema(ctx context.Context) error {
	for _, query := range schemaQueries(s.table) {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

func schemaQueries(table string) []string {
	ident := pq.QuoteIdentifier(table)
	index := pq.QuoteIdentifier("idx_" + table + "_location")
	return []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			site TEXT NOT NULL,
			product TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			location GEOMETRY(POINT, 4326) NOT NULL,
			pad_km DOUBLE PRECISION NOT NULL,
			scale DOUBLE PRECISION NOT NULL,
			bands JSONB NOT NULL
		);`, ident),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIST(location);`, index, ident),
	}
}

func insertQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (site, product, date, location, pad_km, scale, bands)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6, $7, $8)
	`, pq.QuoteIdentifier(table))
}

// Write inserts every row of the result in a single transaction.
func (s *PostGISSink) Write(ctx context.Context, r Result) (string, error) {
	rows, err := pixelRows(r.Location, r.Table)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery(s.table))
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			r.Location.SiteID, r.Query.Product, row.date,
			row.lon, row.lat, r.Query.PadKm, r.Query.Scale, row.bands)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to insert row for %s: %w", r.Location.SiteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	return "postgis:" + s.table, nil
}

// Close closes the database connection
func (s *PostGISSink) Close() error {
	return s.db.Close()
}

type pixelRow struct {
	date  time.Time
	lon   float64
	lat   float64
	bands []byte
}

// pixelRows splits table rows into the fixed columns and a JSON object of
// the remaining fields. Rows without pixel coordinates fall back to the
// location.
func pixelRows(loc models.Location, table *subset.Table) ([]pixelRow, error) {
	dateIdx := table.ColumnIndex(subset.ColumnDate)
	if dateIdx < 0 {
		return nil, fmt.Errorf("table has no %q column", subset.ColumnDate)
	}
	lonIdx := table.ColumnIndex(columnLongitude)
	latIdx := table.ColumnIndex(columnLatitude)
	productIdx := table.ColumnIndex(subset.ColumnProduct)

	rows := make([]pixelRow, 0, table.Len())
	for n, cells := range table.Rows {
		date, ok := cells[dateIdx].(time.Time)
		if !ok {
			return nil, fmt.Errorf("row %d: date is %T", n+1, cells[dateIdx])
		}

		row := pixelRow{date: date, lon: loc.Lon, lat: loc.Lat}
		if lonIdx >= 0 && latIdx >= 0 {
			lon, lonErr := toFloat(cells[lonIdx])
			lat, latErr := toFloat(cells[latIdx])
			if lonErr == nil && latErr == nil {
				row.lon, row.lat = lon, lat
			}
		}

		bands := make(map[string]any, len(table.Columns))
		for i, name := range table.Columns {
			switch i {
			case dateIdx, lonIdx, latIdx, productIdx:
				continue
			}
			bands[name] = cells[i]
		}
		raw, err := json.Marshal(bands)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to encode bands: %w", n+1, err)
		}
		row.bands = raw

		rows = append(rows, row)
	}
	return rows, nil
}

func toFloat(v any) (float64, error) {
	switch v := v.(type) {
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
