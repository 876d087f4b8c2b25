package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Irisfrogy/data-visulization/models"
	"github.com/Irisfrogy/data-visulization/utils"
)

const listingColumns = "price, neighbourhood_group, room_type, minimum_nights, " +
	"number_of_reviews, latitude, longitude, neighbourhood"

var schemas = map[string]string{
	"postgres": `
		CREATE TABLE IF NOT EXISTS listings (
			id                  SERIAL PRIMARY KEY,
			price               DOUBLE PRECISION NOT NULL,
			neighbourhood_group TEXT             NOT NULL,
			room_type           TEXT             NOT NULL,
			minimum_nights      INTEGER          NOT NULL,
			number_of_reviews   INTEGER          NOT NULL DEFAULT 0,
			latitude            DOUBLE PRECISION,
			longitude           DOUBLE PRECISION,
			neighbourhood       TEXT             NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_group ON listings(neighbourhood_group);
		CREATE INDEX IF NOT EXISTS idx_listings_room  ON listings(room_type);
	`,
	"sqlite3": `
		CREATE TABLE IF NOT EXISTS listings (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			price               REAL    NOT NULL,
			neighbourhood_group TEXT    NOT NULL,
			room_type           TEXT    NOT NULL,
			minimum_nights      INTEGER NOT NULL,
			number_of_reviews   INTEGER NOT NULL DEFAULT 0,
			latitude            REAL,
			longitude           REAL,
			neighbourhood       TEXT    NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_group ON listings(neighbourhood_group);
		CREATE INDEX IF NOT EXISTS idx_listings_room  ON listings(room_type);
	`,
}

var (
	_ ListingWriter = (*SQLStore)(nil)
	_ ListingReader = (*SQLStore)(nil)
)

// SQLStore mirrors the listing snapshot into a SQL table and reads it back.
// Supported drivers are "postgres" and "sqlite3".
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore opens a connection, waits for the database to answer, runs
// schema migrations and returns a ready-to-use SQLStore.
func NewSQLStore(ctx context.Context, driver, dsn string, retry *utils.RetryConfig) (*SQLStore, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("sql: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open: %w", err)
	}
	if driver == "sqlite3" {
		// every new connection to an in-memory database would see an empty one
		db.SetMaxOpenConns(1)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	err = retry.Do(ctx, driver+"-ping", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: migrate: %w", err)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// Driver returns the database/sql driver name.
func (s *SQLStore) Driver() string { return s.driver }

// Clear deletes all existing listings from the table.
func (s *SQLStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM listings"); err != nil {
		return fmt.Errorf("sql: clear: %w", err)
	}
	return nil
}

// Write replaces the stored snapshot with listings in a single transaction.
func (s *SQLStore) Write(listings []*models.Listing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sql: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM listings"); err != nil {
		return fmt.Errorf("sql: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := s.insertBatch(tx, listings[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql: commit: %w", err)
	}
	return nil
}

func (s *SQLStore) insertBatch(tx *sql.Tx, batch []*models.Listing) error {
	const perRow = 8
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*perRow)

	for idx, l := range batch {
		holders := make([]string, perRow)
		for j := range holders {
			holders[j] = s.placeholder(idx*perRow + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")
		valueArgs = append(valueArgs,
			l.Price, l.NeighbourhoodGroup, l.RoomType, l.MinimumNights,
			l.NumberOfReviews, l.Latitude, l.Longitude, l.Neighbourhood)
	}

	query := fmt.Sprintf("INSERT INTO listings (%s) VALUES %s",
		listingColumns, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("sql: insert batch: %w", err)
	}
	return nil
}

func (s *SQLStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Count returns the number of stored listings.
func (s *SQLStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&n); err != nil {
		return 0, fmt.Errorf("sql: count: %w", err)
	}
	return n, nil
}

// FetchAll retrieves all stored listings in insertion order.
func (s *SQLStore) FetchAll() ([]*models.Listing, error) {
	rows, err := s.db.Query("SELECT " + listingColumns + " FROM listings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("sql: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var lat, lon sql.NullFloat64
		if err := rows.Scan(
			&l.Price, &l.NeighbourhoodGroup, &l.RoomType, &l.MinimumNights,
			&l.NumberOfReviews, &lat, &lon, &l.Neighbourhood,
		); err != nil {
			return nil, fmt.Errorf("sql: scan row: %w", err)
		}
		if lat.Valid {
			l.Latitude = &lat.Float64
		}
		if lon.Valid {
			l.Longitude = &lon.Float64
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
