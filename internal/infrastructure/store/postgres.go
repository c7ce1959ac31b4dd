package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/vicino/backend/internal/domain"
)

// PostgresVenueStore is the boundary adapter to the external relational
// store. It only implements the upsert/fetch contract the discovery
// pipeline needs; everything else about venue persistence belongs to the
// owning service.
type PostgresVenueStore struct {
	db *sql.DB
}

// NewPostgresVenueStore opens a connection, waits for the database to come
// up, and ensures the venues table exists.
func NewPostgresVenueStore(dsn string) (*PostgresVenueStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresVenueStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return s, nil
}

func (s *PostgresVenueStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS venues (
			provider_id    TEXT         PRIMARY KEY,
			name           TEXT         NOT NULL,
			address        TEXT         NOT NULL DEFAULT '',
			latitude       DOUBLE PRECISION NOT NULL,
			longitude      DOUBLE PRECISION NOT NULL,
			category       VARCHAR(20)  NOT NULL,
			rating         NUMERIC(3,1),
			rating_count   INTEGER,
			price_level    SMALLINT,
			schedule       JSONB,
			photos         JSONB,
			last_refreshed TIMESTAMPTZ  NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_venues_category ON venues(category);
	`)
	return err
}

// Upsert inserts or replaces a venue keyed by provider id.
func (s *PostgresVenueStore) Upsert(ctx context.Context, venue *domain.Venue) error {
	if venue == nil || venue.ProviderID == "" {
		return domain.ErrInvalidInput
	}

	scheduleJSON, err := json.Marshal(venue.Schedule)
	if err != nil {
		return fmt.Errorf("postgres: marshal schedule: %w", err)
	}
	photosJSON, err := json.Marshal(venue.Photos)
	if err != nil {
		return fmt.Errorf("postgres: marshal photos: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO venues (
			provider_id, name, address, latitude, longitude, category,
			rating, rating_count, price_level, schedule, photos, last_refreshed
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (provider_id) DO UPDATE SET
			name           = EXCLUDED.name,
			address        = EXCLUDED.address,
			latitude       = EXCLUDED.latitude,
			longitude      = EXCLUDED.longitude,
			category       = EXCLUDED.category,
			rating         = EXCLUDED.rating,
			rating_count   = EXCLUDED.rating_count,
			price_level    = EXCLUDED.price_level,
			schedule       = EXCLUDED.schedule,
			photos         = EXCLUDED.photos,
			last_refreshed = EXCLUDED.last_refreshed
	`,
		venue.ProviderID, venue.Name, venue.Address, venue.Latitude, venue.Longitude,
		string(venue.Category), venue.Rating, venue.RatingCount, venue.PriceLevel,
		scheduleJSON, photosJSON, venue.LastRefreshed,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert venue %s: %w", venue.ProviderID, err)
	}
	return nil
}

// GetByProviderID returns the stored venue or ErrNotFound.
func (s *PostgresVenueStore) GetByProviderID(ctx context.Context, providerID string) (*domain.Venue, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT provider_id, name, address, latitude, longitude, category,
		       rating, rating_count, price_level, schedule, photos, last_refreshed
		FROM venues
		WHERE provider_id = $1
	`, providerID)

	var (
		venue        domain.Venue
		category     string
		scheduleJSON []byte
		photosJSON   []byte
	)
	err := row.Scan(
		&venue.ProviderID, &venue.Name, &venue.Address, &venue.Latitude, &venue.Longitude,
		&category, &venue.Rating, &venue.RatingCount, &venue.PriceLevel,
		&scheduleJSON, &photosJSON, &venue.LastRefreshed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get venue %s: %w", providerID, err)
	}

	venue.Category = domain.Category(category)
	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &venue.Schedule); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal schedule: %w", err)
		}
	}
	if len(photosJSON) > 0 {
		if err := json.Unmarshal(photosJSON, &venue.Photos); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal photos: %w", err)
		}
	}

	return &venue, nil
}

// Close releases the underlying connection pool.
func (s *PostgresVenueStore) Close() error {
	return s.db.Close()
}
