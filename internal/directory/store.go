package directory

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/easyrail/easyrail_core/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the directory tables
const Schema = `
CREATE TABLE IF NOT EXISTS station (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	city TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS train (
	number TEXT PRIMARY KEY,
	name   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_log (
	id           BIGSERIAL PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL,
	message      TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);
`

const batchSize = 1000

// Store serves directory searches from Postgres
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates missing tables
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// likePattern escapes q for use inside ILIKE '%q%'
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

// SearchStations matches q against name, code and city. An exact code match
// comes first.
func (s *Store) SearchStations(ctx context.Context, q string, limit int) ([]models.Station, error) {
	if strings.TrimSpace(q) == "" {
		return []models.Station{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT code, name, city
		FROM station
		WHERE name ILIKE $1 OR code ILIKE $1 OR city ILIKE $1
		ORDER BY CASE WHEN code = $2 THEN 0 ELSE 1 END, name
		LIMIT $3
	`, likePattern(q), strings.ToUpper(strings.TrimSpace(q)), limit)
	if err != nil {
		return nil, fmt.Errorf("station search failed: %w", err)
	}
	defer rows.Close()

	stations := []models.Station{}
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.Code, &st.Name, &st.City); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// SuggestTrains matches q against train name and number
func (s *Store) SuggestTrains(ctx context.Context, q string, limit int) ([]models.TrainSuggestion, error) {
	if strings.TrimSpace(q) == "" {
		return []models.TrainSuggestion{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT number, name
		FROM train
		WHERE name ILIKE $1 OR number LIKE $1
		ORDER BY CASE WHEN number = $2 THEN 0 ELSE 1 END, number
		LIMIT $3
	`, likePattern(q), strings.TrimSpace(q), limit)
	if err != nil {
		return nil, fmt.Errorf("train search failed: %w", err)
	}
	defer rows.Close()

	trains := []models.TrainSuggestion{}
	for rows.Next() {
		var t models.TrainSuggestion
		if err := rows.Scan(&t.Number, &t.Name); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}
		trains = append(trains, t)
	}
	return trains, rows.Err()
}

// ImportStations upserts stations inside tx
func ImportStations(ctx context.Context, tx pgx.Tx, stations []models.Station) error {
	batch := &pgx.Batch{}
	for _, st := range stations {
		batch.Queue(`
			INSERT INTO station (code, name, city)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE
			SET name = EXCLUDED.name,
			    city = EXCLUDED.city
		`, st.Code, st.Name, st.City)

		if batch.Len() >= batchSize {
			if err := sendBatch(ctx, tx, batch); err != nil {
				return fmt.Errorf("failed to insert stations: %w", err)
			}
			batch = &pgx.Batch{}
		}
	}

	if err := sendBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("failed to insert stations: %w", err)
	}

	log.Printf("Imported %d stations", len(stations))
	return nil
}

// ImportTrains upserts trains inside tx
func ImportTrains(ctx context.Context, tx pgx.Tx, trains []models.TrainSuggestion) error {
	batch := &pgx.Batch{}
	for _, t := range trains {
		batch.Queue(`
			INSERT INTO train (number, name)
			VALUES ($1, $2)
			ON CONFLICT (number) DO UPDATE
			SET name = EXCLUDED.name
		`, t.Number, t.Name)

		if batch.Len() >= batchSize {
			if err := sendBatch(ctx, tx, batch); err != nil {
				return fmt.Errorf("failed to insert trains: %w", err)
			}
			batch = &pgx.Batch{}
		}
	}

	if err := sendBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("failed to insert trains: %w", err)
	}

	log.Printf("Imported %d trains", len(trains))
	return nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}
