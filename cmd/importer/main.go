package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/easyrail/easyrail_core/internal/db"
	"github.com/easyrail/easyrail_core/internal/directory"
	"github.com/easyrail/easyrail_core/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// Command-line flags
	stationsPath := flag.String("stations", "", "Path to the stations JSON file")
	trainsPath := flag.String("trains", "", "Path to the trains JSON file")
	initSchema := flag.Bool("init-schema", false, "Create missing directory tables before importing")
	databaseURL := flag.String("database-url", "", "Postgres URL (default: $DATABASE_URL or the DB_* variables)")

	flag.Parse()

	if *stationsPath == "" && *trainsPath == "" {
		fmt.Println("Usage: easyrail-import [--stations=<stations.json>] [--trains=<trains.json>] [--init-schema] [--database-url=<url>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	for _, path := range []string{*stationsPath, *trainsPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Fatalf("Directory file not found: %s", path)
		}
	}

	log.Println("Starting directory import...")

	ctx := context.Background()

	dbConfig := db.LoadConfigFromEnv()
	if *databaseURL != "" {
		dbConfig.URL = *databaseURL
	}
	pool, err := db.Open(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if *initSchema {
		if err := directory.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("✓ Schema ready")
	}

	source := importSource(*stationsPath, *trainsPath)
	importLogID, err := createImportLog(ctx, pool, source)
	if err != nil {
		log.Fatalf("Failed to create import log: %v", err)
	}

	if err := runImport(ctx, pool, *stationsPath, *trainsPath, importLogID); err != nil {
		if logErr := updateImportLog(ctx, pool, importLogID, "failed", err.Error()); logErr != nil {
			log.Printf("Warning: failed to update import log: %v", logErr)
		}
		log.Fatalf("Import failed: %v", err)
	}

	if err := db.CheckDirectory(ctx, pool); err != nil {
		log.Fatalf("Directory check failed after import: %v", err)
	}
	log.Println("Import completed successfully!")
}

func runImport(ctx context.Context, pool *pgxpool.Pool, stationsPath, trainsPath string, logID int64) error {
	startTime := time.Now()

	log.Println("Step 1/3: Parsing directory files...")
	var stations []models.Station
	var trains []models.TrainSuggestion
	var err error

	if stationsPath != "" {
		if stations, err = directory.ParseStationsFile(stationsPath); err != nil {
			return err
		}
	}
	if trainsPath != "" {
		if trains, err = directory.ParseTrainsFile(trainsPath); err != nil {
			return err
		}
	}

	log.Println("Step 2/3: Validating and deduplicating entries...")
	parsedStations, parsedTrains := len(stations), len(trains)
	stations = directory.NormalizeStations(stations)
	trains = directory.NormalizeTrains(trains)
	if dropped := parsedStations - len(stations); dropped > 0 {
		log.Printf("Warning: dropped %d invalid or duplicate stations", dropped)
	}
	if dropped := parsedTrains - len(trains); dropped > 0 {
		log.Printf("Warning: dropped %d invalid or duplicate trains", dropped)
	}

	log.Println("Step 3/3: Importing to database...")
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := directory.ImportStations(ctx, tx, stations); err != nil {
		return err
	}
	if err := directory.ImportTrains(ctx, tx, trains); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Import completed in %s", time.Since(startTime))

	message := fmt.Sprintf("Imported %d stations, %d trains", len(stations), len(trains))
	return updateImportLog(ctx, pool, logID, "success", message)
}

// importSource names the files of a run for the import log
func importSource(paths ...string) string {
	var names []string
	for _, p := range paths {
		if p != "" {
			names = append(names, p)
		}
	}
	return strings.Join(names, ",")
}

func createImportLog(ctx context.Context, pool *pgxpool.Pool, source string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO import_log (source, status)
		VALUES ($1, 'running')
		RETURNING id
	`, source).Scan(&id)

	return id, err
}

func updateImportLog(ctx context.Context, pool *pgxpool.Pool, id int64, status, message string) error {
	_, err := pool.Exec(ctx, `
		UPDATE import_log
		SET completed_at = NOW(),
		    status = $2,
		    message = $3
		WHERE id = $1
	`, id, status, message)

	return err
}
