// Package db owns the Postgres pool that backs the station and train directory.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// port of the transaction-mode pooler, which rejects named prepared statements
const poolerPort = 6543

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// Config describes how to reach the directory database. URL, when set, wins
// over the individual fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MinConns int32
	MaxConns int32
}

// LoadConfigFromEnv reads DATABASE_URL or the DB_* variables
func LoadConfigFromEnv() *Config {
	return &Config{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     envInt("DB_PORT", 5432),
		Database: getEnv("DB_NAME", "easyrail"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		MinConns: int32(envInt("DB_MIN_CONNS", 5)),
		MaxConns: int32(envInt("DB_MAX_CONNS", 20)),
	}
}

// ConnString renders the URL or a keyword/value connection string
func (c *Config) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	// an empty keyword value would swallow the next pair
	s := fmt.Sprintf("host=%s port=%d dbname=%s user=%s", c.Host, c.Port, c.Database, c.User)
	if c.Password != "" {
		s += " password=" + c.Password
	}
	if c.SSLMode != "" {
		s += " sslmode=" + c.SSLMode
	}
	return s
}

// PoolConfig parses the connection string and applies the pool limits
func (c *Config) PoolConfig() (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(c.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	if c.MinConns > 0 {
		poolConfig.MinConns = c.MinConns
	}
	if c.MaxConns > 0 {
		poolConfig.MaxConns = c.MaxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	if poolConfig.ConnConfig.Port == poolerPort {
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return poolConfig, nil
}

// Open connects a new pool and pings it
func Open(ctx context.Context, c *Config) (*pgxpool.Pool, error) {
	poolConfig, err := c.PoolConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return p, nil
}

// GetDB returns the shared pool, opened on first use from the environment
func GetDB() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		pool, poolErr = Open(context.Background(), LoadConfigFromEnv())
	})
	return pool, poolErr
}

// Close closes the shared pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// HealthCheck verifies the pool answers and the directory has been imported
func HealthCheck(ctx context.Context) error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("database connection not initialized: %w", err)
	}
	return CheckDirectory(ctx, db)
}

// CheckDirectory pings p and looks for the station table
func CheckDirectory(ctx context.Context, p *pgxpool.Pool) error {
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var table *string
	if err := p.QueryRow(ctx, "SELECT to_regclass('public.station')::text").Scan(&table); err != nil {
		return fmt.Errorf("failed to check station table: %w", err)
	}
	if table == nil {
		return errors.New("station table missing, run the importer")
	}
	return nil
}

// PoolStats returns counters of the shared pool
func PoolStats() map[string]interface{} {
	if pool == nil {
		return map[string]interface{}{}
	}
	stat := pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"idle_conns":     stat.IdleConns(),
		"acquired_conns": stat.AcquiredConns(),
		"max_conns":      stat.MaxConns(),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}
