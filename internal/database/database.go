package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
)

// Service wraps the shared database handle. A single pool is shared by all
// request handlers; per-document consistency is delegated to Postgres.
type Service interface {
	// Health reports the current connectivity state. It never terminates
	// the process: a failed ping is reported as status "down" so the
	// health endpoint can degrade instead of crashing.
	Health() map[string]string

	// Name returns the connected database name.
	Name() string

	// DB exposes the underlying handle for repositories and migrations.
	DB() *sql.DB

	// Close terminates the connection pool.
	Close() error
}

type service struct {
	db     *sql.DB
	dbName string
}

var (
	database = os.Getenv("DB_DATABASE")
	password = os.Getenv("DB_PASSWORD")
	username = os.Getenv("DB_USER")
	port     = os.Getenv("DB_PORT")
	host     = os.Getenv("DB_HOST")
	schema   = os.Getenv("DB_SCHEMA")
)

// New opens the shared connection pool. The pool is lazy: a database that is
// unreachable at startup surfaces through Health, not as an open error.
func New() (Service, error) {
	if port == "" {
		port = "5432"
	}
	if schema == "" {
		schema = "public"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		username, password, host, port, database, schema)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &service{db: db, dbName: database}, nil
}

// NewWithDB wraps an existing handle, used by tests.
func NewWithDB(db *sql.DB, dbName string) Service {
	return &service{db: db, dbName: dbName}
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)

	return stats
}

func (s *service) Name() string {
	return s.dbName
}

func (s *service) DB() *sql.DB {
	return s.db
}

func (s *service) Close() error {
	return s.db.Close()
}
