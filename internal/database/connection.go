package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/smarttransit/subway-routing/internal/config"
)

const applicationName = "subway-routing"

// DB is the part of *sqlx.DB used by the search log store and health check
type DB interface {
	Select(dest interface{}, query string, args ...interface{}) error
	Exec(query string, args ...interface{}) (sql.Result, error)
	Ping() error
	Close() error
}

// PostgresDB implements DB with a sqlx connection pool
type PostgresDB struct {
	*sqlx.DB
}

// NewConnection opens the analytics database and checks that it answers
// within cfg.ConnectTimeout. The pool only serves one insert per path query
// and the popular-searches read, so cfg.MaxConnections is usually small.
func NewConnection(cfg config.DatabaseConfig) (DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	dsn, err := connectionURL(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(min(cfg.MaxIdleConnections, cfg.MaxConnections))
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// connectionURL validates the database URL and fills in the lib/pq
// parameters it leaves unset
func connectionURL(cfg config.DatabaseConfig) (string, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid database URL: unsupported scheme %q", parsed.Scheme)
	}

	query := parsed.Query()
	if query.Get("application_name") == "" {
		query.Set("application_name", applicationName)
	}
	// lib/pq takes whole seconds
	if seconds := int(cfg.ConnectTimeout.Seconds()); query.Get("connect_timeout") == "" && seconds > 0 {
		query.Set("connect_timeout", strconv.Itoa(seconds))
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
