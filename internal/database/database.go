// Package database provides connection management for the SheetSync store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver (pgx)

	"github.com/dbsmedya/sheetsync/internal/config"
	"github.com/dbsmedya/sheetsync/internal/sqlutil"
)

// Manager handles the store database connection.
type Manager struct {
	Store   *sql.DB
	Dialect sqlutil.Dialect
	config  *config.Config
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		Dialect: sqlutil.Dialect(cfg.Database.Driver),
		config:  cfg,
	}
}

// Connect establishes the store connection with bounded retry.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx, &m.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to store database: %w", err)
	}
	m.Store = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = m.connect(cfg)
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

// connect creates a database connection.
func (m *Manager) connect(cfg *config.DatabaseConfig) (*sql.DB, error) {
	driverName := "pgx"
	if m.Dialect == sqlutil.DialectMySQL {
		driverName = "mysql"
	}

	db, err := sql.Open(driverName, BuildDSN(cfg))
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a driver DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	if sqlutil.Dialect(cfg.Driver) == sqlutil.DialectMySQL {
		// Format: user:password@tcp(host:port)/database?params
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		switch cfg.TLS {
		case "disable":
			dsn += "&tls=false"
		case "required":
			dsn += "&tls=true"
		default:
			dsn += "&tls=preferred"
		}
		return dsn
	}

	// Postgres URL form, understood by the pgx stdlib driver.
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

// Close closes the store connection gracefully.
func (m *Manager) Close() error {
	if m.Store == nil {
		return nil
	}
	if err := m.Store.Close(); err != nil {
		return fmt.Errorf("store close: %w", err)
	}
	return nil
}

// Ping verifies the store connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Store == nil {
		return fmt.Errorf("store not connected")
	}
	if err := m.Store.PingContext(ctx); err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}
	return nil
}
