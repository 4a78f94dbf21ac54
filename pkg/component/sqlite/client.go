// Package sqlite provides a SQLite database client built on GORM.
// It uses the pure-Go glebarez driver, so it works without CGO.
// Intended for local development and tests.
package sqlite

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InMemoryDSN is the DSN for a private in-memory database.
const InMemoryDSN = "file::memory:?cache=shared"

// Client wraps gorm.DB and provides a SQLite database client.
type Client struct {
	db *gorm.DB
}

// New creates a new SQLite client for the given DSN.
// Use InMemoryDSN for an in-memory database.
func New(dsn string) (*Client, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn cannot be empty")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &Client{db: db}, nil
}

// DB returns the underlying gorm.DB instance.
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Name returns the name of the storage client.
func (c *Client) Name() string {
	return "sqlite"
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for closing: %w", err)
	}
	return sqlDB.Close()
}
