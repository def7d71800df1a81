package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// Open connects to a libsql database. Remote URLs (libsql://, https://)
// carry the auth token as a query parameter; file: URLs open a local
// database and ignore the token.
func Open(databaseURL, authToken string) (*sql.DB, error) {
	return OpenWithOptions(databaseURL, authToken, true)
}

func OpenWithOptions(databaseURL, authToken string, ping bool) (*sql.DB, error) {
	connStr, err := connectionString(databaseURL, authToken)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if IsLocal(databaseURL) {
		db.SetMaxOpenConns(1)
	} else {
		// Turso closes idle streams aggressively; stale idle connections
		// fail with "stream not found".
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
	}

	if ping {
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	return db, nil
}

// IsLocal reports whether databaseURL points at a local file.
func IsLocal(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "file:")
}

func connectionString(databaseURL, authToken string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("database URL is required")
	}
	if IsLocal(databaseURL) || authToken == "" {
		return databaseURL, nil
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	q := u.Query()
	q.Set("authToken", authToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
