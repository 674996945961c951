// Package dbconn opens the Postgres connection pool used throughout the
// service, in the style of the teacher pack's database setup helpers
// (e.g. KuanyshMaral-mwork-backend's internal/pkg/database).
package dbconn

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to databaseURL via the pgx stdlib driver and sizes the
// pool according to minSize/maxSize (spec's MIN_POOL_SIZE/MAX_POOL_SIZE).
func Open(databaseURL string, minSize, maxSize int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("dbconn: connect: %w", err)
	}

	db.SetMaxOpenConns(maxSize)
	db.SetMaxIdleConns(minSize)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbconn: ping: %w", err)
	}
	return db, nil
}

// Close releases the pool and returns any error from doing so; it logs
// nothing itself. A nil pool is a no-op.
func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
