package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// ConnectPostgres opens the PostgreSQL pool and pings it.
func ConnectPostgres(ctx context.Context, postgresURI string, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	log.Info().Msg("connected to PostgreSQL")
	return db, nil
}

// Schema holds the tables for per-user settings and profiles. Journal entries
// live in MongoDB.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT PRIMARY KEY,
		theme VARCHAR(16) NOT NULL DEFAULT 'system',
		notifications BOOLEAN NOT NULL DEFAULT TRUE,
		privacy VARCHAR(16) NOT NULL DEFAULT 'private',
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id TEXT PRIMARY KEY,
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_user_profiles_updated_at ON user_profiles(updated_at)`,
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	for _, query := range Schema {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("init tables: %w", err)
		}
	}
	log.Info().Msg("PostgreSQL tables initialized")
	return nil
}
