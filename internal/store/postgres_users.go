package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
)

// PostgresUserStore keeps settings and profile rows in PostgreSQL, one row per user.
type PostgresUserStore struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresUserStore) GetSettings(ctx context.Context, userID string) (models.UserSettings, error) {
	query, args, err := s.psql.
		Select("theme", "notifications", "privacy").
		From("user_settings").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return models.UserSettings{}, err
	}

	var (
		out     models.UserSettings
		theme   string
		privacy string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&theme, &out.Notifications, &privacy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserSettings{}, ErrNotFound
	}
	if err != nil {
		return models.UserSettings{}, err
	}
	out.Theme = models.Theme(theme)
	out.Privacy = models.Privacy(privacy)
	return out, nil
}

func (s *PostgresUserStore) SaveSettings(ctx context.Context, userID string, settings models.UserSettings) error {
	query, args, err := s.psql.
		Insert("user_settings").
		Columns("user_id", "theme", "notifications", "privacy", "updated_at").
		Values(userID, string(settings.Theme), settings.Notifications, string(settings.Privacy), time.Now().UTC()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			theme = EXCLUDED.theme,
			notifications = EXCLUDED.notifications,
			privacy = EXCLUDED.privacy,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *PostgresUserStore) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	query, args, err := s.psql.
		Select("display_name", "photo_url", "updated_at").
		From("user_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return models.UserProfile{}, err
	}

	var out models.UserProfile
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&out.DisplayName, &out.PhotoURL, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	return out, nil
}

func (s *PostgresUserStore) SaveProfile(ctx context.Context, userID string, p models.UserProfile) error {
	query, args, err := s.psql.
		Insert("user_profiles").
		Columns("user_id", "display_name", "photo_url", "updated_at").
		Values(userID, p.DisplayName, p.PhotoURL, p.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			photo_url = EXCLUDED.photo_url,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
