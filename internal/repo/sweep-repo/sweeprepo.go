package sweeprepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Load returns the stored cursor, or 0 when none was saved yet.
func (r *Repository) Load(ctx context.Context, name string) (int64, error) {
	var lastSeenID int64
	err := r.db.QueryRow(ctx, `SELECT last_seen_id FROM sweep_cursors WHERE name = $1`, name).Scan(&lastSeenID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		zap.L().Error("failed to load sweep cursor", zap.String("name", name), zap.Error(err))
		return 0, err
	}
	return lastSeenID, nil
}

func (r *Repository) Save(ctx context.Context, name string, lastSeenID int64) error {
	query := `
		INSERT INTO sweep_cursors (name, last_seen_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET last_seen_id = EXCLUDED.last_seen_id, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, name, lastSeenID); err != nil {
		zap.L().Error("failed to save sweep cursor", zap.String("name", name), zap.Error(err))
		return err
	}
	return nil
}
