package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/taroverse/engagebot/internal/model"
)

var _ model.ActionStore = (*ActionRepository)(nil)

type ActionRepository struct {
	db *Connection
}

func NewActionRepository(db *Connection) *ActionRepository {
	return &ActionRepository{
		db: db,
	}
}

func (r *ActionRepository) Append(ctx context.Context, action model.Action) error {
	query := `INSERT INTO actions (id, telegram_id, username, name, source, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		action.ID, action.TelegramID, action.Username, action.Name, action.Source, action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append action: %w", err)
	}

	return nil
}

func (r *ActionRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	query := `SELECT count(*) FROM actions WHERE created_at >= $1`

	err := r.db.QueryRow(ctx, query, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}

	return count, nil
}
