package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taroverse/engagebot/internal/model"
)

var _ model.LedgerStore = (*LedgerRepository)(nil)

type LedgerRepository struct {
	db *Connection
}

func NewLedgerRepository(db *Connection) *LedgerRepository {
	return &LedgerRepository{
		db: db,
	}
}

// AppendContact records one arrival: the user row is created on first
// arrival and only its display fields and last context are refreshed
// afterwards. first_contact_at is never updated, so elapsed-day math is
// stable across repeated arrivals.
func (r *LedgerRepository) AppendContact(ctx context.Context, user model.User, event model.ContactEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `INSERT INTO users (telegram_id, username, first_name, segment, first_contact_at, last_context, updated_at)
			   VALUES ($1, $2, $3, $4, $5, $6, now())
			   ON CONFLICT (telegram_id) DO UPDATE
			   SET username = EXCLUDED.username,
				   first_name = EXCLUDED.first_name,
				   last_context = EXCLUDED.last_context,
				   updated_at = now()`

	_, err = tx.Exec(ctx, upsert,
		user.TelegramID, user.Username, user.FirstName, model.SegmentNonMember,
		event.CreatedAt, event.Context,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	insert := `INSERT INTO contact_events (telegram_id, context, created_at) VALUES ($1, $2, $3)`

	_, err = tx.Exec(ctx, insert, event.TelegramID, event.Context, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit contact: %w", err)
	}

	return nil
}

func (r *LedgerRepository) GetUser(ctx context.Context, telegramID int64) (model.User, error) {
	var user model.User
	query := `SELECT telegram_id, username, first_name, segment, first_contact_at, last_context
			  FROM users WHERE telegram_id = $1`

	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID, &user.Username, &user.FirstName, &user.Segment,
		&user.FirstContactAt, &user.LastContext,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *LedgerRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT telegram_id, username, first_name, segment, first_contact_at, last_context
			  FROM users ORDER BY first_contact_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.TelegramID, &user.Username, &user.FirstName, &user.Segment,
			&user.FirstContactAt, &user.LastContext,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *LedgerRepository) CountUsers(ctx context.Context) (int, int, error) {
	var total, members int
	query := `SELECT count(*), count(*) FILTER (WHERE segment = $1) FROM users`

	err := r.db.QueryRow(ctx, query, model.SegmentMember).Scan(&total, &members)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return total, members, nil
}

func (r *LedgerRepository) UpdateSegment(ctx context.Context, telegramID int64, segment model.Segment) error {
	query := `UPDATE users SET segment = $2, updated_at = now() WHERE telegram_id = $1`

	tag, err := r.db.Exec(ctx, query, telegramID, segment)
	if err != nil {
		return fmt.Errorf("failed to update segment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
