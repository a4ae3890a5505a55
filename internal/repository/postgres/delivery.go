package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taroverse/engagebot/internal/model"
)

var _ model.DeliveryLogStore = (*DeliveryRepository)(nil)

type DeliveryRepository struct {
	db *Connection
}

func NewDeliveryRepository(db *Connection) *DeliveryRepository {
	return &DeliveryRepository{
		db: db,
	}
}

func (r *DeliveryRepository) Record(ctx context.Context, rec model.DeliveryRecord) error {
	query := `INSERT INTO deliveries (id, telegram_id, segment, day_offset, sent_at, outcome, error_detail)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.TelegramID, rec.Segment, rec.DayOffset, rec.SentAt, rec.Outcome, rec.ErrorDetail,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

func (r *DeliveryRepository) HasOK(ctx context.Context, telegramID int64, dayOffset int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
				  SELECT 1 FROM deliveries
				  WHERE telegram_id = $1 AND day_offset = $2 AND outcome = $3
			  )`

	err := r.db.QueryRow(ctx, query, telegramID, dayOffset, model.OutcomeOK).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check delivery: %w", err)
	}

	return exists, nil
}

func (r *DeliveryRepository) ListUnreconciled(ctx context.Context) ([]model.DeliveryRecord, error) {
	query := `SELECT id, telegram_id, segment, day_offset, sent_at, outcome, error_detail, became_member_after
			  FROM deliveries WHERE became_member_after IS NULL ORDER BY sent_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled deliveries: %w", err)
	}
	defer rows.Close()

	var recs []model.DeliveryRecord
	for rows.Next() {
		var rec model.DeliveryRecord
		err := rows.Scan(
			&rec.ID, &rec.TelegramID, &rec.Segment, &rec.DayOffset,
			&rec.SentAt, &rec.Outcome, &rec.ErrorDetail, &rec.BecameMember,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deliveries: %w", err)
	}

	return recs, nil
}

// MarkConversion fills the became-member marker. The IS NULL guard makes
// the write at-most-once: a concurrent or repeated reconciliation pass
// that lost the race simply affects zero rows.
func (r *DeliveryRepository) MarkConversion(ctx context.Context, id uuid.UUID, becameMember bool) error {
	query := `UPDATE deliveries SET became_member_after = $2
			  WHERE id = $1 AND became_member_after IS NULL`

	_, err := r.db.Exec(ctx, query, id, becameMember)
	if err != nil {
		return fmt.Errorf("failed to mark conversion: %w", err)
	}

	return nil
}

func (r *DeliveryRepository) OffsetStats(ctx context.Context) ([]model.DripOffsetStat, error) {
	query := `SELECT segment, day_offset,
				  count(*) FILTER (WHERE outcome = $1),
				  count(*) FILTER (WHERE outcome = $2),
				  count(*) FILTER (WHERE became_member_after)
			  FROM deliveries
			  GROUP BY segment, day_offset
			  ORDER BY segment, day_offset`

	rows, err := r.db.Query(ctx, query, model.OutcomeOK, model.OutcomeError)
	if err != nil {
		return nil, fmt.Errorf("failed to query offset stats: %w", err)
	}
	defer rows.Close()

	var stats []model.DripOffsetStat
	for rows.Next() {
		var st model.DripOffsetStat
		err := rows.Scan(&st.Segment, &st.DayOffset, &st.Sent, &st.Failed, &st.Conversions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offset stat: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offset stats: %w", err)
	}

	return stats, nil
}
