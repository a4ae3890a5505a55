package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of one attempted nurture send.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeError Outcome = "error"
)

// DeliveryRecord is one row of the nurture delivery log. Rows are
// append-only; the only mutable field is BecameMember, written at most
// once by the reconciliation pass.
type DeliveryRecord struct {
	ID           uuid.UUID
	TelegramID   int64
	Segment      Segment
	DayOffset    int
	SentAt       time.Time
	Outcome      Outcome
	ErrorDetail  string
	BecameMember *bool
}

// DripOffsetStat is a reporting aggregate over the delivery log.
type DripOffsetStat struct {
	Segment     Segment
	DayOffset   int
	Sent        int
	Failed      int
	Conversions int
}

// DeliveryLogStore defines persistence operations for the delivery log.
//
// HasOK is the idempotency check: an ok record for (user, day offset)
// means that rung already fired and must never fire again. Error records
// do not count; failed sends retry naturally on the next tick.
//
// MarkConversion writes the became-member marker and must only touch
// rows where the marker is still empty, so re-running reconciliation is
// always safe.
type DeliveryLogStore interface {
	Record(ctx context.Context, rec DeliveryRecord) error
	HasOK(ctx context.Context, telegramID int64, dayOffset int) (bool, error)
	ListUnreconciled(ctx context.Context) ([]DeliveryRecord, error)
	MarkConversion(ctx context.Context, id uuid.UUID, becameMember bool) error
	OffsetStats(ctx context.Context) ([]DripOffsetStat, error)
}

// DispatchResult summarizes what one scheduler tick did for one user.
type DispatchResult struct {
	TelegramID int64
	Segment    Segment
	DayOffset  int
	Outcome    Outcome
}
