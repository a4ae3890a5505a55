package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/model"
)

// Report builds read-only rollups over the ledger, the activity log and
// the delivery log for the admin surfaces.
type Report struct {
	ledger     model.LedgerStore
	actions    model.ActionStore
	deliveries model.DeliveryLogStore
	logger     *logger.Logger
}

// Summary is the headline rollup.
type Summary struct {
	TotalUsers     int `json:"total_users"`
	Members        int `json:"members"`
	NonMembers     int `json:"non_members"`
	ActionsLastDay int `json:"actions_last_day"`
}

func NewReport(ledger model.LedgerStore, actions model.ActionStore, deliveries model.DeliveryLogStore, logger *logger.Logger) *Report {
	return &Report{
		ledger:     ledger,
		actions:    actions,
		deliveries: deliveries,
		logger:     logger,
	}
}

func (r *Report) Summary(ctx context.Context) (Summary, error) {
	total, members, err := r.ledger.CountUsers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count users: %w", err)
	}

	actions, err := r.actions.CountSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count actions: %w", err)
	}

	return Summary{
		TotalUsers:     total,
		Members:        members,
		NonMembers:     total - members,
		ActionsLastDay: actions,
	}, nil
}

func (r *Report) Drip(ctx context.Context) ([]model.DripOffsetStat, error) {
	stats, err := r.deliveries.OffsetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load drip stats: %w", err)
	}
	return stats, nil
}

// Users returns up to limit users, oldest first. limit <= 0 means all.
func (r *Report) Users(ctx context.Context, limit int) ([]model.User, error) {
	users, err := r.ledger.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
