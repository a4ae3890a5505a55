package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action sources. Every handler appends an action row so the reports can
// show activity without touching the transport layer.
const (
	SourceCommand  = "command"
	SourceCallback = "callback"
	SourceText     = "text"
	SourceJob      = "job"
)

// Action is one row of the user activity log.
type Action struct {
	ID         uuid.UUID
	TelegramID int64
	Username   string
	Name       string
	Source     string
	CreatedAt  time.Time
}

// ActionStore defines persistence operations for the activity log.
type ActionStore interface {
	Append(ctx context.Context, action Action) error
	CountSince(ctx context.Context, since time.Time) (int, error)
}
