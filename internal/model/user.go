package model

import (
	"context"
	"time"
)

// Segment is the coarse classification of a user that drives which
// nurture ladder applies to them.
type Segment string

const (
	SegmentMember    Segment = "member"
	SegmentNonMember Segment = "non_member"
)

// User represents a bot user as stored in the contact ledger. A user is
// created on first arrival and never deleted; Segment is mutated only by
// the segment resolver.
type User struct {
	TelegramID     int64
	Username       string
	FirstName      string
	Segment        Segment
	FirstContactAt time.Time
	LastContext    string
}

// FullName returns the best available display name for the user.
func (u User) FullName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "друг"
}

// ContactEvent is one arrival row. A user may arrive many times; the
// ledger keeps every event and never updates the user's first-contact
// timestamp after the initial insert.
type ContactEvent struct {
	TelegramID int64
	Context    string
	CreatedAt  time.Time
}

// LedgerStore defines persistence operations for users and their
// arrival events. The segment store of the system is the segment column
// on the user row, written through UpdateSegment.
type LedgerStore interface {
	AppendContact(ctx context.Context, user User, event ContactEvent) error
	GetUser(ctx context.Context, telegramID int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (total int, members int, err error)
	UpdateSegment(ctx context.Context, telegramID int64, segment Segment) error
}
