package model

import (
	"context"
	"io"
)

// MembershipOracle looks up a user's raw membership status in the
// associated channel. The returned status is a transport-level string
// ("creator", "member", "left", ...); classification into a Segment is
// the segment resolver's job. Lookups may fail and callers must treat
// failure as non-membership.
type MembershipOracle interface {
	LookupMembership(ctx context.Context, telegramID int64) (string, error)
}

// Dispatcher sends outbound messages to a chat. Implementations own all
// formatting concerns of the transport (parse mode, escaping).
type Dispatcher interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, caption string, name string, image io.Reader) error
}

// TemplateSource resolves nurture ladders and message templates. A
// missing template for a (segment, day offset) pair is a content gap,
// not an error, hence the ok-bool shape.
type TemplateSource interface {
	Ladder(segment Segment) []int
	TemplateFor(segment Segment, dayOffset int) (string, bool)
}

// MediaStore is the object-storage library of draw images. Keys are
// bucket object names grouped by prefix (cards/, dice/, card_of_day/).
type MediaStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
}

// TokenManager issues and validates admin API bearer tokens.
type TokenManager interface {
	Generate(subject string) (string, error)
	Parse(token string) (string, error)
}
