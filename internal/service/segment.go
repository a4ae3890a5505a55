package service

import (
	"context"

	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/model"
)

// Segment resolves a user's current segment through the membership
// oracle and persists the result into the ledger.
type Segment struct {
	oracle model.MembershipOracle
	ledger model.LedgerStore
	logger *logger.Logger
}

func NewSegment(oracle model.MembershipOracle, ledger model.LedgerStore, logger *logger.Logger) *Segment {
	return &Segment{
		oracle: oracle,
		ledger: ledger,
		logger: logger,
	}
}

// Chat-member statuses that count as channel membership.
const (
	statusCreator       = "creator"
	statusAdministrator = "administrator"
	statusMember        = "member"
)

// Resolve classifies the user and stores the classification. A failed
// lookup classifies as non-member: a false non-member only costs an
// extra nurture message, while a false member would silently suppress
// outreach. The pessimistic result is persisted like any other.
func (s *Segment) Resolve(ctx context.Context, telegramID int64) model.Segment {
	segment := model.SegmentNonMember

	status, err := s.oracle.LookupMembership(ctx, telegramID)
	if err != nil {
		s.logger.Warn("Segment service: membership lookup failed, classifying as non-member",
			"telegram_id", telegramID,
			"error", err.Error())
	} else {
		switch status {
		case statusCreator, statusAdministrator, statusMember:
			segment = model.SegmentMember
		}
	}

	if err := s.ledger.UpdateSegment(ctx, telegramID, segment); err != nil {
		s.logger.Error("Segment service: failed to persist segment",
			"telegram_id", telegramID,
			"segment", segment,
			"error", err.Error())
	}

	return segment
}
