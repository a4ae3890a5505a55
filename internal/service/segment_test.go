package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/taroverse/engagebot/internal/mocks"
	"github.com/taroverse/engagebot/internal/model"
	"github.com/taroverse/engagebot/internal/testutil"
)

func TestSegment_Resolve_StatusMapping(t *testing.T) {
	tests := []struct {
		status string
		want   model.Segment
	}{
		{"creator", model.SegmentMember},
		{"administrator", model.SegmentMember},
		{"member", model.SegmentMember},
		{"restricted", model.SegmentNonMember},
		{"left", model.SegmentNonMember},
		{"kicked", model.SegmentNonMember},
		{"", model.SegmentNonMember},
	}

	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			ctx := context.Background()

			oracle := &mocks.MembershipOracle{}
			oracle.On("LookupMembership", ctx, int64(42)).Return(tt.status, nil).Once()

			ledger := &mocks.LedgerStore{}
			ledger.On("UpdateSegment", ctx, int64(42), tt.want).Return(nil).Once()

			svc := NewSegment(oracle, ledger, testutil.MakeNoopLogger())

			got := svc.Resolve(ctx, 42)
			assert.Equal(t, tt.want, got)
			ledger.AssertExpectations(t)
		})
	}
}

func TestSegment_Resolve_LookupFailure(t *testing.T) {
	ctx := context.Background()

	oracle := &mocks.MembershipOracle{}
	oracle.On("LookupMembership", ctx, int64(42)).Return("", assert.AnError).Once()

	// The pessimistic classification must still be persisted.
	ledger := &mocks.LedgerStore{}
	ledger.On("UpdateSegment", ctx, int64(42), model.SegmentNonMember).Return(nil).Once()

	svc := NewSegment(oracle, ledger, testutil.MakeNoopLogger())

	got := svc.Resolve(ctx, 42)
	assert.Equal(t, model.SegmentNonMember, got)
	ledger.AssertExpectations(t)
}

func TestSegment_Resolve_PersistFailureDoesNotPanic(t *testing.T) {
	ctx := context.Background()

	oracle := &mocks.MembershipOracle{}
	oracle.On("LookupMembership", ctx, mock.Anything).Return("member", nil).Once()

	ledger := &mocks.LedgerStore{}
	ledger.On("UpdateSegment", ctx, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	svc := NewSegment(oracle, ledger, testutil.MakeNoopLogger())

	got := svc.Resolve(ctx, 42)
	assert.Equal(t, model.SegmentMember, got)
}
