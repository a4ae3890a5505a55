// Package mocks contains testify mocks for the model interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/taroverse/engagebot/internal/model"
)

// LedgerStore is a mock of model.LedgerStore.
type LedgerStore struct {
	mock.Mock
}

func (m *LedgerStore) AppendContact(ctx context.Context, user model.User, event model.ContactEvent) error {
	args := m.Called(ctx, user, event)
	return args.Error(0)
}

func (m *LedgerStore) GetUser(ctx context.Context, telegramID int64) (model.User, error) {
	args := m.Called(ctx, telegramID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *LedgerStore) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *LedgerStore) CountUsers(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *LedgerStore) UpdateSegment(ctx context.Context, telegramID int64, segment model.Segment) error {
	args := m.Called(ctx, telegramID, segment)
	return args.Error(0)
}

// DeliveryLogStore is a mock of model.DeliveryLogStore.
type DeliveryLogStore struct {
	mock.Mock
}

func (m *DeliveryLogStore) Record(ctx context.Context, rec model.DeliveryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *DeliveryLogStore) HasOK(ctx context.Context, telegramID int64, dayOffset int) (bool, error) {
	args := m.Called(ctx, telegramID, dayOffset)
	return args.Bool(0), args.Error(1)
}

func (m *DeliveryLogStore) ListUnreconciled(ctx context.Context) ([]model.DeliveryRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryRecord), args.Error(1)
}

func (m *DeliveryLogStore) MarkConversion(ctx context.Context, id uuid.UUID, becameMember bool) error {
	args := m.Called(ctx, id, becameMember)
	return args.Error(0)
}

func (m *DeliveryLogStore) OffsetStats(ctx context.Context) ([]model.DripOffsetStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DripOffsetStat), args.Error(1)
}

// ActionStore is a mock of model.ActionStore.
type ActionStore struct {
	mock.Mock
}

func (m *ActionStore) Append(ctx context.Context, action model.Action) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

func (m *ActionStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}
