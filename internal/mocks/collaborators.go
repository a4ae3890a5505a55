package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/taroverse/engagebot/internal/model"
)

// MembershipOracle is a mock of model.MembershipOracle.
type MembershipOracle struct {
	mock.Mock
}

func (m *MembershipOracle) LookupMembership(ctx context.Context, telegramID int64) (string, error) {
	args := m.Called(ctx, telegramID)
	return args.String(0), args.Error(1)
}

// Dispatcher is a mock of model.Dispatcher.
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *Dispatcher) SendPhoto(ctx context.Context, chatID int64, caption string, name string, image io.Reader) error {
	args := m.Called(ctx, chatID, caption, name, image)
	return args.Error(0)
}

// TemplateSource is a mock of model.TemplateSource.
type TemplateSource struct {
	mock.Mock
}

func (m *TemplateSource) Ladder(segment model.Segment) []int {
	args := m.Called(segment)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]int)
}

func (m *TemplateSource) TemplateFor(segment model.Segment, dayOffset int) (string, bool) {
	args := m.Called(segment, dayOffset)
	return args.String(0), args.Bool(1)
}

// MediaStore is a mock of model.MediaStore.
type MediaStore struct {
	mock.Mock
}

func (m *MediaStore) List(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MediaStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MediaStore) Upload(ctx context.Context, key string, reader io.Reader, size int64) error {
	args := m.Called(ctx, key, reader, size)
	return args.Error(0)
}
