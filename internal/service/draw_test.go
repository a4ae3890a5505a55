package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taroverse/engagebot/internal/mocks"
	"github.com/taroverse/engagebot/internal/model"
	"github.com/taroverse/engagebot/internal/testutil"
)

func TestDraw_Card(t *testing.T) {
	ctx := context.Background()

	media := &mocks.MediaStore{}
	media.On("List", ctx, "cards/").Return([]string{"cards/sun.jpg", "cards/moon.jpg"}, nil).Once()
	media.On("Download", ctx, "cards/moon.jpg").Return(io.NopCloser(strings.NewReader("img")), nil).Once()

	draw := NewDraw(media, NewQuota(1, 1), testutil.MakeNoopLogger())
	draw.pick = func(n int) int { return 1 }

	res, err := draw.Card(ctx, 42)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Image.Close() })

	assert.Equal(t, "cards/moon.jpg", res.Key)
	assert.Equal(t, "moon.jpg", res.Name)
	assert.Equal(t, 0, draw.CardRemaining(42))
}

func TestDraw_Card_QuotaExhausted(t *testing.T) {
	ctx := context.Background()

	media := &mocks.MediaStore{}
	media.On("List", ctx, "cards/").Return([]string{"cards/sun.jpg"}, nil).Once()
	media.On("Download", ctx, mock.Anything).Return(io.NopCloser(strings.NewReader("img")), nil).Once()

	draw := NewDraw(media, NewQuota(1, 1), testutil.MakeNoopLogger())

	_, err := draw.Card(ctx, 42)
	require.NoError(t, err)

	_, err = draw.Card(ctx, 42)
	assert.ErrorIs(t, err, model.ErrQuotaExhausted)

	// The dice allowance is untouched.
	media.On("List", ctx, "dice/").Return([]string{"dice/one.jpg"}, nil).Once()
	media.On("Download", ctx, "dice/one.jpg").Return(io.NopCloser(strings.NewReader("img")), nil).Once()

	_, err = draw.Dice(ctx, 42)
	require.NoError(t, err)
}

func TestDraw_NoMedia(t *testing.T) {
	ctx := context.Background()

	media := &mocks.MediaStore{}
	media.On("List", ctx, "card_of_day/").Return(nil, nil).Once()

	draw := NewDraw(media, NewQuota(1, 1), testutil.MakeNoopLogger())

	_, err := draw.CardOfDay(ctx)
	assert.ErrorIs(t, err, model.ErrNoMedia)
}

func TestDraw_ListError(t *testing.T) {
	ctx := context.Background()

	media := &mocks.MediaStore{}
	media.On("List", ctx, "dice/").Return(nil, assert.AnError).Once()

	draw := NewDraw(media, NewQuota(1, 1), testutil.MakeNoopLogger())

	_, err := draw.Dice(ctx, 42)
	require.Error(t, err)

	// The unit is spent before the media fetch; a lost draw on a
	// storage failure is the accepted cost of a strict gate.
	assert.Equal(t, 0, draw.DiceRemaining(42))
}

func TestDraw_CardOfDay_NotQuotaGated(t *testing.T) {
	ctx := context.Background()

	media := &mocks.MediaStore{}
	media.On("List", ctx, "card_of_day/").Return([]string{"card_of_day/a.jpg"}, nil).Times(3)
	media.On("Download", ctx, "card_of_day/a.jpg").Return(io.NopCloser(strings.NewReader("img")), nil).Times(3)

	draw := NewDraw(media, NewQuota(1, 1), testutil.MakeNoopLogger())

	for range 3 {
		res, err := draw.CardOfDay(ctx)
		require.NoError(t, err)
		_ = res.Image.Close()
	}
}
