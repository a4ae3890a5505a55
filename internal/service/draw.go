package service

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"path"

	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/model"
)

// Media library prefixes.
const (
	prefixCards     = "cards/"
	prefixDice      = "dice/"
	prefixCardOfDay = "card_of_day/"
)

// Draw hands out the quota-gated daily draws and the card of the day,
// picking a random image from the media library.
type Draw struct {
	media  model.MediaStore
	quota  *Quota
	logger *logger.Logger
	pick   func(n int) int
}

// DrawResult is one drawn image ready to send. The caller owns closing
// Image.
type DrawResult struct {
	Key   string
	Name  string
	Image io.ReadCloser
}

func NewDraw(media model.MediaStore, quota *Quota, logger *logger.Logger) *Draw {
	return &Draw{
		media:  media,
		quota:  quota,
		logger: logger,
		pick:   rand.IntN,
	}
}

// Card draws the user's metaphoric card of the day. Returns
// model.ErrQuotaExhausted when today's allowance is spent.
func (d *Draw) Card(ctx context.Context, telegramID int64) (*DrawResult, error) {
	if !d.quota.Consume(telegramID, model.CapabilityCard) {
		return nil, model.ErrQuotaExhausted
	}
	return d.random(ctx, prefixCards)
}

// Dice draws the user's dice hint. Returns model.ErrQuotaExhausted when
// today's allowance is spent.
func (d *Draw) Dice(ctx context.Context, telegramID int64) (*DrawResult, error) {
	if !d.quota.Consume(telegramID, model.CapabilityDice) {
		return nil, model.ErrQuotaExhausted
	}
	return d.random(ctx, prefixDice)
}

// CardOfDay draws the channel's card of the day. Not quota-gated.
func (d *Draw) CardOfDay(ctx context.Context) (*DrawResult, error) {
	return d.random(ctx, prefixCardOfDay)
}

// CardRemaining and DiceRemaining render the counters for menus.
func (d *Draw) CardRemaining(telegramID int64) int {
	return d.quota.Remaining(telegramID, model.CapabilityCard)
}

func (d *Draw) DiceRemaining(telegramID int64) int {
	return d.quota.Remaining(telegramID, model.CapabilityDice)
}

func (d *Draw) random(ctx context.Context, prefix string) (*DrawResult, error) {
	keys, err := d.media.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	if len(keys) == 0 {
		return nil, model.ErrNoMedia
	}

	key := keys[d.pick(len(keys))]

	image, err := d.media.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}

	d.logger.Debug("Draw service: picked media", "key", key)

	return &DrawResult{
		Key:   key,
		Name:  path.Base(key),
		Image: image,
	}, nil
}
