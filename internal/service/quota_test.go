package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taroverse/engagebot/internal/model"
)

func TestQuota_ConsumeAndRemaining(t *testing.T) {
	q := NewQuota(1, 1)

	assert.Equal(t, 1, q.Remaining(1, model.CapabilityCard))
	assert.True(t, q.Consume(1, model.CapabilityCard))
	assert.Equal(t, 0, q.Remaining(1, model.CapabilityCard))
	assert.False(t, q.Consume(1, model.CapabilityCard))

	// Capabilities are independent.
	assert.Equal(t, 1, q.Remaining(1, model.CapabilityDice))
	assert.True(t, q.Consume(1, model.CapabilityDice))
	assert.False(t, q.Consume(1, model.CapabilityDice))

	// Users are independent.
	assert.True(t, q.Consume(2, model.CapabilityCard))
}

func TestQuota_ResetAtUTCMidnight(t *testing.T) {
	q := NewQuota(1, 1)

	now := time.Date(2024, 5, 10, 23, 50, 0, 0, time.UTC)
	q.now = func() time.Time { return now }

	assert.True(t, q.Consume(1, model.CapabilityCard))
	assert.True(t, q.Consume(1, model.CapabilityDice))
	assert.Equal(t, 0, q.Remaining(1, model.CapabilityCard))

	// First read after UTC midnight reports the full allowance without
	// any external trigger.
	now = time.Date(2024, 5, 11, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, 1, q.Remaining(1, model.CapabilityCard))
	assert.Equal(t, 1, q.Remaining(1, model.CapabilityDice))
	assert.True(t, q.Consume(1, model.CapabilityCard))
}

func TestQuota_NormalizationBeforeConsume(t *testing.T) {
	q := NewQuota(1, 1)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }

	assert.True(t, q.Consume(1, model.CapabilityCard))
	assert.False(t, q.Consume(1, model.CapabilityCard))

	// A consume on the next day must reset first, then succeed.
	now = now.Add(24 * time.Hour)
	assert.True(t, q.Consume(1, model.CapabilityCard))
}

func TestQuota_ResetAll(t *testing.T) {
	q := NewQuota(1, 1)

	assert.True(t, q.Consume(1, model.CapabilityCard))
	assert.True(t, q.Consume(2, model.CapabilityDice))

	q.ResetAll()

	assert.Equal(t, 1, q.Remaining(1, model.CapabilityCard))
	assert.Equal(t, 1, q.Remaining(2, model.CapabilityDice))
}

func TestQuota_LargerAllowance(t *testing.T) {
	q := NewQuota(3, 1)

	assert.True(t, q.Consume(1, model.CapabilityCard))
	assert.True(t, q.Consume(1, model.CapabilityCard))
	assert.Equal(t, 1, q.Remaining(1, model.CapabilityCard))
	assert.True(t, q.Consume(1, model.CapabilityCard))
	assert.False(t, q.Consume(1, model.CapabilityCard))
}
