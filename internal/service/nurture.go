package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/model"
)

// Nurture is the drip scheduler. Tick walks every known user, decides
// whether a nurture message is due for their current segment and
// elapsed days since first contact, and dispatches at most one message
// per due offset, with the delivery log as the idempotency gate.
type Nurture struct {
	ledger      model.LedgerStore
	deliveries  model.DeliveryLogStore
	segments    *Segment
	templates   model.TemplateSource
	dispatcher  model.Dispatcher
	logger      *logger.Logger
	concurrency int
}

func NewNurture(
	ledger model.LedgerStore,
	deliveries model.DeliveryLogStore,
	segments *Segment,
	templates model.TemplateSource,
	dispatcher model.Dispatcher,
	logger *logger.Logger,
	concurrency int,
) *Nurture {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Nurture{
		ledger:      ledger,
		deliveries:  deliveries,
		segments:    segments,
		templates:   templates,
		dispatcher:  dispatcher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Tick runs one scheduler pass at the given wall-clock time. Users are
// processed with bounded fan-out; a single user's pipeline never spans
// two goroutines, so the log's check-then-write stays race-free per
// user. Failures inside one user's processing are recorded and never
// abort the batch; only a failure to list users fails the tick itself.
func (n *Nurture) Tick(ctx context.Context, now time.Time) ([]model.DispatchResult, error) {
	users, err := n.ledger.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []model.DispatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)

	for _, user := range users {
		g.Go(func() error {
			if res, dispatched := n.processUser(gctx, user, now); dispatched {
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
			return nil
		})
	}

	// Worker funcs never return errors; Wait only orders the barrier.
	_ = g.Wait()

	n.reconcile(ctx)

	return results, nil
}

func (n *Nurture) processUser(ctx context.Context, user model.User, now time.Time) (model.DispatchResult, bool) {
	elapsed := elapsedDays(user.FirstContactAt, now)

	// The oracle's answer is the freshest truth, persisted every tick.
	segment := n.segments.Resolve(ctx, user.TelegramID)

	ladder := n.templates.Ladder(segment)
	if !slices.Contains(ladder, elapsed) {
		return model.DispatchResult{}, false
	}

	sent, err := n.deliveries.HasOK(ctx, user.TelegramID, elapsed)
	if err != nil {
		n.logger.Error("Nurture service: idempotency check failed, skipping user this tick",
			"telegram_id", user.TelegramID,
			"day_offset", elapsed,
			"error", err.Error())
		return model.DispatchResult{}, false
	}
	if sent {
		return model.DispatchResult{}, false
	}

	text, found := n.templates.TemplateFor(segment, elapsed)
	if !found {
		// Content gap: the offset is due but nothing is authored for it.
		return model.DispatchResult{}, false
	}

	rec := model.DeliveryRecord{
		ID:         uuid.New(),
		TelegramID: user.TelegramID,
		Segment:    segment,
		DayOffset:  elapsed,
		SentAt:     now,
		Outcome:    model.OutcomeOK,
	}

	if err := n.dispatcher.SendText(ctx, user.TelegramID, text); err != nil {
		n.logger.Info("Nurture service: dispatch failed, will retry next tick",
			"telegram_id", user.TelegramID,
			"day_offset", elapsed,
			"error", err.Error())
		rec.Outcome = model.OutcomeError
		rec.ErrorDetail = err.Error()
	}

	if err := n.deliveries.Record(ctx, rec); err != nil {
		n.logger.Error("Nurture service: failed to record delivery",
			"telegram_id", user.TelegramID,
			"day_offset", elapsed,
			"error", err.Error())
	}

	return model.DispatchResult{
		TelegramID: user.TelegramID,
		Segment:    segment,
		DayOffset:  elapsed,
		Outcome:    rec.Outcome,
	}, true
}

// reconcile fills the became-member marker on every delivery record
// that does not have one yet, from the user's current segment. The
// store's write is conditioned on the marker being empty, so re-running
// the pass is always safe.
func (n *Nurture) reconcile(ctx context.Context) {
	recs, err := n.deliveries.ListUnreconciled(ctx)
	if err != nil {
		n.logger.Error("Nurture service: failed to list unreconciled deliveries",
			"error", err.Error())
		return
	}

	for _, rec := range recs {
		user, err := n.ledger.GetUser(ctx, rec.TelegramID)
		if err != nil {
			n.logger.Error("Nurture service: failed to load user for reconciliation",
				"telegram_id", rec.TelegramID,
				"error", err.Error())
			continue
		}

		became := user.Segment == model.SegmentMember
		if err := n.deliveries.MarkConversion(ctx, rec.ID, became); err != nil {
			n.logger.Error("Nurture service: failed to mark conversion",
				"delivery_id", rec.ID,
				"error", err.Error())
		}
	}
}

// elapsedDays returns whole calendar days between the first contact and
// now, both taken as UTC dates. An arrival at 23:59 checked at 00:01
// the next day counts as one elapsed day, not zero.
func elapsedDays(firstContact, now time.Time) int {
	f := firstContact.UTC()
	t := now.UTC()

	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	return int(td.Sub(fd) / (24 * time.Hour))
}
