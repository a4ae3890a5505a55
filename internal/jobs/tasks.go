package jobs

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/taroverse/engagebot/internal/model"
	"github.com/taroverse/engagebot/internal/service"
)

// channelPublisher publishes an image to the bot's channel.
type channelPublisher interface {
	SendPhotoToChannel(ctx context.Context, caption string, name string, image io.Reader) error
}

// NurtureJob runs one scheduler pass.
func NurtureJob(interval time.Duration, nurture *service.Nurture) Job {
	return Job{
		Name:     "nurture_tick",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := nurture.Tick(ctx, time.Now())
			return err
		},
	}
}

// CardOfDayJob publishes a random card to the channel.
func CardOfDayJob(interval time.Duration, draws *service.Draw, publisher channelPublisher) Job {
	return Job{
		Name:     "card_of_day",
		Interval: interval,
		Run: func(ctx context.Context) error {
			res, err := draws.CardOfDay(ctx)
			if err != nil {
				return fmt.Errorf("failed to draw card of day: %w", err)
			}
			defer res.Image.Close()

			caption := "✨ *Карта дня*\n\nПусть она осветит ваш путь сегодня\\."
			return publisher.SendPhotoToChannel(ctx, caption, res.Name, res.Image)
		},
	}
}

// DigestJob sends the headline rollup to every admin.
func DigestJob(interval time.Duration, report *service.Report, dispatcher model.Dispatcher, adminIDs []int64) Job {
	return Job{
		Name:     "admin_digest",
		Interval: interval,
		Run: func(ctx context.Context) error {
			summary, err := report.Summary(ctx)
			if err != nil {
				return fmt.Errorf("failed to build digest: %w", err)
			}

			text := fmt.Sprintf(
				"Сводка за сутки.\nВсего пользователей: %d\nПодписаны: %d\nНе подписаны: %d\nДействий: %d",
				summary.TotalUsers, summary.Members, summary.NonMembers, summary.ActionsLastDay,
			)

			for _, id := range adminIDs {
				if err := dispatcher.SendText(ctx, id, text); err != nil {
					return fmt.Errorf("failed to send digest to %d: %w", id, err)
				}
			}
			return nil
		},
	}
}

// ReminderJob nudges subscribed users to come back for their daily
// draw. A failed send for one user does not stop the rest.
func ReminderJob(interval time.Duration, ledger model.LedgerStore, dispatcher model.Dispatcher) Job {
	const text = "Новая метафорическая карта дня уже ждёт вас! Загляните в меню, чтобы вытянуть её."

	return Job{
		Name:     "member_reminder",
		Interval: interval,
		Run: func(ctx context.Context) error {
			users, err := ledger.ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			var lastErr error
			for _, user := range users {
				if user.Segment != model.SegmentMember {
					continue
				}
				if err := dispatcher.SendText(ctx, user.TelegramID, text); err != nil {
					lastErr = err
				}
			}
			return lastErr
		},
	}
}
