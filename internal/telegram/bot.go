package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/taroverse/engagebot/internal/content"
	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/model"
	"github.com/taroverse/engagebot/internal/service"
)

// Bot routes incoming updates to the domain services.
type Bot struct {
	client  *Client
	ledger  model.LedgerStore
	actions model.ActionStore
	draws   *service.Draw
	quota   *service.Quota
	report  *service.Report
	content *content.Source

	adminIDs      map[int64]struct{}
	channelLink   string
	updateTimeout int
	logger        *logger.Logger

	mu      sync.Mutex
	pending map[int64]string // chat -> spread code awaiting confirmation
}

type BotParams struct {
	Client        *Client
	Ledger        model.LedgerStore
	Actions       model.ActionStore
	Draws         *service.Draw
	Quota         *service.Quota
	Report        *service.Report
	Content       *content.Source
	AdminIDs      []int64
	ChannelLink   string
	UpdateTimeout int
	Logger        *logger.Logger
}

func NewBot(p BotParams) *Bot {
	admins := make(map[int64]struct{}, len(p.AdminIDs))
	for _, id := range p.AdminIDs {
		admins[id] = struct{}{}
	}

	return &Bot{
		client:        p.Client,
		ledger:        p.Ledger,
		actions:       p.Actions,
		draws:         p.Draws,
		quota:         p.Quota,
		report:        p.Report,
		content:       p.Content,
		adminIDs:      admins,
		channelLink:   p.ChannelLink,
		updateTimeout: p.UpdateTimeout,
		logger:        p.Logger,
		pending:       make(map[int64]string),
	}
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout

	updates := b.client.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update. Handler errors are logged, never
// propagated; one broken update must not take the loop down.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error

	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.handleText(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, update.CallbackQuery)
	}

	if err != nil {
		b.logger.Error("telegram: handler failed",
			"update_id", update.UpdateID,
			"error", err.Error())
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "admin":
		return b.handleAdmin(ctx, msg)
	default:
		return b.sendMainMenu(msg.From.ID, "Я не знаю такую команду\\. Вот главное меню:")
	}
}

// handleStart records the arrival and greets the user. The command
// payload (deep-link from a QR code or a post) is kept as the entry
// context.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From
	entry := strings.TrimSpace(msg.CommandArguments())

	user := model.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
	}
	event := model.ContactEvent{
		TelegramID: from.ID,
		Context:    entry,
		CreatedAt:  time.Now().UTC(),
	}

	if err := b.ledger.AppendContact(ctx, user, event); err != nil {
		b.logger.Error("telegram: failed to record arrival",
			"telegram_id", from.ID,
			"error", err.Error())
	}
	b.logAction(ctx, from, "/start", model.SourceCommand)

	welcome := fmt.Sprintf(
		"Привет, %s\\! 👋\n\n"+
			"Я — ваш проводник в мир метафорических карт и интуитивных решений\\.\n\n"+
			"Здесь вы можете:\n"+
			"• Получить *метафорическую карту* дня\n"+
			"• Использовать *помощь кубика*\n"+
			"• Записаться на персональный расклад\n"+
			"• Подписаться на ежедневные подсказки\n\n"+
			"*Выберите действие:*",
		escape(user.FullName()),
	)

	keyboard := mainKeyboard(b.channelLink, b.draws.CardRemaining(from.ID), b.draws.DiceRemaining(from.ID))
	return b.client.reply(from.ID, welcome, &keyboard)
}

func (b *Bot) handleAdmin(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(msg.From.ID) {
		return b.client.reply(msg.From.ID, "У вас нет доступа к этой команде\\.", nil)
	}

	b.logAction(ctx, msg.From, "/admin", model.SourceCommand)

	keyboard := adminKeyboard()
	return b.client.reply(msg.From.ID, "🔧 *Меню администратора*", &keyboard)
}

// handleText resolves spread codes and booking confirmations; anything
// else falls back to the main menu.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.Text)

	if spread, ok := b.content.SpreadByCode(text); ok {
		b.logAction(ctx, msg.From, "spread_request_"+spread.Code, model.SourceText)
		b.setPending(msg.From.ID, spread.Code)
		return b.client.reply(msg.From.ID, spreadDetails(spread), nil)
	}

	if isConfirmation(text) {
		if code, ok := b.takePending(msg.From.ID); ok {
			return b.confirmBooking(ctx, msg.From, code)
		}
	}

	b.logAction(ctx, msg.From, "text_fallback", model.SourceText)
	return b.sendMainMenu(msg.From.ID, "Я не понимаю это сообщение\\. Вот главное меню:")
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	data := query.Data
	from := query.From

	switch {
	case data == cbSubscribe:
		b.client.answerCallback(query.ID, "", false)
		return b.toggleSubscription(ctx, query)

	case data == cbDrawCard:
		return b.drawCard(ctx, query)

	case data == cbDrawDice:
		return b.drawDice(ctx, query)

	case data == cbSpreadsMenu:
		b.client.answerCallback(query.ID, "", false)
		b.logAction(ctx, from, "view_spreads", model.SourceCallback)
		keyboard := spreadsKeyboard(b.content.Spreads())
		return b.client.editMessage(from.ID, query.Message.MessageID, "📚 *Доступные расклады:*", &keyboard)

	case strings.HasPrefix(data, cbSpread):
		b.client.answerCallback(query.ID, "", false)
		code := strings.TrimPrefix(data, cbSpread)
		spread, ok := b.content.SpreadByCode(code)
		if !ok {
			return b.client.editMessage(from.ID, query.Message.MessageID, "❌ Расклад не найден\\.", nil)
		}
		b.logAction(ctx, from, "view_spread_"+spread.Code, model.SourceCallback)
		b.setPending(from.ID, spread.Code)
		return b.client.editMessage(from.ID, query.Message.MessageID, spreadDetails(spread), nil)

	case strings.HasPrefix(data, "adm:"):
		return b.handleAdminCallback(ctx, query)
	}

	b.client.answerCallback(query.ID, "", false)
	return b.client.editMessage(from.ID, query.Message.MessageID, "❌ Неизвестная команда\\.", nil)
}

// toggleSubscription flips the user's stored segment by request. The
// membership oracle overwrites this on the next scheduler tick; the
// toggle only makes the menus feel responsive in between.
func (b *Bot) toggleSubscription(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	from := query.From

	user, err := b.ledger.GetUser(ctx, from.ID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to load user: %w", err)
	}

	next := model.SegmentMember
	status := "подписаны"
	if user.Segment == model.SegmentMember {
		next = model.SegmentNonMember
		status = "отписаны"
	}

	if err := b.ledger.UpdateSegment(ctx, from.ID, next); err != nil {
		return fmt.Errorf("failed to update segment: %w", err)
	}

	b.logAction(ctx, from, "toggle_subscribe_"+string(next), model.SourceCallback)

	text := fmt.Sprintf("🔄 Теперь вы %s на ежедневные подсказки\\!", status)
	return b.client.editMessage(from.ID, query.Message.MessageID, text, nil)
}

func (b *Bot) drawCard(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	from := query.From

	res, err := b.draws.Card(ctx, from.ID)
	if errors.Is(err, model.ErrQuotaExhausted) {
		b.client.answerCallback(query.ID, "❌ Сегодня попытки закончились.", true)
		return nil
	}
	if err != nil {
		b.client.answerCallback(query.ID, "❌ Карта сейчас недоступна, попробуйте позже.", true)
		return fmt.Errorf("card draw failed: %w", err)
	}
	defer res.Image.Close()

	b.client.answerCallback(query.ID, "", false)
	b.logAction(ctx, from, "draw_card", model.SourceCallback)

	caption := fmt.Sprintf(
		"🃏 *Метафорическая карта* для %s\n\n_Позвольте образу говорить с вами\\._",
		escape(displayName(from)),
	)
	return b.client.SendPhoto(ctx, from.ID, caption, res.Name, res.Image)
}

func (b *Bot) drawDice(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	from := query.From

	res, err := b.draws.Dice(ctx, from.ID)
	if errors.Is(err, model.ErrQuotaExhausted) {
		b.client.answerCallback(query.ID, "❌ Сегодня попытки закончились.", true)
		return nil
	}
	if err != nil {
		b.client.answerCallback(query.ID, "❌ Кубик сейчас недоступен, попробуйте позже.", true)
		return fmt.Errorf("dice draw failed: %w", err)
	}
	defer res.Image.Close()

	b.client.answerCallback(query.ID, "", false)
	b.logAction(ctx, from, "draw_dice", model.SourceCallback)

	caption := fmt.Sprintf(
		"🎲 *Помощь кубика* для %s\n\n_Бросьте кубик и позвольте ему подсказать вам шаг\\._",
		escape(displayName(from)),
	)
	return b.client.SendPhoto(ctx, from.ID, caption, res.Name, res.Image)
}

func (b *Bot) handleAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	from := query.From

	if !b.isAdmin(from.ID) {
		b.client.answerCallback(query.ID, "У вас нет доступа.", true)
		return nil
	}

	b.logAction(ctx, from, "admin_"+query.Data, model.SourceCallback)

	switch query.Data {
	case cbAdminStats:
		b.client.answerCallback(query.ID, "", false)
		summary, err := b.report.Summary(ctx)
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}
		keyboard := backKeyboard()
		return b.client.editMessage(from.ID, query.Message.MessageID, renderSummary(summary), &keyboard)

	case cbAdminUsers:
		b.client.answerCallback(query.ID, "", false)
		users, err := b.report.Users(ctx, 30)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		keyboard := backKeyboard()
		return b.client.editMessage(from.ID, query.Message.MessageID, renderUsers(users), &keyboard)

	case cbAdminDrip:
		b.client.answerCallback(query.ID, "", false)
		stats, err := b.report.Drip(ctx)
		if err != nil {
			return fmt.Errorf("failed to build drip report: %w", err)
		}
		keyboard := backKeyboard()
		return b.client.editMessage(from.ID, query.Message.MessageID, renderDrip(stats), &keyboard)

	case cbAdminPublish:
		res, err := b.draws.CardOfDay(ctx)
		if err != nil {
			b.client.answerCallback(query.ID, "❌ Нет доступных карт дня.", true)
			return fmt.Errorf("card of day draw failed: %w", err)
		}
		defer res.Image.Close()

		caption := "✨ *Карта дня*\n\nПусть она осветит ваш путь сегодня\\."
		if err := b.client.SendPhotoToChannel(ctx, caption, res.Name, res.Image); err != nil {
			b.client.answerCallback(query.ID, "❌ Не удалось опубликовать карту.", true)
			return err
		}
		b.client.answerCallback(query.ID, "Карта дня отправлена!", true)
		return nil

	case cbAdminResetQuota:
		b.quota.ResetAll()
		b.client.answerCallback(query.ID, "Счётчики попыток сброшены.", true)
		return nil

	case cbAdminBack:
		b.client.answerCallback(query.ID, "", false)
		keyboard := adminKeyboard()
		return b.client.editMessage(from.ID, query.Message.MessageID, "🔧 *Меню администратора*", &keyboard)
	}

	b.client.answerCallback(query.ID, "", false)
	return nil
}

func (b *Bot) confirmBooking(ctx context.Context, from *tgbotapi.User, code string) error {
	spread, ok := b.content.SpreadByCode(code)
	if !ok {
		return b.sendMainMenu(from.ID, "Этот расклад больше недоступен\\. Вот главное меню:")
	}

	b.logAction(ctx, from, "confirmed_spread_"+spread.Code, model.SourceText)

	// Let the admins know about the booking.
	note := fmt.Sprintf(
		"📝 Новая запись на расклад *%s*\nОт: %s \\(id %d\\)",
		escape(spread.Title), escape(displayName(from)), from.ID,
	)
	for adminID := range b.adminIDs {
		if err := b.client.reply(adminID, note, nil); err != nil {
			b.logger.Warn("telegram: failed to notify admin",
				"admin_id", adminID,
				"error", err.Error())
		}
	}

	text := fmt.Sprintf("✅ Вы записаны на расклад: *%s*\\!\nСкоро я с вами свяжусь\\.", escape(spread.Title))
	return b.client.reply(from.ID, text, nil)
}

func (b *Bot) sendMainMenu(chatID int64, text string) error {
	keyboard := mainKeyboard(b.channelLink, b.draws.CardRemaining(chatID), b.draws.DiceRemaining(chatID))
	return b.client.reply(chatID, text, &keyboard)
}

func (b *Bot) logAction(ctx context.Context, from *tgbotapi.User, name, source string) {
	err := b.actions.Append(ctx, model.Action{
		ID:         uuid.New(),
		TelegramID: from.ID,
		Username:   from.UserName,
		Name:       name,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		b.logger.Warn("telegram: failed to log action",
			"action", name,
			"error", err.Error())
	}
}

func (b *Bot) isAdmin(id int64) bool {
	_, ok := b.adminIDs[id]
	return ok
}

func (b *Bot) setPending(chatID int64, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[chatID] = code
}

func (b *Bot) takePending(chatID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	code, ok := b.pending[chatID]
	if ok {
		delete(b.pending, chatID)
	}
	return code, ok
}

func isConfirmation(text string) bool {
	switch strings.ToLower(text) {
	case "да", "yes":
		return true
	}
	return false
}

func displayName(from *tgbotapi.User) string {
	if from.FirstName != "" {
		return from.FirstName
	}
	if from.UserName != "" {
		return "@" + from.UserName
	}
	return "друг"
}

func spreadDetails(spread content.Spread) string {
	return fmt.Sprintf(
		"%s *%s*\n\n%s\n\nВведите «да» для подтверждения записи\\.",
		spread.Emoji, escape(spread.Title), escape(spread.Description),
	)
}
