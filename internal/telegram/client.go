package telegram

import (
	"context"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/model"
)

// botAPI is the slice of *tgbotapi.BotAPI the client uses, split out so
// tests can run without a live bot token.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

var (
	_ model.Dispatcher       = (*Client)(nil)
	_ model.MembershipOracle = (*Client)(nil)
)

// Client wraps the bot API. It is the nurture dispatcher and the
// membership oracle of the system, and the raw send surface for the
// interactive handlers.
type Client struct {
	api     botAPI
	channel string
	logger  *logger.Logger
}

// NewClient authorizes against the bot API. channel is the associated
// channel username ("@...") used for membership lookups.
func NewClient(token, channel string, logger *logger.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("telegram: authorized", "account", api.Self.UserName)

	return NewClientWithAPI(api, channel, logger), nil
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(api botAPI, channel string, logger *logger.Logger) *Client {
	return &Client{
		api:     api,
		channel: channel,
		logger:  logger,
	}
}

// SendText delivers one nurture message. The text is escaped wholesale;
// drip templates carry no markup of their own.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// SendPhoto delivers an image with a pre-escaped MarkdownV2 caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, caption string, name string, image io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileReader{Name: name, Reader: image})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := c.api.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}

	return nil
}

// SendPhotoToChannel publishes an image to the associated channel.
func (c *Client) SendPhotoToChannel(ctx context.Context, caption string, name string, image io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	photo := tgbotapi.NewPhotoToChannel(c.channel, tgbotapi.FileReader{Name: name, Reader: image})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := c.api.Send(photo); err != nil {
		return fmt.Errorf("failed to publish photo: %w", err)
	}

	return nil
}

// LookupMembership returns the user's raw chat-member status in the
// associated channel.
func (c *Client) LookupMembership(ctx context.Context, telegramID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: c.channel,
			UserID:             telegramID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat member: %w", err)
	}

	return member.Status, nil
}

// reply sends a rich MarkdownV2 message, optionally with an inline
// keyboard. Callers author the markup and escape dynamic values.
func (c *Client) reply(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

func (c *Client) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	var msg tgbotapi.Chattable
	if keyboard != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard)
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		msg = edit
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeMarkdownV2
		msg = edit
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

func (c *Client) answerCallback(id string, text string, alert bool) {
	var cb tgbotapi.CallbackConfig
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(id, text)
	} else {
		cb = tgbotapi.NewCallback(id, text)
	}

	if _, err := c.api.Request(cb); err != nil {
		c.logger.Warn("telegram: failed to answer callback", "error", err.Error())
	}
}

// escape makes a dynamic value safe inside MarkdownV2 markup.
func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text)
}
