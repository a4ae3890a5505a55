package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taroverse/engagebot/internal/content"
)

// Callback data values understood by the handlers.
const (
	cbSubscribe   = "subscribe"
	cbDrawCard    = "draw:card"
	cbDrawDice    = "draw:dice"
	cbSpreadsMenu = "menu:spreads"
	cbSpread      = "spread:" // prefix, followed by the spread code

	cbAdminStats      = "adm:stats"
	cbAdminUsers      = "adm:users"
	cbAdminDrip       = "adm:drip"
	cbAdminPublish    = "adm:publish_card"
	cbAdminResetQuota = "adm:reset_quota"
	cbAdminBack       = "adm:back"
)

func mainKeyboard(channelLink string, cardLeft, diceLeft int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Перейти в канал", channelLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 Получать подсказки в ЛС", cbSubscribe),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🃏 Метафорическая карта (%d)", cardLeft), cbDrawCard),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🎲 Помощь кубика (%d)", diceLeft), cbDrawDice),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Запись на расклад", cbSpreadsMenu),
		),
	)
}

func adminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", cbAdminStats),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Список пользователей", cbAdminUsers),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Статистика рассылки", cbAdminDrip),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Опубликовать карту дня", cbAdminPublish),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Сбросить попытки", cbAdminResetQuota),
		),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", cbAdminBack),
		),
	)
}

func spreadsKeyboard(spreads []content.Spread) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(spreads))
	for _, sp := range spreads {
		label := fmt.Sprintf("%s %s", sp.Emoji, sp.Title)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbSpread+sp.Code),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
