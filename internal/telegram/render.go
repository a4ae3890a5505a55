package telegram

import (
	"fmt"
	"strings"

	"github.com/taroverse/engagebot/internal/model"
	"github.com/taroverse/engagebot/internal/service"
)

func renderSummary(s service.Summary) string {
	return fmt.Sprintf(
		"📊 *Статистика*\n\n"+
			"Всего пользователей: %d\n"+
			"Подписаны на канал: %d\n"+
			"Не подписаны: %d\n"+
			"Действий за сутки: %d",
		s.TotalUsers, s.Members, s.NonMembers, s.ActionsLastDay,
	)
}

func renderUsers(users []model.User) string {
	if len(users) == 0 {
		return "👥 Пользователей пока нет\\."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 *Пользователи* \\(%d\\):\n\n", len(users)))
	for _, u := range users {
		mark := "○"
		if u.Segment == model.SegmentMember {
			mark = "●"
		}
		name := u.FullName()
		if u.Username != "" {
			name = "@" + u.Username
		}
		sb.WriteString(fmt.Sprintf("%s %s — %s\n",
			mark, escape(name), escape(u.FirstContactAt.Format("02.01.2006"))))
	}
	return sb.String()
}

func renderDrip(stats []model.DripOffsetStat) string {
	if len(stats) == 0 {
		return "📬 Рассылка ещё не отправлялась\\."
	}

	var sb strings.Builder
	sb.WriteString("📬 *Рассылка по дням*\n\n")
	for _, s := range stats {
		label := "не подписан"
		if s.Segment == model.SegmentMember {
			label = "подписан"
		}
		sb.WriteString(fmt.Sprintf(
			"День %d \\(%s\\): отправлено %d, ошибок %d, подписалось после %d\n",
			s.DayOffset, label, s.Sent, s.Failed, s.Conversions,
		))
	}
	return sb.String()
}
