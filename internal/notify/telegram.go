// Package notify содержит внешние получатели событий о новых бейджах.
// telegram.go объявляет бейджи в Telegram-чат сообщества.
package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"codeblooded.dev/clout/internal/features/badges"
)

// Иконки редкости для сообщений.
var tierIcons = map[badges.Tier]string{
	badges.TierBronze:    "🥉",
	badges.TierSilver:    "🥈",
	badges.TierGold:      "🥇",
	badges.TierPlatinum:  "💎",
	badges.TierLegendary: "👑",
}

// Telegram отправляет сообщение о каждом новом бейдже в один чат.
type Telegram struct {
	bot    *telego.Bot
	chatID int64
}

// NewTelegram создаёт получателя. opts пробрасываются в telego (например, другой API-сервер).
func NewTelegram(token string, chatID int64, opts ...telego.BotOption) (*Telegram, error) {
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать Telegram-бота: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify отправляет сообщение в чат.
func (t *Telegram) Notify(ctx context.Context, u badges.Unlock) error {
	msg := tu.Message(tu.ID(t.chatID), FormatUnlock(u)).WithParseMode(telego.ModeHTML)
	if _, err := t.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

// FormatUnlock собирает текст сообщения о бейдже (HTML-разметка Telegram).
func FormatUnlock(u badges.Unlock) string {
	icon := tierIcons[u.Badge.Tier]
	if icon == "" {
		icon = "🏆"
	}
	text := fmt.Sprintf("%s <b>%s</b> получает бейдж «%s»",
		icon, html.EscapeString(u.UserID), html.EscapeString(u.Badge.Name))
	if u.Badge.Description != "" && !u.Badge.Hidden {
		text += "\n<i>" + html.EscapeString(u.Badge.Description) + "</i>"
	}
	return text
}
