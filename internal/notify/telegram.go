// Package notify posts plain text messages to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is Telegram's limit for one text message, in characters.
const maxMessageLen = 4096

// Notifier delivers a text message somewhere a person will read it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Sender is the part of *tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    Sender
	chatID int64
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram connects to the Bot API with token. The call verifies the token
// against Telegram.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("missing TELEGRAM_BOT_TOKEN")
	}
	if chatID == 0 {
		return nil, errors.New("missing TELEGRAM_CHAT_ID")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	api.Debug = false
	slog.Info("Telegram notifier ready", "bot", api.Self.UserName, "chat_id", chatID)
	return NewTelegramWithSender(api, chatID), nil
}

func NewTelegramWithSender(api Sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

// Notify sends text, split into several messages when it is too long.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	for _, part := range split(text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := t.api.Send(msg); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// split cuts s into chunks of at most n runes, preferring line breaks.
func split(s string, n int) []string {
	if s == "" {
		return nil
	}
	var out []string
	for utf8.RuneCountInString(s) > n {
		runes := []rune(s)
		cut := n
		for i := n - 1; i >= n/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		out = append(out, string(runes[:cut]))
		s = string(runes[cut:])
	}
	return append(out, s)
}

// Nop discards every message. It stands in when Telegram is not configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
