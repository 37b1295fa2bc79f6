package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends log records to the operators' chat only.
type Notifier struct {
	api    API
	chatID int64
}

func NewNotifier(api API, adminChatID int64) *Notifier {
	return &Notifier{
		api:    api,
		chatID: adminChatID,
	}
}

func (n *Notifier) NotifySlogRecord(_ context.Context, r slog.Record) error {
	if n.chatID == 0 {
		return nil
	}
	var message strings.Builder
	fmt.Fprintf(&message, "[%s] %s", r.Level, r.Message)
	r.Attrs(func(attr slog.Attr) bool {
		fmt.Fprintf(&message, "\n%s: %s", attr.Key, attr.Value)
		return true
	})
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, message.String())); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
