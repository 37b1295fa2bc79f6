package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

const noSectionMessage = "Send /start <section> first, for example /start A."

type TimetableProvider interface {
	Current() *timetable.Timetable
}

// Bot answers students' schedule commands.
type Bot struct {
	api        API
	store      *Store
	timetables TimetableProvider
	clock      *timezone.Clock
}

func NewBot(api API, store *Store, timetables TimetableProvider, clock *timezone.Clock) *Bot {
	return &Bot{
		api:        api,
		store:      store,
		timetables: timetables,
		clock:      clock,
	}
}

func (b *Bot) Listen(ctx context.Context) error {
	offset, err := b.store.GetUpdatesOffset(ctx)
	if err != nil {
		return fmt.Errorf("get updates offset: %w", err)
	}
	updates := b.api.GetUpdatesChan(tgbotapi.UpdateConfig{Offset: offset, Timeout: 60})
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.InfoContext(ctx, "stopping listening for telegram updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.IsCommand() {
				if err := b.handleCommand(ctx, update.Message); err != nil {
					slog.ErrorContext(ctx, "handle command", "command", update.Message.Command(), "error", err)
				}
			}

			if err := b.store.SetUpdatesOffset(ctx, update.UpdateID+1); err != nil {
				slog.ErrorContext(ctx, "set updates offset", "error", err)
			}
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(ctx, message)
	case "today", "next":
		section, err := b.section(ctx, message)
		if err != nil {
			return err
		}
		if section == "" {
			return b.reply(message, noSectionMessage)
		}
		tt, now := b.timetables.Current(), b.clock.Now()
		if message.Command() == "today" {
			return b.reply(message, todayMessage(tt, section, now))
		}
		return b.reply(message, nextMessage(tt, section, now))
	default:
		return nil
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	chat := Chat{
		ID:        message.Chat.ID,
		FirstName: message.Chat.FirstName,
		Section:   sectionArgument(message),
	}
	if err := b.store.SaveChat(ctx, &chat); err != nil {
		return fmt.Errorf("save chat: %w", err)
	}
	if chat.Section == "" {
		return b.reply(message, noSectionMessage)
	}
	return b.reply(message, fmt.Sprintf("Section %s saved. Use /today or /next.", chat.Section))
}

// section is the command argument, or the section saved for the chat.
func (b *Bot) section(ctx context.Context, message *tgbotapi.Message) (string, error) {
	if section := sectionArgument(message); section != "" {
		return section, nil
	}
	chat, err := b.store.FindChat(ctx, message.Chat.ID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("find chat: %w", err)
	}
	return chat.Section, nil
}

func (b *Bot) reply(message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func sectionArgument(message *tgbotapi.Message) string {
	return strings.ToUpper(strings.TrimSpace(message.CommandArguments()))
}
