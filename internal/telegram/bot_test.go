package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

type fakeAPI struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

type staticTimetable struct {
	t *timetable.Timetable
}

func (s staticTimetable) Current() *timetable.Timetable {
	return s.t
}

func command(chatID int64, text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		MessageID: 1,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: chatID, FirstName: "Asha"},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestCommandsUseSavedSection(t *testing.T) {
	api := &fakeAPI{}
	// Wednesday 08:00, before the first class.
	clock := timezone.Fixed(time.Date(2024, time.January, 3, 8, 0, 0, 0, time.UTC))
	bot := NewBot(api, newTestStore(t), staticTimetable{t: testTimetable(t)}, clock)
	ctx := context.Background()

	for _, text := range []string{"/next", "/start a", "/next", "/today B"} {
		if err := bot.handleCommand(ctx, command(5, text)); err != nil {
			t.Fatalf("%s: %v", text, err)
		}
	}

	want := []string{
		noSectionMessage,
		"Section A saved. Use /today or /next.",
		"Next: Compiler Design at 09:00 in B-101.",
		`No timetable for section "B".`,
	}
	if len(api.sent) != len(want) {
		t.Fatalf("expected %d replies, got %d", len(want), len(api.sent))
	}
	for i, msg := range api.sent {
		if msg.ChatID != 5 || msg.Text != want[i] {
			t.Fatalf("reply %d: expected %q to chat 5, got %q to chat %d", i, want[i], msg.Text, msg.ChatID)
		}
	}
}

func TestLogRecordsGoToAdminChatOnly(t *testing.T) {
	api := &fakeAPI{}
	clock := timezone.Fixed(time.Date(2024, time.January, 3, 8, 0, 0, 0, time.UTC))
	bot := NewBot(api, newTestStore(t), staticTimetable{t: testTimetable(t)}, clock)
	ctx := context.Background()

	// a student chat registers with the bot
	if err := bot.handleCommand(ctx, command(5, "/start A")); err != nil {
		t.Fatal(err)
	}
	api.sent = nil

	const adminChatID = 42
	logger := slog.New(NewSlogHandler(NewNotifier(api, adminChatID), slog.NewTextHandler(io.Discard, nil)))
	logger.Info("request", "status", 200)
	logger.Error("handle request", "student_id", "uid", "error", "boom")

	if len(api.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(api.sent))
	}
	if api.sent[0].ChatID != adminChatID {
		t.Fatalf("expected message to admin chat, got chat %d", api.sent[0].ChatID)
	}
}

func TestLogRecordsWithoutAdminChat(t *testing.T) {
	api := &fakeAPI{}
	logger := slog.New(NewSlogHandler(NewNotifier(api, 0), slog.NewTextHandler(io.Discard, nil)))
	logger.Error("handle request", "error", "boom")
	if len(api.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(api.sent))
	}
}
