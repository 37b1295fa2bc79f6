package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var _ slog.Handler = &SlogHandler{}

type SlogHandler struct {
	notifier *Notifier
	next     slog.Handler
	mu       *sync.Mutex
}

func NewSlogHandler(notifier *Notifier, next slog.Handler) *SlogHandler {
	return &SlogHandler{
		notifier: notifier,
		next:     next,
		mu:       &sync.Mutex{},
	}
}

func (h *SlogHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

// Handle passes every record on and sends warnings and errors to the admin chat.
func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level < slog.LevelWarn {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.notifier.NotifySlogRecord(ctx, r); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SlogHandler{notifier: h.notifier, next: h.next.WithAttrs(attrs), mu: h.mu}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	return &SlogHandler{notifier: h.notifier, next: h.next.WithGroup(name), mu: h.mu}
}
