package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestSaveChatKeepsSection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveChat(ctx, &Chat{ID: 7, FirstName: "Asha", Section: "A"}); err != nil {
		t.Fatal(err)
	}
	// a later /start without argument must not forget the section
	if err := store.SaveChat(ctx, &Chat{ID: 7, FirstName: "Asha V"}); err != nil {
		t.Fatal(err)
	}

	chat, err := store.FindChat(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if want := (Chat{ID: 7, FirstName: "Asha V", Section: "A"}); *chat != want {
		t.Fatalf("expected %+v, got %+v", want, *chat)
	}

	if err := store.SaveChat(ctx, &Chat{ID: 7, FirstName: "Asha V", Section: "B"}); err != nil {
		t.Fatal(err)
	}
	chat, err = store.FindChat(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if chat.Section != "B" {
		t.Fatalf("expected section B, got %q", chat.Section)
	}
}

func TestFindChatNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.FindChat(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
}

func TestUpdatesOffset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	offset, err := store.GetUpdatesOffset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 0 {
		t.Fatalf("expected 0 before any update, got %d", offset)
	}

	if err := store.SetUpdatesOffset(ctx, 100); err != nil {
		t.Fatal(err)
	}
	offset, err = store.GetUpdatesOffset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 100 {
		t.Fatalf("expected 100, got %d", offset)
	}
}
