package calendars

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func TestStoreFindByStudent(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	if _, err := store.FindByStudent(ctx, "uid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}

	inserted := &Calendar{ID: "cal", StudentID: "uid"}
	if err := store.InsertCalendar(ctx, inserted); err != nil {
		t.Fatal(err)
	}

	byStudent, err := store.FindByStudent(ctx, "uid")
	if err != nil {
		t.Fatal(err)
	}
	byID, err := store.FindByID(ctx, "cal")
	if err != nil {
		t.Fatal(err)
	}
	if *byStudent != *inserted || *byID != *inserted {
		t.Fatalf("expected %+v, got %+v and %+v", *inserted, *byStudent, *byID)
	}

	if _, err := store.FindByStudent(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
}
