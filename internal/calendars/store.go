package calendars

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

var ErrNotFound = errors.New("not found")

// Store keeps calendars under their id and indexes them by student, so a
// student has one subscription url.
type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) InsertCalendar(_ context.Context, calendar *Calendar) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(calendar)
		if err != nil {
			return err
		}
		if err := txn.Set(idKey(calendar.ID), data); err != nil {
			return err
		}
		return txn.Set(studentKey(calendar.StudentID), []byte(calendar.ID))
	})
}

func (s *Store) FindByID(_ context.Context, id string) (*Calendar, error) {
	var calendar *Calendar
	if err := s.db.View(func(txn *badger.Txn) error {
		var err error
		calendar, err = get(txn, id)
		return err
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return calendar, nil
}

func (s *Store) FindByStudent(_ context.Context, studentID string) (*Calendar, error) {
	var calendar *Calendar
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(studentKey(studentID))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		calendar, err = get(txn, string(id))
		return err
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return calendar, nil
}

func get(txn *badger.Txn, id string) (*Calendar, error) {
	item, err := txn.Get(idKey(id))
	if err != nil {
		return nil, err
	}
	var calendar Calendar
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &calendar)
	}); err != nil {
		return nil, fmt.Errorf("decode calendar %q: %w", id, err)
	}
	return &calendar, nil
}

func idKey(id string) []byte {
	return []byte(fmt.Sprintf("calendars/id/%s", id))
}

func studentKey(studentID string) []byte {
	return []byte(fmt.Sprintf("calendars/student/%s", studentID))
}
