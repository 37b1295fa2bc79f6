package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

var ErrNotFound = errors.New("not found")

func (s *Store) Insert(_ context.Context, session *Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}
		entry := badger.NewEntry(idKey(session.ID), data)
		if ttl := time.Until(session.Expires); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// FindByID returns the session if it did not expire.
func (s *Store) FindByID(_ context.Context, id ID) (*Session, error) {
	var session Session
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &session)
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !session.Expires.After(time.Now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *Store) Delete(_ context.Context, id ID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(idKey(id))
	})
}

func idKey(id ID) []byte {
	return []byte(fmt.Sprintf("sessions/%s", id))
}
