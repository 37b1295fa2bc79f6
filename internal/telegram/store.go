package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

// SaveChat stores chat. An empty section keeps the section stored before.
func (s *Store) SaveChat(_ context.Context, chat *Chat) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if chat.Section == "" {
			previous, err := getChat(txn, chat.ID)
			if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if previous != nil {
				chat.Section = previous.Section
			}
		}
		data, err := json.Marshal(chat)
		if err != nil {
			return err
		}
		return txn.Set(chatKey(chat.ID), data)
	})
}

func (s *Store) FindChat(_ context.Context, id int64) (*Chat, error) {
	var chat *Chat
	if err := s.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = getChat(txn, id)
		return err
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return chat, nil
}

func getChat(txn *badger.Txn, id int64) (*Chat, error) {
	item, err := txn.Get(chatKey(id))
	if err != nil {
		return nil, err
	}
	var chat Chat
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &chat)
	}); err != nil {
		return nil, fmt.Errorf("decode chat %d: %w", id, err)
	}
	return &chat, nil
}

func (s *Store) SetUpdatesOffset(_ context.Context, offset int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(offsetKey, []byte(strconv.Itoa(offset)))
	})
}

// GetUpdatesOffset returns 0 until an offset was stored.
func (s *Store) GetUpdatesOffset(_ context.Context) (int, error) {
	var offset int
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(offsetKey)
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			offset, err = strconv.Atoi(string(value))
			return err
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return offset, nil
}

var offsetKey = []byte("telegram/updates/offset")

func chatKey(id int64) []byte {
	return []byte(fmt.Sprintf("telegram/chats/%d", id))
}
