package assignments

import (
	"context"
	"fmt"

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

func (s *Store) Insert(_ context.Context, assignment *Assignment) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(assignment)
		if err != nil {
			return err
		}
		return txn.Set(idKey(assignment.Section, assignment.ID), data)
	})
}

func (s *Store) ListBySection(_ context.Context, section string) ([]*Assignment, error) {
	assignments := []*Assignment{}
	if err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := sectionPrefix(section)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(value []byte) error {
				assignment := &Assignment{}
				if err := json.Unmarshal(value, assignment); err != nil {
					return err
				}
				assignments = append(assignments, assignment)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return assignments, nil
}

func sectionPrefix(section string) []byte {
	return []byte(fmt.Sprintf("assignments/%s/", section))
}

func idKey(section string, id ID) []byte {
	return []byte(fmt.Sprintf("assignments/%s/%s", section, id))
}
