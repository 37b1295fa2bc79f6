package students

import (
	"context"
	"errors"
	"fmt"

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

// Upsert writes the profile, keeping the attendance already stored for it.
func (s *Store) Upsert(_ context.Context, student *Student) error {
	return s.db.Update(func(txn *badger.Txn) error {
		existing, err := get(txn, student.ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil && existing.Attendance != nil {
			student.Attendance = existing.Attendance
		}
		return set(txn, student)
	})
}

func (s *Store) FindByID(_ context.Context, id string) (*Student, error) {
	var student *Student
	if err := s.db.View(func(txn *badger.Txn) error {
		var err error
		student, err = get(txn, id)
		return err
	}); err != nil {
		return nil, err
	}
	return student, nil
}

// SetAttendance writes a single attendance field of the profile. The profile
// document is created if it does not exist yet.
func (s *Store) SetAttendance(_ context.Context, id string, subjectCode string, count int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		student, err := get(txn, id)
		if errors.Is(err, ErrNotFound) {
			student = &Student{ID: id}
		} else if err != nil {
			return err
		}
		if student.Attendance == nil {
			student.Attendance = map[string]int{}
		}
		student.Attendance[subjectCode] = count
		return set(txn, student)
	})
}

func get(txn *badger.Txn, id string) (*Student, error) {
	item, err := txn.Get(idKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	var student Student
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &student)
	}); err != nil {
		return nil, err
	}
	return &student, nil
}

func set(txn *badger.Txn, student *Student) error {
	data, err := json.Marshal(student)
	if err != nil {
		return err
	}
	return txn.Set(idKey(student.ID), data)
}

func idKey(id string) []byte {
	return []byte(fmt.Sprintf("students/%s", id))
}
