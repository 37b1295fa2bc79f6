package avatars

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// MaxSize is the largest accepted image.
const MaxSize = 512 << 10

// contentTypes are the raster formats accepted for upload.
var contentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

var (
	ErrNotFound    = errors.New("not found")
	ErrTooLarge    = errors.New("image too large")
	ErrUnsupported = errors.New("unsupported content type")
)

type Avatar struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Put(_ context.Context, studentID string, avatar *Avatar) error {
	if len(avatar.Data) > MaxSize {
		return ErrTooLarge
	}
	contentType, _, err := mime.ParseMediaType(avatar.ContentType)
	if err != nil || !contentTypes[contentType] {
		return fmt.Errorf("%w: %q", ErrUnsupported, avatar.ContentType)
	}
	avatar.ContentType = contentType
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(avatar)
		if err != nil {
			return err
		}
		return txn.Set(idKey(studentID), data)
	})
}

func (s *Store) Get(_ context.Context, studentID string) (*Avatar, error) {
	var avatar Avatar
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(studentID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &avatar)
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &avatar, nil
}

// Initials returns up to two leading letters of name's words, shown when
// no image is stored.
func Initials(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		initials = append(initials, unicode.ToUpper(r))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}

func idKey(studentID string) []byte {
	return []byte(fmt.Sprintf("avatars/%s", studentID))
}
