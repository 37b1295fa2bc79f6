package sessions

import (
	"context"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ID string

func NewID() ID {
	return ID(gonanoid.Must())
}

// Session is created at login and deleted at logout.
type Session struct {
	ID        ID        `json:"id"`
	StudentID string    `json:"student_id"`
	Expires   time.Time `json:"expires"`
}

func New(studentID string, ttl time.Duration) *Session {
	return &Session{
		ID:        NewID(),
		StudentID: studentID,
		Expires:   time.Now().Add(ttl),
	}
}

type key struct{}

var sessionKey key

func NewContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
