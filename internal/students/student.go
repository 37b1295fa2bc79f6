package students

import (
	"context"
	"time"
)

type Student struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Enrollment Enrollment     `json:"enrollment"`
	Attendance map[string]int `json:"attendance,omitempty"`
	LastLogin  time.Time      `json:"last_login"`
}

type key struct{}

var studentKey key

func NewContext(ctx context.Context, student *Student) context.Context {
	return context.WithValue(ctx, studentKey, student)
}

func FromContext(ctx context.Context) (*Student, bool) {
	s, ok := ctx.Value(studentKey).(*Student)
	return s, ok
}
