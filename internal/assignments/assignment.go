package assignments

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ID string

func NewID() ID {
	return ID(gonanoid.Must())
}

type Status string

const StatusPending Status = "pending"

type Assignment struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	SubjectCode string    `json:"subject_code"`
	DueDate     string    `json:"due_date"`
	Section     string    `json:"section"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Status      Status    `json:"status"`
}
