package assignments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/collegeos/internal/students"
	"github.com/collegeos/internal/timetable"
)

var ErrUnknownSubject = errors.New("unknown subject")

type TimetableProvider interface {
	Current() *timetable.Timetable
}

type Service struct {
	logger     *slog.Logger
	store      *Store
	timetables TimetableProvider
	validate   *validator.Validate
}

func NewService(
	logger *slog.Logger,
	store *Store,
	timetables TimetableProvider,
) *Service {
	return &Service{
		logger:     logger,
		store:      store,
		timetables: timetables,
		validate:   validator.New(),
	}
}

type CreateInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	SubjectCode string `json:"subject_code" validate:"required"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// Create adds an assignment for the student's section.
func (s *Service) Create(ctx context.Context, student *students.Student, input CreateInput) (*Assignment, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.SubjectCode = strings.TrimSpace(input.SubjectCode)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if _, ok := s.timetables.Current().LookupSubject(input.SubjectCode); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, input.SubjectCode)
	}

	assignment := &Assignment{
		ID:          NewID(),
		Title:       input.Title,
		SubjectCode: input.SubjectCode,
		DueDate:     input.DueDate,
		Section:     student.Enrollment.Section,
		CreatedBy:   student.ID,
		CreatedAt:   time.Now(),
		Status:      StatusPending,
	}
	if err := s.store.Insert(ctx, assignment); err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	s.logger.InfoContext(ctx, "assignment created", "assignment_id", assignment.ID, "section", assignment.Section)
	return assignment, nil
}

// List returns assignments of the student's section, earliest due first.
func (s *Service) List(ctx context.Context, student *students.Student) ([]*Assignment, error) {
	assignments, err := s.store.ListBySection(ctx, student.Enrollment.Section)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	slices.SortFunc(assignments, func(a, b *Assignment) int {
		if c := strings.Compare(a.DueDate, b.DueDate); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return assignments, nil
}
