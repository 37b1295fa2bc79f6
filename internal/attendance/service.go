package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/collegeos/internal/students"
	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

type StudentStore interface {
	FindByID(ctx context.Context, id string) (*students.Student, error)
	SetAttendance(ctx context.Context, id string, subjectCode string, count int) error
}

type TimetableProvider interface {
	Current() *timetable.Timetable
}

type Service struct {
	logger     *slog.Logger
	store      StudentStore
	timetables TimetableProvider
	clock      *timezone.Clock
}

func NewService(
	logger *slog.Logger,
	store StudentStore,
	timetables TimetableProvider,
	clock *timezone.Clock,
) *Service {
	return &Service{
		logger:     logger,
		store:      store,
		timetables: timetables,
		clock:      clock,
	}
}

type Row struct {
	Code string `json:"code"`
	Name string `json:"name"`
	SubjectAttendance
}

type Report struct {
	State        State   `json:"state"`
	Section      string  `json:"section"`
	Subjects     []Row   `json:"subjects"`
	Overall      float64 `json:"overall"`
	GrandPresent int     `json:"grand_present"`
	GrandTotal   int     `json:"grand_total"`
}

// Report computes attendance of the student from the full semester range.
// A student whose section has no timetable gets an empty report.
func (s *Service) Report(ctx context.Context, student *students.Student) (*Report, error) {
	tt := s.timetables.Current()
	report := &Report{
		State:    StateNoTimetable,
		Section:  student.Enrollment.Section,
		Subjects: []Row{},
	}

	section, ok := tt.Section(student.Enrollment.Section)
	if !ok {
		return report, nil
	}

	totals, err := OccurrenceTotals(section, tt.SemesterStart, s.clock.Now())
	if errors.Is(err, ErrMissingSemesterStart) {
		report.State = StateNoSemesterStart
		return report, err
	} else if err != nil {
		return nil, fmt.Errorf("occurrence totals: %w", err)
	}

	perSubject := PerSubject(totals, Record(student.Attendance))
	for code, row := range perSubject {
		report.Subjects = append(report.Subjects, Row{
			Code:              code,
			Name:              tt.Subject(code).Name,
			SubjectAttendance: row,
		})
	}
	slices.SortFunc(report.Subjects, func(a, b Row) int {
		return strings.Compare(a.Code, b.Code)
	})

	report.State = StateReady
	report.GrandPresent, report.GrandTotal = Sum(perSubject)
	report.Overall = Overall(perSubject)
	return report, nil
}

// MarkPresent increments the student's present count for the subject and
// persists it. When persisting fails the incremented record is still
// returned along with the error.
func (s *Service) MarkPresent(ctx context.Context, studentID string, subjectCode string) (Record, error) {
	student, err := s.store.FindByID(ctx, studentID)
	if errors.Is(err, students.ErrNotFound) {
		student = &students.Student{ID: studentID}
	} else if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}

	if err := s.checkSubject(student, subjectCode); err != nil {
		return nil, err
	}

	record := MarkPresent(Record(student.Attendance), subjectCode)
	if err := s.store.SetAttendance(ctx, studentID, subjectCode, record[subjectCode]); err != nil {
		return record, fmt.Errorf("set attendance: %w", err)
	}

	s.logger.InfoContext(ctx, "marked present",
		"student_id", studentID,
		"subject", subjectCode,
		"present", record[subjectCode])
	return record, nil
}

func (s *Service) checkSubject(student *students.Student, subjectCode string) error {
	if strings.TrimSpace(subjectCode) == "" {
		return fmt.Errorf("%w: empty code", ErrUnknownSubject)
	}
	tt := s.timetables.Current()
	section, ok := tt.Section(student.Enrollment.Section)
	if !ok {
		return nil
	}
	if _, ok := tt.LookupSubject(subjectCode); ok {
		return nil
	}
	if slices.Contains(section.SubjectCodes(), subjectCode) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownSubject, subjectCode)
}

// Project computes the target projection over the student's grand totals.
func (s *Service) Project(ctx context.Context, student *students.Student, target float64) (*Projection, error) {
	report, err := s.Report(ctx, student)
	if err != nil {
		return nil, err
	}
	projection, err := ProjectTarget(report.GrandPresent, report.GrandTotal, target)
	if err != nil {
		return nil, err
	}
	return &projection, nil
}
