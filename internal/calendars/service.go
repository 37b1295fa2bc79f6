package calendars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/collegeos/internal/students"
	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

type StudentFinder interface {
	FindByID(ctx context.Context, id string) (*students.Student, error)
}

type TimetableProvider interface {
	Current() *timetable.Timetable
}

type Service struct {
	store      *Store
	students   StudentFinder
	timetables TimetableProvider
	clock      *timezone.Clock
}

func NewService(
	store *Store,
	students StudentFinder,
	timetables TimetableProvider,
	clock *timezone.Clock,
) *Service {
	return &Service{
		store:      store,
		students:   students,
		timetables: timetables,
		clock:      clock,
	}
}

// CreateCalendar returns the student's subscription, creating it on first use.
func (s *Service) CreateCalendar(ctx context.Context) (*Calendar, error) {
	student, ok := students.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("student missing from context")
	}
	existing, err := s.store.FindByStudent(ctx, student.ID)
	if err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find by student: %w", err)
	}
	cal := &Calendar{
		ID:        gonanoid.Must(),
		StudentID: student.ID,
	}
	if err := s.store.InsertCalendar(ctx, cal); err != nil {
		return nil, fmt.Errorf("insert calendar: %w", err)
	}
	return cal, nil
}

// WriteICal writes the weekly timetable of the calendar owner's section as
// recurring events.
func (s *Service) WriteICal(ctx context.Context, w io.Writer, id string) error {
	cal, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find by id %q: %w", id, err)
	}
	student, err := s.students.FindByID(ctx, cal.StudentID)
	if err != nil {
		return fmt.Errorf("find student %q: %w", cal.StudentID, err)
	}

	tt := s.timetables.Current()
	sectionID := student.Enrollment.Section

	icalendar := ics.NewCalendar()
	icalendar.SetMethod(ics.MethodPublish)
	icalendar.SetName(fmt.Sprintf("Timetable %s", sectionID))

	section, ok := tt.Section(sectionID)
	if !ok {
		return icalendar.SerializeTo(w)
	}

	// without a configured term the series starts this week
	from := tt.SemesterStart
	if from.IsZero() {
		now := s.clock.Now()
		from = now.AddDate(0, 0, -int(now.Weekday()))
	}
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.clock.Location())

	stamp := s.clock.Now()
	for offset := 0; offset < 7; offset++ {
		day := from.AddDate(0, 0, offset)
		for i, slot := range section.Day(day.Weekday()) {
			subject := tt.Subject(slot.SubjectCode)
			event := icalendar.AddEvent(fmt.Sprintf("%s-%s-%s-%d@collegeos", cal.ID, sectionID, day.Weekday(), i))
			event.SetDtStampTime(stamp)
			event.SetSummary(fmt.Sprintf("%s (%s)", subject.Name, slot.Type))
			event.SetDescription(fmt.Sprintf("%s, %s", subject.Code, subject.Instructor))
			event.SetLocation(slot.Room)
			event.SetStartAt(slot.Time.Start.On(day))
			event.SetEndAt(slot.Time.End.On(day))
			event.AddRrule("FREQ=WEEKLY")
		}
	}
	return icalendar.SerializeTo(w)
}
