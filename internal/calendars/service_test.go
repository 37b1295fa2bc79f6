package calendars

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/collegeos/internal/students"
	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

type staticTimetable struct {
	t *timetable.Timetable
}

func (s staticTimetable) Current() *timetable.Timetable {
	return s.t
}

func TestWriteICal(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	studentsStore := students.NewStore(db)
	ctx := context.Background()
	student := &students.Student{ID: "uid", Enrollment: students.Enrollment{Section: "A"}}
	if err := studentsStore.Upsert(ctx, student); err != nil {
		t.Fatal(err)
	}

	tt := &timetable.Timetable{
		SemesterStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Subjects: []timetable.Subject{
			{Code: "CS501", Name: "Compiler Design", Instructor: "Dr. Rao"},
		},
		Sections: map[string]*timetable.Section{
			"A": {
				ID: "A",
				Days: map[time.Weekday][]timetable.Slot{
					time.Wednesday: {{
						Time: timetable.TimeRange{
							Start: timetable.Clock{Hour: 9},
							End:   timetable.Clock{Hour: 10},
						},
						SubjectCode: "CS501",
						Room:        "B-101",
						Type:        timetable.SlotTypeLecture,
					}},
				},
			},
		},
	}
	clock := timezone.Fixed(time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC))
	service := NewService(NewStore(db), studentsStore, staticTimetable{t: tt}, clock)

	cal, err := service.CreateCalendar(students.NewContext(ctx, student))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := service.WriteICal(ctx, &buf, cal.ID); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"Compiler Design (Lecture)",
		"B-101",
		"FREQ=WEEKLY",
		"20240103T090000Z",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Count(out, "BEGIN:VEVENT") != 1 {
		t.Fatalf("expected 1 event in:\n%s", out)
	}

	if err := service.WriteICal(ctx, &buf, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
}

func TestCreateCalendarRequiresStudent(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	service := NewService(NewStore(db), students.NewStore(db), staticTimetable{t: timetable.Empty()}, timezone.Fixed(time.Now()))
	if _, err := service.CreateCalendar(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateCalendarReusesSubscription(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	service := NewService(NewStore(db), students.NewStore(db), staticTimetable{t: timetable.Empty()}, timezone.Fixed(time.Now()))
	ctx := students.NewContext(context.Background(), &students.Student{ID: "uid"})

	first, err := service.CreateCalendar(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := service.CreateCalendar(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same subscription, got %q and %q", first.ID, second.ID)
	}

	other, err := service.CreateCalendar(students.NewContext(context.Background(), &students.Student{ID: "other"}))
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == first.ID {
		t.Fatal("expected a separate subscription per student")
	}
}
