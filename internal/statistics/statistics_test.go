package statistics

import (
	"errors"
	"testing"
	"time"

	"github.com/collegeos/internal/attendance"
	"github.com/collegeos/internal/timetable"
)

func testSection() *timetable.Section {
	slot := func(code string) timetable.Slot {
		return timetable.Slot{SubjectCode: code, Type: timetable.SlotTypeLecture}
	}
	return &timetable.Section{
		ID: "A",
		Days: map[time.Weekday][]timetable.Slot{
			time.Monday:    {slot("CS501"), slot("CS502")},
			time.Wednesday: {slot("CS501")},
		},
	}
}

func TestCalculateWeeks(t *testing.T) {
	// Monday 2024-01-01 is the first day of ISO week 1.
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC)

	weeks, err := CalculateWeeks(testSection(), start, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	if weeks[0].Number != 1 || weeks[0].Total != 3 {
		t.Fatalf("unexpected first week %+v", weeks[0])
	}
	if weeks[0].Classes[0] != (Class{SubjectCode: "CS501", Total: 2}) {
		t.Fatalf("unexpected classes %+v", weeks[0].Classes)
	}
	if weeks[1].Number != 2 || weeks[1].Total != 2 {
		t.Fatalf("unexpected second week %+v", weeks[1])
	}
}

func TestCalculateWeeksYearBoundary(t *testing.T) {
	// 2024-12-30 belongs to ISO week 1 of 2025.
	start := time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	weeks, err := CalculateWeeks(testSection(), start, start)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 1 || weeks[0].Year != 2025 || weeks[0].Number != 1 {
		t.Fatalf("unexpected weeks %+v", weeks)
	}
}

func TestCalculateWeeksMissingStart(t *testing.T) {
	_, err := CalculateWeeks(testSection(), time.Time{}, time.Now())
	if !errors.Is(err, attendance.ErrMissingSemesterStart) {
		t.Fatalf("expected ErrMissingSemesterStart, got %v", err)
	}
}
