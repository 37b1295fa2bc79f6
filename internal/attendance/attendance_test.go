package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/collegeos/internal/timetable"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func mondayOnly(code string) *timetable.Section {
	return &timetable.Section{
		ID: "A",
		Days: map[time.Weekday][]timetable.Slot{
			time.Monday: {{SubjectCode: code}},
		},
	}
}

func weekSection() *timetable.Section {
	return &timetable.Section{
		ID: "A",
		Days: map[time.Weekday][]timetable.Slot{
			time.Monday:    {{SubjectCode: "CS501"}, {SubjectCode: "CS502"}},
			time.Tuesday:   {{SubjectCode: "CS503"}},
			time.Wednesday: {{SubjectCode: "CS501"}},
			time.Friday:    {{SubjectCode: "CS502"}, {SubjectCode: "CS502"}},
		},
	}
}

func TestEndToEnd(t *testing.T) {
	totals, err := OccurrenceTotals(mondayOnly("CS501"), date(2024, time.January, 1), date(2024, time.January, 15))
	if err != nil {
		t.Fatal(err)
	}
	if totals["CS501"] != 3 {
		t.Fatalf("expected 3 classes, got %d", totals["CS501"])
	}

	perSubject := PerSubject(totals, Record{"CS501": 2})
	if got := perSubject["CS501"].Percent; got != 66.7 {
		t.Fatalf("expected 66.7%%, got %v", got)
	}
	if got := Overall(perSubject); got != 66.7 {
		t.Fatalf("expected overall 66.7%%, got %v", got)
	}

	present, total := Sum(perSubject)
	projection, err := ProjectTarget(present, total, 75)
	if err != nil {
		t.Fatal(err)
	}
	if projection != (Projection{Kind: ProjectionMustAttend, Count: 1}) {
		t.Fatalf("unexpected projection %+v", projection)
	}
}

func TestOccurrenceTotalsIncludesToday(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}
	// early Monday morning in campus time is still Monday
	now := time.Date(2024, time.January, 8, 0, 30, 0, 0, kolkata)
	totals, err := OccurrenceTotals(mondayOnly("CS501"), date(2024, time.January, 1), now)
	if err != nil {
		t.Fatal(err)
	}
	if totals["CS501"] != 2 {
		t.Fatalf("expected 2 classes, got %d", totals["CS501"])
	}
}

func TestOccurrenceTotalsWeek(t *testing.T) {
	// Monday 2024-01-01 to Sunday 2024-01-07
	totals, err := OccurrenceTotals(weekSection(), date(2024, time.January, 1), date(2024, time.January, 7))
	if err != nil {
		t.Fatal(err)
	}
	want := Totals{"CS501": 2, "CS502": 3, "CS503": 1}
	if len(totals) != len(want) {
		t.Fatalf("expected %v, got %v", want, totals)
	}
	for code, n := range want {
		if totals[code] != n {
			t.Fatalf("%s: expected %d, got %d", code, n, totals[code])
		}
	}
}

func TestOccurrenceTotalsLeapYear(t *testing.T) {
	section := &timetable.Section{
		Days: map[time.Weekday][]timetable.Slot{
			time.Thursday: {{SubjectCode: "MA201"}},
		},
	}
	// 2024-02-29 is a Thursday, followed by 2024-03-07.
	totals, err := OccurrenceTotals(section, date(2024, time.February, 27), date(2024, time.March, 7))
	if err != nil {
		t.Fatal(err)
	}
	if totals["MA201"] != 2 {
		t.Fatalf("expected 2 classes, got %d", totals["MA201"])
	}

	// across a year boundary
	totals, err = OccurrenceTotals(mondayOnly("CS501"), date(2023, time.December, 25), date(2024, time.January, 1))
	if err != nil {
		t.Fatal(err)
	}
	if totals["CS501"] != 2 {
		t.Fatalf("expected 2 classes, got %d", totals["CS501"])
	}
}

func TestOccurrenceTotalsZeroRange(t *testing.T) {
	totals, err := OccurrenceTotals(weekSection(), date(2024, time.February, 1), date(2024, time.January, 15))
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"CS501", "CS502", "CS503"} {
		if totals[code] != 0 {
			t.Fatalf("%s: expected 0, got %d", code, totals[code])
		}
	}
}

func TestOccurrenceTotalsMonotonic(t *testing.T) {
	start := date(2024, time.January, 1)
	var previous Totals
	for now := start.AddDate(0, 0, -3); now.Before(start.AddDate(0, 0, 60)); now = now.AddDate(0, 0, 1) {
		totals, err := OccurrenceTotals(weekSection(), start, now)
		if err != nil {
			t.Fatal(err)
		}
		for code, n := range previous {
			if totals[code] < n {
				t.Fatalf("%s on %s: decreased from %d to %d", code, now.Format(time.DateOnly), n, totals[code])
			}
		}
		previous = totals
	}
}

func TestOccurrenceTotalsMissingSemesterStart(t *testing.T) {
	if _, err := OccurrenceTotals(weekSection(), time.Time{}, date(2024, time.January, 1)); !errors.Is(err, ErrMissingSemesterStart) {
		t.Fatalf("expected %q, got %v", ErrMissingSemesterStart, err)
	}
}

func TestOccurrenceTotalsNoSection(t *testing.T) {
	totals, err := OccurrenceTotals(nil, date(2024, time.January, 1), date(2024, time.January, 15))
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected empty totals, got %v", totals)
	}
	perSubject := PerSubject(totals, nil)
	if len(perSubject) != 0 {
		t.Fatalf("expected empty rows, got %v", perSubject)
	}
	if got := Overall(perSubject); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestPerSubject(t *testing.T) {
	perSubject := PerSubject(Totals{"CS501": 10, "CS502": 4}, Record{"CS501": 9, "CS999": 2})

	if got := perSubject["CS501"]; got != (SubjectAttendance{Present: 9, Total: 10, Percent: 90}) {
		t.Fatalf("unexpected CS501 %+v", got)
	}
	if got := perSubject["CS502"]; got != (SubjectAttendance{Present: 0, Total: 4, Percent: 0}) {
		t.Fatalf("unexpected CS502 %+v", got)
	}
	if got := perSubject["CS999"]; got != (SubjectAttendance{Present: 2, Total: 0, Percent: 0}) {
		t.Fatalf("unexpected CS999 %+v", got)
	}
	// 11 / 14
	if got := Overall(perSubject); got != 78.6 {
		t.Fatalf("expected 78.6, got %v", got)
	}
}

func TestPerSubjectPercentBounds(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for present := 0; present <= total; present++ {
			p := PerSubject(Totals{"X": total}, Record{"X": present})["X"].Percent
			if p < 0 || p > 100 {
				t.Fatalf("%d/%d: percent %v out of bounds", present, total, p)
			}
		}
	}
}

func TestPerSubjectNotClamped(t *testing.T) {
	if got := PerSubject(Totals{"X": 2}, Record{"X": 3})["X"].Percent; got != 150 {
		t.Fatalf("expected 150, got %v", got)
	}
}

func TestMarkPresent(t *testing.T) {
	record := Record{"CS501": 4, "CS502": 1}
	next := MarkPresent(record, "CS501")

	if next["CS501"] != 5 {
		t.Fatalf("expected 5, got %d", next["CS501"])
	}
	if next["CS502"] != 1 || len(next) != 2 {
		t.Fatalf("expected other entries unchanged, got %v", next)
	}
	if record["CS501"] != 4 {
		t.Fatal("expected input record to stay unchanged")
	}

	fresh := MarkPresent(nil, "CS503")
	if fresh["CS503"] != 1 || len(fresh) != 1 {
		t.Fatalf("unexpected record %v", fresh)
	}
}
