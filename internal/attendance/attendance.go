package attendance

import (
	"errors"
	"maps"
	"math"
	"time"

	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

var (
	// ErrMissingSemesterStart is returned instead of zero totals when the
	// term start date is not configured.
	ErrMissingSemesterStart = errors.New("semester start is not configured")
	ErrDivisionUndefined    = errors.New("target is unreachable from the current totals")
	ErrInvalidTarget        = errors.New("target must be greater than 0 and at most 100")
	ErrUnknownSubject       = errors.New("unknown subject")
)

// Totals maps subject codes to the number of classes held so far.
type Totals map[string]int

// Record maps subject codes to the number of classes marked present.
type Record map[string]int

type SubjectAttendance struct {
	Present int     `json:"present"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// OccurrenceTotals counts every scheduled slot of the section on each date
// from semesterStart to now, both inclusive. The current day is counted in
// full regardless of the time of day. Holidays are not modelled.
func OccurrenceTotals(section *timetable.Section, semesterStart, now time.Time) (Totals, error) {
	totals := Totals{}
	if section == nil {
		return totals, nil
	}
	if semesterStart.IsZero() {
		return nil, ErrMissingSemesterStart
	}
	end := timezone.Date(now)
	for d := timezone.Date(semesterStart); !d.After(end); d = d.AddDate(0, 0, 1) {
		for _, slot := range section.Day(d.Weekday()) {
			totals[slot.SubjectCode]++
		}
	}
	return totals, nil
}

// PerSubject merges totals with the present counts. Codes known to only one
// side count as zero on the other. Percentages are not clamped, a stale total
// may yield more than 100.
func PerSubject(totals Totals, record Record) map[string]SubjectAttendance {
	out := make(map[string]SubjectAttendance, len(totals))
	for code, total := range totals {
		out[code] = SubjectAttendance{
			Present: record[code],
			Total:   total,
			Percent: percent(record[code], total),
		}
	}
	for code, present := range record {
		if _, ok := out[code]; ok {
			continue
		}
		out[code] = SubjectAttendance{
			Present: present,
		}
	}
	return out
}

// Sum returns grand present and total over all subjects.
func Sum(perSubject map[string]SubjectAttendance) (present, total int) {
	for _, s := range perSubject {
		present += s.Present
		total += s.Total
	}
	return present, total
}

func Overall(perSubject map[string]SubjectAttendance) float64 {
	return percent(Sum(perSubject))
}

// MarkPresent returns a copy of record with the subject's count incremented.
func MarkPresent(record Record, subjectCode string) Record {
	next := make(Record, len(record)+1)
	maps.Copy(next, record)
	next[subjectCode]++
	return next
}

func percent(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(present) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
