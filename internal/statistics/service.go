package statistics

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/collegeos/internal/attendance"
	"github.com/collegeos/internal/students"
	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

type TimetableProvider interface {
	Current() *timetable.Timetable
}

type Service struct {
	timetables TimetableProvider
	clock      *timezone.Clock
}

func NewService(
	timetables TimetableProvider,
	clock *timezone.Clock,
) *Service {
	return &Service{
		timetables: timetables,
		clock:      clock,
	}
}

// Weeks returns the classes held for the student's section in every ISO
// week from semester start up to today.
func (s *Service) Weeks(_ context.Context, student *students.Student) ([]Week, error) {
	tt := s.timetables.Current()
	section, ok := tt.Section(student.Enrollment.Section)
	if !ok {
		return []Week{}, nil
	}
	return CalculateWeeks(section, tt.SemesterStart, s.clock.Now())
}

// CalculateWeeks tallies slots per ISO week over the same inclusive date
// range the attendance totals use.
func CalculateWeeks(section *timetable.Section, semesterStart, now time.Time) ([]Week, error) {
	if semesterStart.IsZero() {
		return nil, fmt.Errorf("calculate weeks: %w", attendance.ErrMissingSemesterStart)
	}
	if section == nil {
		return []Week{}, nil
	}

	weeks := []Week{}
	weekIndex := map[[2]int]int{}
	classesByCode := []map[string]int{}
	last := timezone.Date(now)
	for d := timezone.Date(semesterStart); !d.After(last); d = d.AddDate(0, 0, 1) {
		year, week := d.ISOWeek()
		key := [2]int{year, week}
		i, ok := weekIndex[key]
		if !ok {
			i = len(weeks)
			weekIndex[key] = i
			weeks = append(weeks, Week{Year: year, Number: week, Classes: []Class{}})
			classesByCode = append(classesByCode, map[string]int{})
		}
		for _, slot := range section.Day(d.Weekday()) {
			weeks[i].Total++
			classesByCode[i][slot.SubjectCode]++
		}
	}

	for i := range weeks {
		for code, total := range classesByCode[i] {
			weeks[i].Classes = append(weeks[i].Classes, Class{
				SubjectCode: code,
				Total:       total,
			})
		}
		slices.SortFunc(weeks[i].Classes, func(a, b Class) int {
			if a.Total != b.Total {
				return b.Total - a.Total
			}
			if a.SubjectCode < b.SubjectCode {
				return -1
			}
			if a.SubjectCode > b.SubjectCode {
				return 1
			}
			return 0
		})
	}
	return weeks, nil
}
