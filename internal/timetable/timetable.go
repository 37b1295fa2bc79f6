package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultInstructor = "N/A"

type Subject struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
}

type SlotType string

const (
	SlotTypeLecture SlotType = "Lecture"
	SlotTypeLab     SlotType = "Lab"
)

// Clock is a wall clock time of day.
type Clock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant of c on the date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

func ParseClock(value string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return Clock{}, fmt.Errorf("%q: expected HH:MM", value)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%q: invalid hour", value)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%q: invalid minute", value)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

type TimeRange struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// ParseTimeRange parses "HH:MM-HH:MM".
func ParseTimeRange(value string) (TimeRange, error) {
	start, end, ok := strings.Cut(value, "-")
	if !ok {
		return TimeRange{}, fmt.Errorf("%q: expected HH:MM-HH:MM", value)
	}
	startClock, err := ParseClock(start)
	if err != nil {
		return TimeRange{}, fmt.Errorf("start: %w", err)
	}
	endClock, err := ParseClock(end)
	if err != nil {
		return TimeRange{}, fmt.Errorf("end: %w", err)
	}
	return TimeRange{Start: startClock, End: endClock}, nil
}

type Slot struct {
	Time        TimeRange `json:"time"`
	SubjectCode string    `json:"subject_code"`
	Room        string    `json:"room"`
	Type        SlotType  `json:"type"`
}

type Section struct {
	ID   string
	Days map[time.Weekday][]Slot
}

// Day returns slots of the weekday in document order. Missing days and nil
// sections have no classes.
func (s *Section) Day(weekday time.Weekday) []Slot {
	if s == nil {
		return nil
	}
	return s.Days[weekday]
}

// SubjectCodes returns every subject code scheduled in the section, in
// weekday then document order, without duplicates.
func (s *Section) SubjectCodes() []string {
	if s == nil {
		return nil
	}
	seen := map[string]bool{}
	var codes []string
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		for _, slot := range s.Days[weekday] {
			if seen[slot.SubjectCode] {
				continue
			}
			seen[slot.SubjectCode] = true
			codes = append(codes, slot.SubjectCode)
		}
	}
	return codes
}

type Timetable struct {
	// SemesterStart is the first day of the term, zero if not configured.
	SemesterStart time.Time
	Subjects      []Subject
	Sections      map[string]*Section
}

// Empty returns a timetable without sections, used until a schedule loads.
func Empty() *Timetable {
	return &Timetable{
		Sections: map[string]*Section{},
	}
}

func (t *Timetable) Section(id string) (*Section, bool) {
	if t == nil {
		return nil, false
	}
	section, ok := t.Sections[id]
	return section, ok
}

// Subject returns the directory entry for code. Unknown codes are displayed
// by their code.
func (t *Timetable) Subject(code string) Subject {
	if subject, ok := t.LookupSubject(code); ok {
		return subject
	}
	return Subject{Code: code, Name: code, Instructor: DefaultInstructor}
}

func (t *Timetable) LookupSubject(code string) (Subject, bool) {
	if t == nil {
		return Subject{}, false
	}
	for _, subject := range t.Subjects {
		if subject.Code == code {
			return subject, true
		}
	}
	return Subject{}, false
}

func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		if strings.EqualFold(weekday.String(), name) {
			return weekday, true
		}
	}
	return time.Sunday, false
}

// NextUpcoming returns the first slot that starts strictly after
// nowMinutes since midnight.
func NextUpcoming(slots []Slot, nowMinutes int) (Slot, bool) {
	for _, slot := range slots {
		if slot.Time.Start.Minutes() > nowMinutes {
			return slot, true
		}
	}
	return Slot{}, false
}
