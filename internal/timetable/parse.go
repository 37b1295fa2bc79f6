package timetable

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var ErrConfigLoad = errors.New("timetable config load failure")

type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse timetable: %s", e.Err)
	}
	return fmt.Sprintf("parse timetable %q: %s", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrConfigLoad
}

type document struct {
	XMLName       xml.Name      `xml:"college"`
	SemesterStart string        `xml:"semesterStart"`
	Subjects      []subjectNode `xml:"subjects>subject"`
	Sections      []sectionNode `xml:"timetable>section"`
}

type subjectNode struct {
	Code       string `xml:"code,attr"`
	Name       string `xml:"name,attr"`
	Instructor string `xml:"instructor,attr"`
}

type sectionNode struct {
	ID   string    `xml:"id,attr"`
	Days []dayNode `xml:"day"`
}

type dayNode struct {
	Name  string     `xml:"name,attr"`
	Slots []slotNode `xml:"slot"`
}

type slotNode struct {
	Time    string `xml:"time,attr"`
	Subject string `xml:"subject,attr"`
	Room    string `xml:"room,attr"`
	Type    string `xml:"type,attr"`
}

// Parse builds a timetable from a schedule document in a single pass.
func Parse(r io.Reader) (*Timetable, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decode: %w", err)}
	}

	t := Empty()

	if value := strings.TrimSpace(doc.SemesterStart); value != "" {
		start, err := time.Parse(time.DateOnly, value)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("semester start: %w", err)}
		}
		t.SemesterStart = start
	}

	for i, node := range doc.Subjects {
		code := strings.TrimSpace(node.Code)
		if code == "" {
			return nil, &ParseError{Err: fmt.Errorf("subjects[%d]: missing code", i)}
		}
		subject := Subject{
			Code:       code,
			Name:       strings.TrimSpace(node.Name),
			Instructor: strings.TrimSpace(node.Instructor),
		}
		if subject.Name == "" {
			subject.Name = code
		}
		if subject.Instructor == "" {
			subject.Instructor = DefaultInstructor
		}
		t.Subjects = append(t.Subjects, subject)
	}

	for _, node := range doc.Sections {
		id := strings.TrimSpace(node.ID)
		section, ok := t.Sections[id]
		if !ok {
			section = &Section{
				ID:   id,
				Days: map[time.Weekday][]Slot{},
			}
			t.Sections[id] = section
		}
		for _, day := range node.Days {
			weekday, ok := ParseWeekday(day.Name)
			if !ok {
				return nil, &ParseError{Err: fmt.Errorf("section %q: unknown day %q", id, day.Name)}
			}
			for i, slotNode := range day.Slots {
				timeRange, err := ParseTimeRange(slotNode.Time)
				if err != nil {
					return nil, &ParseError{Err: fmt.Errorf("section %q %s slot[%d]: %w", id, weekday, i, err)}
				}
				section.Days[weekday] = append(section.Days[weekday], Slot{
					Time:        timeRange,
					SubjectCode: strings.TrimSpace(slotNode.Subject),
					Room:        strings.TrimSpace(slotNode.Room),
					Type:        SlotType(strings.TrimSpace(slotNode.Type)),
				})
			}
		}
	}

	return t, nil
}
