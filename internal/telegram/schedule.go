package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

// todayMessage lists the section's classes on the weekday of now.
func todayMessage(tt *timetable.Timetable, sectionID string, now time.Time) string {
	section, ok := tt.Section(sectionID)
	if !ok {
		return fmt.Sprintf("No timetable for section %q.", sectionID)
	}
	slots := section.Day(now.Weekday())
	if len(slots) == 0 {
		return "No classes today."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s, section %s:\n", now.Weekday(), sectionID)
	for _, slot := range slots {
		fmt.Fprintf(&b, "%s %s, %s (%s)\n", slot.Time, tt.Subject(slot.SubjectCode).Name, slot.Room, slot.Type)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func nextMessage(tt *timetable.Timetable, sectionID string, now time.Time) string {
	section, ok := tt.Section(sectionID)
	if !ok {
		return fmt.Sprintf("No timetable for section %q.", sectionID)
	}
	slot, ok := timetable.NextUpcoming(section.Day(now.Weekday()), timezone.MinutesSinceMidnight(now))
	if !ok {
		return "No more classes today."
	}
	return fmt.Sprintf("Next: %s at %s in %s.", tt.Subject(slot.SubjectCode).Name, slot.Time.Start, slot.Room)
}
