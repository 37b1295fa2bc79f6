package calendars

// Calendar is a subscription to a student's weekly timetable. The id is the
// secret part of the subscription url.
type Calendar struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
}
