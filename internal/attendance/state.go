package attendance

type State uint

const (
	StateUndefined State = iota
	// StateNoTimetable means the student's section is not configured.
	StateNoTimetable
	// StateNoSemesterStart means totals cannot be computed.
	StateNoSemesterStart
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNoTimetable:
		return "no_timetable"
	case StateNoSemesterStart:
		return "no_semester_start"
	case StateReady:
		return "ready"
	default:
		return "undefined"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
