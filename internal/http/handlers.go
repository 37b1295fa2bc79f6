package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/collegeos/internal/assignments"
	"github.com/collegeos/internal/attendance"
	"github.com/collegeos/internal/authentication"
	"github.com/collegeos/internal/avatars"
	"github.com/collegeos/internal/calendars"
	"github.com/collegeos/internal/devices"
	"github.com/collegeos/internal/keys"
	"github.com/collegeos/internal/sessions"
	"github.com/collegeos/internal/statistics"
	"github.com/collegeos/internal/students"
	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

const defaultTarget = 75

type TimetableProvider interface {
	Current() *timetable.Timetable
}

func Handler(
	logger *slog.Logger,
	key *keys.Key,
	clock *timezone.Clock,
	timetables TimetableProvider,
	authenticationService *authentication.Service,
	attendanceService *attendance.Service,
	assignmentsService *assignments.Service,
	avatarsStore *avatars.Store,
	calendarsService *calendars.Service,
	statisticsService *statistics.Service,
) http.HandlerFunc {
	validate := validator.New()
	requireAuth := WithAuthentication(logger, key, authenticationService)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", handleLogin(logger, validate, key, authenticationService))
	mux.HandleFunc("POST /logout", requireAuth(handleLogout(logger, authenticationService)))
	mux.HandleFunc("GET /me", requireAuth(handleMe(logger)))

	mux.HandleFunc("GET /timetable/today", requireAuth(handleToday(logger, clock, timetables)))
	mux.HandleFunc("GET /timetable/subjects", handleSubjects(logger, timetables))

	mux.HandleFunc("GET /attendance", requireAuth(handleAttendanceReport(logger, attendanceService)))
	mux.HandleFunc("GET /attendance/projection", requireAuth(handleProjection(logger, attendanceService)))
	mux.HandleFunc("POST /attendance/{subject}", requireAuth(handleMarkPresent(logger, attendanceService)))

	mux.HandleFunc("GET /statistics/weeks", requireAuth(handleWeekStatistics(logger, statisticsService)))

	mux.HandleFunc("GET /assignments", requireAuth(handleListAssignments(logger, assignmentsService)))
	mux.HandleFunc("POST /assignments", requireAuth(handleCreateAssignment(logger, assignmentsService)))

	mux.HandleFunc("GET /avatar", requireAuth(handleGetAvatar(logger, avatarsStore)))
	mux.HandleFunc("PUT /avatar", requireAuth(handlePutAvatar(logger, avatarsStore)))

	mux.HandleFunc("POST /calendars", requireAuth(handleCreateCalendar(logger, calendarsService)))
	mux.HandleFunc("GET /calendars/{id}/timetable.ics", handleGetCalendar(logger, calendarsService))

	return WithMiddlewares(
		WithAccessLogs(logger),
		WithSecurityHeaders(),
	)(mux.ServeHTTP)
}

type loginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

func handleLogin(
	logger *slog.Logger,
	validate *validator.Validate,
	key *keys.Key,
	authenticationService *authentication.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(logger, w, fmt.Errorf("%w: %s", errBadRequest, err))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(logger, w, err)
			return
		}

		session, student, err := authenticationService.Login(r.Context(), req.IDToken)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		dvc := devices.Device{SessionID: session.ID, Expires: session.Expires}
		cookies, err := dvc.ToCookies(key, r.TLS != nil)
		if err != nil {
			logger.Error("seal cookies", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		for _, cookie := range cookies {
			http.SetCookie(w, cookie)
		}
		writeJSON(logger, w, http.StatusOK, student)
	}
}

func handleLogout(logger *slog.Logger, authenticationService *authentication.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessions.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		if err := authenticationService.Logout(r.Context(), session.ID); err != nil {
			writeError(logger, w, err)
			return
		}
		for _, cookie := range devices.ExpiredCookies(r.TLS != nil) {
			http.SetCookie(w, cookie)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMe(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		writeJSON(logger, w, http.StatusOK, student)
	}
}

type slotView struct {
	Time        string             `json:"time"`
	SubjectCode string             `json:"subject_code"`
	SubjectName string             `json:"subject_name"`
	Instructor  string             `json:"instructor"`
	Room        string             `json:"room"`
	Type        timetable.SlotType `json:"type"`
}

func newSlotView(tt *timetable.Timetable, slot timetable.Slot) slotView {
	subject := tt.Subject(slot.SubjectCode)
	return slotView{
		Time:        slot.Time.String(),
		SubjectCode: slot.SubjectCode,
		SubjectName: subject.Name,
		Instructor:  subject.Instructor,
		Room:        slot.Room,
		Type:        slot.Type,
	}
}

type todayResponse struct {
	Weekday string     `json:"weekday"`
	Section string     `json:"section"`
	Slots   []slotView `json:"slots"`
	Next    *slotView  `json:"next,omitempty"`
	Message string     `json:"message,omitempty"`
}

func handleToday(logger *slog.Logger, clock *timezone.Clock, timetables TimetableProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}

		now := clock.Now()
		tt := timetables.Current()
		section, _ := tt.Section(student.Enrollment.Section)
		slots := section.Day(now.Weekday())

		resp := todayResponse{
			Weekday: now.Weekday().String(),
			Section: student.Enrollment.Section,
			Slots:   make([]slotView, 0, len(slots)),
		}
		for _, slot := range slots {
			resp.Slots = append(resp.Slots, newSlotView(tt, slot))
		}
		if next, ok := timetable.NextUpcoming(slots, timezone.MinutesSinceMidnight(now)); ok {
			view := newSlotView(tt, next)
			resp.Next = &view
		}
		switch {
		case len(slots) == 0:
			resp.Message = "No classes today"
		case resp.Next == nil:
			resp.Message = "No more classes today"
		}
		writeJSON(logger, w, http.StatusOK, resp)
	}
}

func handleSubjects(logger *slog.Logger, timetables TimetableProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjects := timetables.Current().Subjects
		if subjects == nil {
			subjects = []timetable.Subject{}
		}
		writeJSON(logger, w, http.StatusOK, subjects)
	}
}

func handleAttendanceReport(logger *slog.Logger, attendanceService *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		report, err := attendanceService.Report(r.Context(), student)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, report)
	}
}

func handleProjection(logger *slog.Logger, attendanceService *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}

		target := float64(defaultTarget)
		if value := r.URL.Query().Get("target"); value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				writeError(logger, w, fmt.Errorf("%w: target %q", errBadRequest, value))
				return
			}
			target = parsed
		}

		projection, err := attendanceService.Project(r.Context(), student, target)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, projection)
	}
}

func handleWeekStatistics(logger *slog.Logger, statisticsService *statistics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		weeks, err := statisticsService.Weeks(r.Context(), student)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, weeks)
	}
}

type markPresentResponse struct {
	Subject    string            `json:"subject"`
	Present    int               `json:"present"`
	Attendance attendance.Record `json:"attendance"`
}

type markPresentError struct {
	Error string `json:"error"`
	markPresentResponse
}

func handleMarkPresent(logger *slog.Logger, attendanceService *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		code := r.PathValue("subject")
		record, err := attendanceService.MarkPresent(r.Context(), student.ID, code)
		if err != nil && record != nil {
			// not persisted, the client may still apply the increment
			logger.Error("mark present", "student_id", student.ID, "subject", code, "error", err)
			writeJSON(logger, w, http.StatusInternalServerError, markPresentError{
				Error: "attendance was not saved",
				markPresentResponse: markPresentResponse{
					Subject:    code,
					Present:    record[code],
					Attendance: record,
				},
			})
			return
		} else if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, markPresentResponse{
			Subject:    code,
			Present:    record[code],
			Attendance: record,
		})
	}
}

func handleListAssignments(logger *slog.Logger, assignmentsService *assignments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		list, err := assignmentsService.List(r.Context(), student)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, list)
	}
}

func handleCreateAssignment(logger *slog.Logger, assignmentsService *assignments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		var input assignments.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(logger, w, fmt.Errorf("%w: %s", errBadRequest, err))
			return
		}
		assignment, err := assignmentsService.Create(r.Context(), student, input)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, assignment)
	}
}

type initialsResponse struct {
	Initials string `json:"initials"`
}

func handleGetAvatar(logger *slog.Logger, avatarsStore *avatars.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		avatar, err := avatarsStore.Get(r.Context(), student.ID)
		if errors.Is(err, avatars.ErrNotFound) {
			writeJSON(logger, w, http.StatusOK, initialsResponse{Initials: avatars.Initials(student.Name)})
			return
		} else if err != nil {
			writeError(logger, w, err)
			return
		}
		w.Header().Set("Content-Type", avatar.ContentType)
		if _, err := w.Write(avatar.Data); err != nil {
			logger.Error("write avatar", "error", err)
		}
	}
}

func handlePutAvatar(logger *slog.Logger, avatarsStore *avatars.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := students.FromContext(r.Context())
		if !ok {
			writeError(logger, w, authentication.ErrUnauthenticated)
			return
		}
		data, err := io.ReadAll(io.LimitReader(r.Body, avatars.MaxSize+1))
		if err != nil {
			writeError(logger, w, fmt.Errorf("%w: %s", errBadRequest, err))
			return
		}
		avatar := &avatars.Avatar{
			ContentType: r.Header.Get("Content-Type"),
			Data:        data,
		}
		if err := avatarsStore.Put(r.Context(), student.ID, avatar); err != nil {
			writeError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type calendarResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func handleCreateCalendar(logger *slog.Logger, calendarsService *calendars.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cal, err := calendarsService.CreateCalendar(r.Context())
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, calendarResponse{
			ID:  cal.ID,
			URL: fmt.Sprintf("webcal://%s/calendars/%s/timetable.ics", r.Host, cal.ID),
		})
	}
}

func handleGetCalendar(logger *slog.Logger, calendarsService *calendars.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := calendarsService.WriteICal(r.Context(), &buf, r.PathValue("id")); err != nil {
			writeError(logger, w, err)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		if _, err := buf.WriteTo(w); err != nil {
			logger.Error("write calendar", "error", err)
		}
	}
}
