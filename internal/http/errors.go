package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/collegeos/internal/assignments"
	"github.com/collegeos/internal/attendance"
	"github.com/collegeos/internal/authentication"
	"github.com/collegeos/internal/avatars"
	"github.com/collegeos/internal/calendars"
	"github.com/collegeos/internal/students"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func statusOf(err error) (int, string) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, attendance.ErrMissingSemesterStart):
		return http.StatusConflict, "cannot compute attendance: semester start is not configured"
	case errors.Is(err, attendance.ErrDivisionUndefined),
		errors.Is(err, attendance.ErrInvalidTarget):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &validationErrors),
		errors.Is(err, errBadRequest),
		errors.Is(err, attendance.ErrUnknownSubject),
		errors.Is(err, assignments.ErrUnknownSubject):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, authentication.ErrUnauthenticated),
		errors.Is(err, authentication.ErrInvalidIDToken):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, students.ErrDomainNotAllowed),
		errors.Is(err, students.ErrInvalidEnrollment):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, calendars.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, avatars.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, avatars.ErrUnsupported):
		return http.StatusUnsupportedMediaType, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, err error) {
	status, message := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("handle request", "error", err)
	}
	writeJSON(logger, w, status, errorResponse{Error: message})
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}
