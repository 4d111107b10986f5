package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/anvlasov/bug-report-service/internal/auth"
	"github.com/anvlasov/bug-report-service/internal/service"
)

func decodeJSON(_ context.Context, body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra JSON input")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
}

func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmployeeIDTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrSprintExists),
		errors.Is(err, service.ErrBugReportExists):
		return http.StatusConflict, "DUPLICATE_KEY"
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSprintNotFound),
		errors.Is(err, service.ErrBugReportNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, service.ErrNoSprintForDate):
		return http.StatusUnprocessableEntity, "NO_SPRINT_FOR_DATE"
	case errors.Is(err, service.ErrInvalidRange):
		return http.StatusBadRequest, "INVALID_RANGE"
	case errors.Is(err, service.ErrReasonRequired):
		return http.StatusBadRequest, "REASON_REQUIRED"
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "AUTHENTICATION_FAILURE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
