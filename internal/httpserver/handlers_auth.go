package httpserver

import (
	"errors"
	"net/http"

	"github.com/anvlasov/bug-report-service/internal/auth"
	"go.uber.org/zap"
)

type handler struct {
	svc    Service
	gate   *auth.Gate
	logger *zap.Logger
}

func (h *handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username"`
		EmployeeID string `json:"employee_id"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.Username == "" || req.EmployeeID == "" || req.Email == "" || req.Password == "" {
		writeValidationError(w, errors.New("username, employee_id, email and password are required"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), req.Username, req.EmployeeID, req.Email, hash)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": mapUser(user),
	})
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeValidationError(w, errors.New("username and password are required"))
		return
	}

	token, user, err := h.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  mapUser(user),
	})
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.BearerToken(r); token != "" {
		h.gate.Logout(token)
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeServiceError(w, auth.ErrUnauthenticated)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeValidationError(w, errors.New("current_password and new_password are required"))
		return
	}

	if !auth.VerifyPassword(actor.PasswordHash, req.CurrentPassword) {
		h.writeServiceError(w, auth.ErrInvalidCredentials)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := h.svc.UpdatePassword(r.Context(), actor.ID, hash); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	status, code := mapServiceError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("service error", zap.Error(err))
	}
	writeError(w, status, code, err.Error())
}
