package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anvlasov/bug-report-service/internal/auth"
	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/anvlasov/bug-report-service/internal/service"
	"github.com/go-chi/chi/v5"
)

func (h *handler) handleBugReportCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeServiceError(w, auth.ErrUnauthenticated)
		return
	}

	var req struct {
		Number        int64  `json:"number"`
		BugType       string `json:"bug_type"`
		Description   string `json:"description"`
		ReferenceDate string `json:"reference_date"`
		Subscribe     bool   `json:"subscribe"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.Number <= 0 || req.BugType == "" || req.Description == "" {
		writeValidationError(w, errors.New("number, bug_type and description are required"))
		return
	}

	in := service.CreateBugReportInput{
		Number:          req.Number,
		BugType:         req.BugType,
		Description:     req.Description,
		AuthorID:        actor.ID,
		SubscribeAuthor: req.Subscribe,
	}
	if req.ReferenceDate != "" {
		date, err := parseDate(req.ReferenceDate)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		in.ReferenceDate = date
	}

	report, err := h.svc.CreateBugReport(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"bug_report": mapBugReport(report),
	})
}

func (h *handler) handleBugReportList(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.ListBugReports(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bug_reports": mapBugReportList(reports),
	})
}

func (h *handler) handleBugReportGet(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	report, err := h.svc.GetBugReport(r.Context(), number)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bug_report": mapBugReport(report),
	})
}

func (h *handler) handleBugReportEdit(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	var req struct {
		Number      *int64  `json:"number"`
		BugType     *string `json:"bug_type"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	report, err := h.svc.EditBugReport(r.Context(), number, domain.BugReportPatch{
		Number:      req.Number,
		BugType:     req.BugType,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bug_report": mapBugReport(report),
	})
}

func (h *handler) handleBugReportFix(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	report, err := h.svc.FixBugReport(r.Context(), number)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bug_report": mapBugReport(report),
	})
}

func (h *handler) handleBugReportClose(w http.ResponseWriter, r *http.Request) {
	number, err := reportNumber(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	report, err := h.svc.CloseBugReport(r.Context(), number, req.Reason)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bug_report": mapBugReport(report),
	})
}

func (h *handler) handleBugReportSubscribe(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.writeServiceError(w, auth.ErrUnauthenticated)
		return
	}

	number, err := reportNumber(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	subscribed, err := h.svc.ToggleSubscription(r.Context(), number, actor.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"number":     number,
		"subscribed": subscribed,
	})
}

func reportNumber(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "number")
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || number <= 0 {
		return 0, errors.New("invalid bug report number")
	}
	return number, nil
}
