package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func (h *handler) handleSprintCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.Name == "" || req.StartDate == "" || req.EndDate == "" {
		writeValidationError(w, errors.New("name, start_date and end_date are required"))
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	sprint, err := h.svc.CreateSprint(r.Context(), req.Name, start, end)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"sprint": mapSprint(sprint),
	})
}

func (h *handler) handleSprintGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	sprint, err := h.svc.FindSprintByName(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sprint": mapSprint(sprint),
	})
}

func (h *handler) handleSprintBugs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	reports, err := h.svc.ListSprintBugReports(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sprint_name": name,
		"bug_reports": mapBugReportList(reports),
	})
}

func (h *handler) handleSprintStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.SprintStatistics(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result := make([]map[string]any, 0, len(stats))
	for _, st := range stats {
		result = append(result, map[string]any{
			"sprint_name": st.SprintName,
			"open":        st.Open,
			"fixed":       st.Fixed,
			"closed":      st.Closed,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"statistics": result,
	})
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return d, nil
}
