package httpserver

import (
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
)

// timeNow is a hook for tests.
var timeNow = time.Now

func mapUser(u domain.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"employee_id": u.EmployeeID,
		"email":       u.Email,
	}
}

func mapSprint(s domain.Sprint) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"name":       s.Name,
		"start_date": s.StartDate.Format(dateLayout),
		"end_date":   s.EndDate.Format(dateLayout),
	}
}

func mapBugReport(b domain.BugReport) map[string]any {
	subscribers := b.Subscribers
	if subscribers == nil {
		subscribers = []int64{}
	}
	resp := map[string]any{
		"number":      b.Number,
		"bug_type":    b.BugType,
		"description": b.Description,
		"is_open":     b.IsOpen,
		"is_fixed":    b.IsFixed,
		"author_id":   b.AuthorID,
		"sprint_id":   b.SprintID,
		"subscribers": subscribers,
	}
	if b.ReasonForClose != "" {
		resp["reason_for_close"] = b.ReasonForClose
	}
	if !b.CreatedAt.IsZero() {
		resp["created_at"] = formatTime(b.CreatedAt)
	}
	return resp
}

func mapBugReportList(reports []domain.BugReport) []map[string]any {
	result := make([]map[string]any, 0, len(reports))
	for _, b := range reports {
		result = append(result, mapBugReport(b))
	}
	return result
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
