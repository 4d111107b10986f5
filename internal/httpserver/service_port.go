package httpserver

import (
	"context"
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/anvlasov/bug-report-service/internal/service"
)

type Service interface {
	RegisterUser(ctx context.Context, username, employeeID, email, passwordHash string) (domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, newHash string) error

	CreateSprint(ctx context.Context, name string, startDate, endDate time.Time) (domain.Sprint, error)
	FindSprintByName(ctx context.Context, name string) (domain.Sprint, error)
	SprintStatistics(ctx context.Context) ([]domain.SprintStats, error)
	ListSprintBugReports(ctx context.Context, name string) ([]domain.BugReport, error)

	CreateBugReport(ctx context.Context, in service.CreateBugReportInput) (domain.BugReport, error)
	GetBugReport(ctx context.Context, number int64) (domain.BugReport, error)
	ListBugReports(ctx context.Context) ([]domain.BugReport, error)
	FixBugReport(ctx context.Context, number int64) (domain.BugReport, error)
	CloseBugReport(ctx context.Context, number int64, reason string) (domain.BugReport, error)
	ToggleSubscription(ctx context.Context, number, userID int64) (bool, error)
	EditBugReport(ctx context.Context, number int64, patch domain.BugReportPatch) (domain.BugReport, error)
}
