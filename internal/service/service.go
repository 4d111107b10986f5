package service

import (
	"context"
	"errors"
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmployeeIDTaken = errors.New("employee id already taken")
	ErrEmailTaken      = errors.New("email already taken")
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")

	ErrSprintExists   = errors.New("sprint already exists")
	ErrSprintNotFound = errors.New("sprint not found")
	ErrInvalidRange   = errors.New("sprint end date before start date")

	ErrBugReportExists   = errors.New("bug report already exists")
	ErrBugReportNotFound = errors.New("bug report not found")
	ErrNoSprintForDate   = errors.New("no sprint covers this date")
	ErrInvalidTransition = errors.New("bug report already fixed or closed")
	ErrReasonRequired    = errors.New("reason for close is required")
)

// Repository is the slice of the storage layer the service needs. Methods
// taking a pgx.Tx must run inside RunInTx.
type Repository interface {
	RunInTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

	InsertUser(ctx context.Context, tx pgx.Tx, user domain.User) (domain.User, error)
	GetUserByID(ctx context.Context, userID int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmployeeID(ctx context.Context, employeeID string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error

	InsertSprint(ctx context.Context, tx pgx.Tx, sprint domain.Sprint) (domain.Sprint, error)
	GetSprintByName(ctx context.Context, name string) (domain.Sprint, error)
	GetSprintContaining(ctx context.Context, date time.Time) (domain.Sprint, error)
	ListSprintStats(ctx context.Context) ([]domain.SprintStats, error)

	InsertBugReport(ctx context.Context, tx pgx.Tx, report domain.BugReport) (domain.BugReport, error)
	GetBugReportByNumber(ctx context.Context, number int64) (domain.BugReport, error)
	GetBugReportForUpdate(ctx context.Context, tx pgx.Tx, number int64) (domain.BugReport, error)
	ListBugReports(ctx context.Context) ([]domain.BugReport, error)
	ListBugReportsBySprint(ctx context.Context, sprintID int64) ([]domain.BugReport, error)
	MarkFixed(ctx context.Context, tx pgx.Tx, reportID int64) (bool, error)
	MarkClosed(ctx context.Context, tx pgx.Tx, reportID int64, reason string) (bool, error)
	UpdateBugReport(ctx context.Context, tx pgx.Tx, reportID int64, patch domain.BugReportPatch) error
	ListSubscriberIDs(ctx context.Context, reportID int64) ([]int64, error)
	ListSubscriberEmails(ctx context.Context, reportID int64) ([]string, error)
	AddSubscriber(ctx context.Context, tx pgx.Tx, reportID, userID int64) error
	RemoveSubscriber(ctx context.Context, tx pgx.Tx, reportID, userID int64) (bool, error)
}

// Notifier delivers state-change notices to subscribers. Implementations
// must not block the caller and must swallow delivery errors.
type Notifier interface {
	Broadcast(recipients []string, subject, body string)
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func New(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}
