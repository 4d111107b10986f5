package service

import (
	"context"
	"sync"
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

type mockRepository struct {
	insertUserFunc             func(ctx context.Context, tx pgx.Tx, user domain.User) (domain.User, error)
	getUserByIDFunc            func(ctx context.Context, userID int64) (domain.User, error)
	getUserByUsernameFunc      func(ctx context.Context, username string) (domain.User, error)
	getUserByEmployeeIDFunc    func(ctx context.Context, employeeID string) (domain.User, error)
	getUserByEmailFunc         func(ctx context.Context, email string) (domain.User, error)
	updatePasswordHashFunc     func(ctx context.Context, userID int64, newHash string) error
	insertSprintFunc           func(ctx context.Context, tx pgx.Tx, sprint domain.Sprint) (domain.Sprint, error)
	getSprintByNameFunc        func(ctx context.Context, name string) (domain.Sprint, error)
	getSprintContainingFunc    func(ctx context.Context, date time.Time) (domain.Sprint, error)
	listSprintStatsFunc        func(ctx context.Context) ([]domain.SprintStats, error)
	insertBugReportFunc        func(ctx context.Context, tx pgx.Tx, report domain.BugReport) (domain.BugReport, error)
	getBugReportByNumberFunc   func(ctx context.Context, number int64) (domain.BugReport, error)
	getBugReportForUpdateFunc  func(ctx context.Context, tx pgx.Tx, number int64) (domain.BugReport, error)
	listBugReportsFunc         func(ctx context.Context) ([]domain.BugReport, error)
	listBugReportsBySprintFunc func(ctx context.Context, sprintID int64) ([]domain.BugReport, error)
	markFixedFunc              func(ctx context.Context, tx pgx.Tx, reportID int64) (bool, error)
	markClosedFunc             func(ctx context.Context, tx pgx.Tx, reportID int64, reason string) (bool, error)
	updateBugReportFunc        func(ctx context.Context, tx pgx.Tx, reportID int64, patch domain.BugReportPatch) error
	listSubscriberIDsFunc      func(ctx context.Context, reportID int64) ([]int64, error)
	listSubscriberEmailsFunc   func(ctx context.Context, reportID int64) ([]string, error)
	addSubscriberFunc          func(ctx context.Context, tx pgx.Tx, reportID, userID int64) error
	removeSubscriberFunc       func(ctx context.Context, tx pgx.Tx, reportID, userID int64) (bool, error)
}

func (m *mockRepository) RunInTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (m *mockRepository) InsertUser(ctx context.Context, tx pgx.Tx, user domain.User) (domain.User, error) {
	return m.insertUserFunc(ctx, tx, user)
}

func (m *mockRepository) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	return m.getUserByIDFunc(ctx, userID)
}

func (m *mockRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.getUserByUsernameFunc(ctx, username)
}

func (m *mockRepository) GetUserByEmployeeID(ctx context.Context, employeeID string) (domain.User, error) {
	return m.getUserByEmployeeIDFunc(ctx, employeeID)
}

func (m *mockRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getUserByEmailFunc(ctx, email)
}

func (m *mockRepository) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	return m.updatePasswordHashFunc(ctx, userID, newHash)
}

func (m *mockRepository) InsertSprint(ctx context.Context, tx pgx.Tx, sprint domain.Sprint) (domain.Sprint, error) {
	return m.insertSprintFunc(ctx, tx, sprint)
}

func (m *mockRepository) GetSprintByName(ctx context.Context, name string) (domain.Sprint, error) {
	return m.getSprintByNameFunc(ctx, name)
}

func (m *mockRepository) GetSprintContaining(ctx context.Context, date time.Time) (domain.Sprint, error) {
	return m.getSprintContainingFunc(ctx, date)
}

func (m *mockRepository) ListSprintStats(ctx context.Context) ([]domain.SprintStats, error) {
	return m.listSprintStatsFunc(ctx)
}

func (m *mockRepository) InsertBugReport(ctx context.Context, tx pgx.Tx, report domain.BugReport) (domain.BugReport, error) {
	return m.insertBugReportFunc(ctx, tx, report)
}

func (m *mockRepository) GetBugReportByNumber(ctx context.Context, number int64) (domain.BugReport, error) {
	return m.getBugReportByNumberFunc(ctx, number)
}

func (m *mockRepository) GetBugReportForUpdate(ctx context.Context, tx pgx.Tx, number int64) (domain.BugReport, error) {
	return m.getBugReportForUpdateFunc(ctx, tx, number)
}

func (m *mockRepository) ListBugReports(ctx context.Context) ([]domain.BugReport, error) {
	return m.listBugReportsFunc(ctx)
}

func (m *mockRepository) ListBugReportsBySprint(ctx context.Context, sprintID int64) ([]domain.BugReport, error) {
	return m.listBugReportsBySprintFunc(ctx, sprintID)
}

func (m *mockRepository) MarkFixed(ctx context.Context, tx pgx.Tx, reportID int64) (bool, error) {
	return m.markFixedFunc(ctx, tx, reportID)
}

func (m *mockRepository) MarkClosed(ctx context.Context, tx pgx.Tx, reportID int64, reason string) (bool, error) {
	return m.markClosedFunc(ctx, tx, reportID, reason)
}

func (m *mockRepository) UpdateBugReport(ctx context.Context, tx pgx.Tx, reportID int64, patch domain.BugReportPatch) error {
	return m.updateBugReportFunc(ctx, tx, reportID, patch)
}

func (m *mockRepository) ListSubscriberIDs(ctx context.Context, reportID int64) ([]int64, error) {
	return m.listSubscriberIDsFunc(ctx, reportID)
}

func (m *mockRepository) ListSubscriberEmails(ctx context.Context, reportID int64) ([]string, error) {
	return m.listSubscriberEmailsFunc(ctx, reportID)
}

func (m *mockRepository) AddSubscriber(ctx context.Context, tx pgx.Tx, reportID, userID int64) error {
	return m.addSubscriberFunc(ctx, tx, reportID, userID)
}

func (m *mockRepository) RemoveSubscriber(ctx context.Context, tx pgx.Tx, reportID, userID int64) (bool, error) {
	return m.removeSubscriberFunc(ctx, tx, reportID, userID)
}

type broadcast struct {
	recipients []string
	subject    string
	body       string
}

type recordingNotifier struct {
	mu         sync.Mutex
	broadcasts []broadcast
}

func (n *recordingNotifier) Broadcast(recipients []string, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, broadcast{recipients: recipients, subject: subject, body: body})
}

func (n *recordingNotifier) all() []broadcast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]broadcast(nil), n.broadcasts...)
}
