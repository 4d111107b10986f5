package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) InsertBugReport(ctx context.Context, tx pgx.Tx, report domain.BugReport) (domain.BugReport, error) {
	if tx == nil {
		return domain.BugReport{}, errTxRequired
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO bug_reports (number, bug_type, description, author_id, sprint_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING bug_report_id, is_open, is_fixed, reason_for_close, created_at
	`, report.Number, report.BugType, report.Description, report.AuthorID, report.SprintID).
		Scan(&report.ID, &report.IsOpen, &report.IsFixed, &report.ReasonForClose, &report.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.BugReport{}, ErrBugReportExists
		}
		return domain.BugReport{}, fmt.Errorf("insert bug report: %w", err)
	}

	return report, nil
}

const selectBugReport = `
	SELECT bug_report_id, number, bug_type, description,
	       is_open, is_fixed, reason_for_close, created_at,
	       author_id, sprint_id
	FROM bug_reports
`

func (r *Repository) GetBugReportByNumber(ctx context.Context, number int64) (domain.BugReport, error) {
	report, err := scanBugReport(r.pool.QueryRow(ctx, selectBugReport+`WHERE number = $1`, number))
	if err != nil {
		return domain.BugReport{}, err
	}

	subs, err := r.ListSubscriberIDs(ctx, report.ID)
	if err != nil {
		return domain.BugReport{}, err
	}
	report.Subscribers = subs

	return report, nil
}

// GetBugReportForUpdate locks the report row for the rest of the
// transaction so a state check and the following write act as one unit.
func (r *Repository) GetBugReportForUpdate(ctx context.Context, tx pgx.Tx, number int64) (domain.BugReport, error) {
	if tx == nil {
		return domain.BugReport{}, errTxRequired
	}
	return scanBugReport(tx.QueryRow(ctx, selectBugReport+`WHERE number = $1 FOR UPDATE`, number))
}

func scanBugReport(row pgx.Row) (domain.BugReport, error) {
	var report domain.BugReport
	err := row.Scan(
		&report.ID, &report.Number, &report.BugType, &report.Description,
		&report.IsOpen, &report.IsFixed, &report.ReasonForClose, &report.CreatedAt,
		&report.AuthorID, &report.SprintID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BugReport{}, ErrBugReportNotFound
	}
	if err != nil {
		return domain.BugReport{}, fmt.Errorf("select bug report: %w", err)
	}

	return report, nil
}

func (r *Repository) ListBugReports(ctx context.Context) ([]domain.BugReport, error) {
	return r.listBugReports(ctx, selectBugReport+`ORDER BY number`)
}

func (r *Repository) ListBugReportsBySprint(ctx context.Context, sprintID int64) ([]domain.BugReport, error) {
	return r.listBugReports(ctx, selectBugReport+`WHERE sprint_id = $1 ORDER BY number`, sprintID)
}

func (r *Repository) listBugReports(ctx context.Context, query string, args ...any) ([]domain.BugReport, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select bug reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.BugReport
	for rows.Next() {
		report, err := scanBugReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bug reports: %w", err)
	}

	return reports, nil
}

// MarkFixed flips the report to Fixed only when it is still open and not
// yet fixed; zero rows affected means the guard did not hold.
func (r *Repository) MarkFixed(ctx context.Context, tx pgx.Tx, reportID int64) (bool, error) {
	if tx == nil {
		return false, errTxRequired
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bug_reports
		SET is_fixed = TRUE
		WHERE bug_report_id = $1 AND is_open AND NOT is_fixed
	`, reportID)
	if err != nil {
		return false, fmt.Errorf("mark bug report fixed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkClosed flips the report to Closed under the same open-and-unfixed
// guard as MarkFixed.
func (r *Repository) MarkClosed(ctx context.Context, tx pgx.Tx, reportID int64, reason string) (bool, error) {
	if tx == nil {
		return false, errTxRequired
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bug_reports
		SET is_open = FALSE,
		    reason_for_close = $2
		WHERE bug_report_id = $1 AND is_open AND NOT is_fixed
	`, reportID, reason)
	if err != nil {
		return false, fmt.Errorf("mark bug report closed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *Repository) UpdateBugReport(ctx context.Context, tx pgx.Tx, reportID int64, patch domain.BugReportPatch) error {
	if tx == nil {
		return errTxRequired
	}
	if patch.Empty() {
		return nil
	}

	set := make([]string, 0, 3)
	args := []any{reportID}
	if patch.Number != nil {
		args = append(args, *patch.Number)
		set = append(set, fmt.Sprintf("number = $%d", len(args)))
	}
	if patch.BugType != nil {
		args = append(args, *patch.BugType)
		set = append(set, fmt.Sprintf("bug_type = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}

	query := "UPDATE bug_reports SET "
	for i, clause := range set {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += " WHERE bug_report_id = $1"

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBugReportExists
		}
		return fmt.Errorf("update bug report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBugReportNotFound
	}

	return nil
}

func (r *Repository) ListSubscriberIDs(ctx context.Context, reportID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id
		FROM bug_report_subscribers
		WHERE bug_report_id = $1
		ORDER BY subscribed_at, user_id
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("select subscribers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return ids, nil
}

func (r *Repository) ListSubscriberEmails(ctx context.Context, reportID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.email
		FROM bug_report_subscribers s
		JOIN users u ON u.user_id = s.user_id
		WHERE s.bug_report_id = $1
		ORDER BY s.subscribed_at, s.user_id
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("select subscriber emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan subscriber email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber emails: %w", err)
	}

	return emails, nil
}

func (r *Repository) AddSubscriber(ctx context.Context, tx pgx.Tx, reportID, userID int64) error {
	if tx == nil {
		return errTxRequired
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO bug_report_subscribers (bug_report_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (bug_report_id, user_id) DO NOTHING
	`, reportID, userID); err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}

	return nil
}

// RemoveSubscriber reports whether a row was actually deleted, which lets
// the caller implement a toggle.
func (r *Repository) RemoveSubscriber(ctx context.Context, tx pgx.Tx, reportID, userID int64) (bool, error) {
	if tx == nil {
		return false, errTxRequired
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM bug_report_subscribers
		WHERE bug_report_id = $1 AND user_id = $2
	`, reportID, userID)
	if err != nil {
		return false, fmt.Errorf("delete subscriber: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
