package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) InsertSprint(ctx context.Context, tx pgx.Tx, sprint domain.Sprint) (domain.Sprint, error) {
	if tx == nil {
		return domain.Sprint{}, errTxRequired
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO sprints (name, start_date, end_date)
		VALUES ($1, $2, $3)
		RETURNING sprint_id, created_at
	`, sprint.Name, sprint.StartDate, sprint.EndDate).
		Scan(&sprint.ID, &sprint.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Sprint{}, ErrSprintExists
		}
		return domain.Sprint{}, fmt.Errorf("insert sprint: %w", err)
	}

	return sprint, nil
}

func (r *Repository) GetSprintByName(ctx context.Context, name string) (domain.Sprint, error) {
	var sprint domain.Sprint
	err := r.pool.QueryRow(ctx, `
		SELECT sprint_id, name, start_date, end_date, created_at
		FROM sprints
		WHERE name = $1
	`, name).Scan(&sprint.ID, &sprint.Name, &sprint.StartDate, &sprint.EndDate, &sprint.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Sprint{}, ErrSprintNotFound
	}
	if err != nil {
		return domain.Sprint{}, fmt.Errorf("select sprint: %w", err)
	}

	return sprint, nil
}

// GetSprintContaining returns the sprint whose date range includes date,
// bounds inclusive. When ranges overlap, the most recently created sprint
// wins.
func (r *Repository) GetSprintContaining(ctx context.Context, date time.Time) (domain.Sprint, error) {
	var sprint domain.Sprint
	err := r.pool.QueryRow(ctx, `
		SELECT sprint_id, name, start_date, end_date, created_at
		FROM sprints
		WHERE start_date <= $1::date AND end_date >= $1::date
		ORDER BY created_at DESC, sprint_id DESC
		LIMIT 1
	`, date).Scan(&sprint.ID, &sprint.Name, &sprint.StartDate, &sprint.EndDate, &sprint.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Sprint{}, ErrSprintNotFound
	}
	if err != nil {
		return domain.Sprint{}, fmt.Errorf("select sprint by date: %w", err)
	}

	return sprint, nil
}

func (r *Repository) ListSprintStats(ctx context.Context) ([]domain.SprintStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.sprint_id,
		       s.name,
		       COUNT(b.bug_report_id) FILTER (WHERE b.is_open AND NOT b.is_fixed),
		       COUNT(b.bug_report_id) FILTER (WHERE b.is_fixed),
		       COUNT(b.bug_report_id) FILTER (WHERE NOT b.is_open)
		FROM sprints s
		LEFT JOIN bug_reports b ON b.sprint_id = s.sprint_id
		GROUP BY s.sprint_id, s.name
		ORDER BY s.start_date, s.sprint_id
	`)
	if err != nil {
		return nil, fmt.Errorf("select sprint stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.SprintStats
	for rows.Next() {
		var st domain.SprintStats
		if err := rows.Scan(&st.SprintID, &st.SprintName, &st.Open, &st.Fixed, &st.Closed); err != nil {
			return nil, fmt.Errorf("scan sprint stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sprint stats: %w", err)
	}

	return stats, nil
}
