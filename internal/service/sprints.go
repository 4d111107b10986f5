package service

import (
	"context"
	"errors"
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/anvlasov/bug-report-service/internal/repository"
	"github.com/jackc/pgx/v5"
)

// CreateSprint registers a new sprint. An inverted date range is rejected
// up front; duplicate names surface as ErrSprintExists.
func (s *Service) CreateSprint(ctx context.Context, name string, startDate, endDate time.Time) (domain.Sprint, error) {
	if startDate.After(endDate) {
		return domain.Sprint{}, ErrInvalidRange
	}

	var created domain.Sprint
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sprint, err := s.repo.InsertSprint(ctx, tx, domain.Sprint{
			Name:      name,
			StartDate: startDate,
			EndDate:   endDate,
		})
		if err != nil {
			if errors.Is(err, repository.ErrSprintExists) {
				return ErrSprintExists
			}
			return err
		}
		created = sprint
		return nil
	})
	if err != nil {
		return domain.Sprint{}, err
	}

	return created, nil
}

func (s *Service) FindSprintByName(ctx context.Context, name string) (domain.Sprint, error) {
	sprint, err := s.repo.GetSprintByName(ctx, name)
	if errors.Is(err, repository.ErrSprintNotFound) {
		return domain.Sprint{}, ErrSprintNotFound
	}
	if err != nil {
		return domain.Sprint{}, err
	}
	return sprint, nil
}

// FindSprintContaining resolves the sprint whose range includes date,
// bounds inclusive. Overlapping ranges are allowed; the most recently
// created covering sprint wins.
func (s *Service) FindSprintContaining(ctx context.Context, date time.Time) (domain.Sprint, error) {
	sprint, err := s.repo.GetSprintContaining(ctx, date)
	if errors.Is(err, repository.ErrSprintNotFound) {
		return domain.Sprint{}, ErrNoSprintForDate
	}
	if err != nil {
		return domain.Sprint{}, err
	}
	return sprint, nil
}

func (s *Service) SprintStatistics(ctx context.Context) ([]domain.SprintStats, error) {
	return s.repo.ListSprintStats(ctx)
}

func (s *Service) ListSprintBugReports(ctx context.Context, name string) ([]domain.BugReport, error) {
	sprint, err := s.FindSprintByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBugReportsBySprint(ctx, sprint.ID)
}
