package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/anvlasov/bug-report-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CreateBugReportInput struct {
	Number      int64
	BugType     string
	Description string
	AuthorID    int64
	// ReferenceDate resolves which sprint the report belongs to.
	ReferenceDate   time.Time
	SubscribeAuthor bool
}

// CreateBugReport files a new report in the Open state. The report is
// permanently assigned to the sprint covering the reference date; when no
// sprint covers it, creation fails and nothing is persisted. An unset
// reference date means today.
func (s *Service) CreateBugReport(ctx context.Context, in CreateBugReportInput) (domain.BugReport, error) {
	if in.ReferenceDate.IsZero() {
		in.ReferenceDate = s.now()
	}

	if _, err := s.repo.GetBugReportByNumber(ctx, in.Number); err == nil {
		return domain.BugReport{}, ErrBugReportExists
	} else if !errors.Is(err, repository.ErrBugReportNotFound) {
		return domain.BugReport{}, fmt.Errorf("check existing bug report: %w", err)
	}

	author, err := s.FindUserByID(ctx, in.AuthorID)
	if err != nil {
		return domain.BugReport{}, err
	}

	sprint, err := s.FindSprintContaining(ctx, in.ReferenceDate)
	if err != nil {
		return domain.BugReport{}, err
	}

	var created domain.BugReport
	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		report, err := s.repo.InsertBugReport(ctx, tx, domain.BugReport{
			Number:      in.Number,
			BugType:     in.BugType,
			Description: in.Description,
			AuthorID:    author.ID,
			SprintID:    sprint.ID,
		})
		if err != nil {
			if errors.Is(err, repository.ErrBugReportExists) {
				return ErrBugReportExists
			}
			return err
		}

		if in.SubscribeAuthor {
			if err := s.repo.AddSubscriber(ctx, tx, report.ID, author.ID); err != nil {
				return err
			}
			report.Subscribers = []int64{author.ID}
		}

		created = report
		return nil
	})
	if err != nil {
		return domain.BugReport{}, err
	}

	return created, nil
}

func (s *Service) GetBugReport(ctx context.Context, number int64) (domain.BugReport, error) {
	report, err := s.repo.GetBugReportByNumber(ctx, number)
	if errors.Is(err, repository.ErrBugReportNotFound) {
		return domain.BugReport{}, ErrBugReportNotFound
	}
	if err != nil {
		return domain.BugReport{}, err
	}
	return report, nil
}

func (s *Service) ListBugReports(ctx context.Context) ([]domain.BugReport, error) {
	return s.repo.ListBugReports(ctx)
}

// FixBugReport moves an open, unfixed report to Fixed. The guard is
// re-checked by the storage update inside the same transaction, so two
// concurrent callers cannot both succeed.
func (s *Service) FixBugReport(ctx context.Context, number int64) (domain.BugReport, error) {
	report, err := s.transition(ctx, number, s.repo.MarkFixed)
	if err != nil {
		return domain.BugReport{}, err
	}
	report.IsFixed = true

	s.notifySubscribers(ctx, report,
		fmt.Sprintf("Bug report #%d is fixed", report.Number),
		report.Description,
	)

	return report, nil
}

// CloseBugReport moves an open, unfixed report to Closed with a mandatory
// reason. A fixed report cannot be closed.
func (s *Service) CloseBugReport(ctx context.Context, number int64, reason string) (domain.BugReport, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.BugReport{}, ErrReasonRequired
	}

	report, err := s.transition(ctx, number, func(ctx context.Context, tx pgx.Tx, reportID int64) (bool, error) {
		return s.repo.MarkClosed(ctx, tx, reportID, reason)
	})
	if err != nil {
		return domain.BugReport{}, err
	}
	report.IsOpen = false
	report.ReasonForClose = reason

	s.notifySubscribers(ctx, report,
		fmt.Sprintf("Bug report #%d is closed", report.Number),
		fmt.Sprintf("%s\n\nReason for close: %s", report.Description, reason),
	)

	return report, nil
}

func (s *Service) transition(ctx context.Context, number int64, apply func(context.Context, pgx.Tx, int64) (bool, error)) (domain.BugReport, error) {
	var report domain.BugReport
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.repo.GetBugReportForUpdate(ctx, tx, number)
		if err != nil {
			if errors.Is(err, repository.ErrBugReportNotFound) {
				return ErrBugReportNotFound
			}
			return err
		}
		if !current.IsOpen || current.IsFixed {
			return ErrInvalidTransition
		}

		ok, err := apply(ctx, tx, current.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		report = current
		return nil
	})
	if err != nil {
		return domain.BugReport{}, err
	}

	return report, nil
}

// notifySubscribers runs after the transition has committed. Failures stay
// in the logs; the transition already succeeded.
func (s *Service) notifySubscribers(ctx context.Context, report domain.BugReport, subject, body string) {
	emails, err := s.repo.ListSubscriberEmails(ctx, report.ID)
	if err != nil {
		s.logger.Warn("list subscribers for notification failed",
			zap.Int64("number", report.Number),
			zap.Error(err),
		)
		return
	}

	s.notifier.Broadcast(emails, subject, body)
}

// ToggleSubscription flips the user's membership in the report's
// subscriber set and reports the resulting state.
func (s *Service) ToggleSubscription(ctx context.Context, number, userID int64) (bool, error) {
	if _, err := s.FindUserByID(ctx, userID); err != nil {
		return false, err
	}

	var subscribed bool
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		report, err := s.repo.GetBugReportForUpdate(ctx, tx, number)
		if err != nil {
			if errors.Is(err, repository.ErrBugReportNotFound) {
				return ErrBugReportNotFound
			}
			return err
		}

		removed, err := s.repo.RemoveSubscriber(ctx, tx, report.ID, userID)
		if err != nil {
			return err
		}
		if removed {
			subscribed = false
			return nil
		}

		if err := s.repo.AddSubscriber(ctx, tx, report.ID, userID); err != nil {
			return err
		}
		subscribed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return subscribed, nil
}

// EditBugReport applies a partial update. A report number change re-runs
// the uniqueness check; the unique constraint backs it up.
func (s *Service) EditBugReport(ctx context.Context, number int64, patch domain.BugReportPatch) (domain.BugReport, error) {
	var updatedNumber = number
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		report, err := s.repo.GetBugReportForUpdate(ctx, tx, number)
		if err != nil {
			if errors.Is(err, repository.ErrBugReportNotFound) {
				return ErrBugReportNotFound
			}
			return err
		}

		if patch.Number != nil && *patch.Number != report.Number {
			if _, err := s.repo.GetBugReportByNumber(ctx, *patch.Number); err == nil {
				return ErrBugReportExists
			} else if !errors.Is(err, repository.ErrBugReportNotFound) {
				return fmt.Errorf("check new bug report number: %w", err)
			}
			updatedNumber = *patch.Number
		}

		if err := s.repo.UpdateBugReport(ctx, tx, report.ID, patch); err != nil {
			if errors.Is(err, repository.ErrBugReportExists) {
				return ErrBugReportExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.BugReport{}, err
	}

	return s.GetBugReport(ctx, updatedNumber)
}
