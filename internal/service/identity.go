package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/anvlasov/bug-report-service/internal/repository"
	"github.com/jackc/pgx/v5"
)

// RegisterUser creates a user after checking each unique key in priority
// order: username, then employee id, then email. Only the first violation
// is reported. The unique constraints remain the authoritative guard for
// concurrent registrations.
func (s *Service) RegisterUser(ctx context.Context, username, employeeID, email, passwordHash string) (domain.User, error) {
	checks := []struct {
		find func() (domain.User, error)
		err  error
	}{
		{func() (domain.User, error) { return s.repo.GetUserByUsername(ctx, username) }, ErrUsernameTaken},
		{func() (domain.User, error) { return s.repo.GetUserByEmployeeID(ctx, employeeID) }, ErrEmployeeIDTaken},
		{func() (domain.User, error) { return s.repo.GetUserByEmail(ctx, email) }, ErrEmailTaken},
	}
	for _, check := range checks {
		_, err := check.find()
		if err == nil {
			return domain.User{}, check.err
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, fmt.Errorf("check existing user: %w", err)
		}
	}

	var created domain.User
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		user, err := s.repo.InsertUser(ctx, tx, domain.User{
			Username:     username,
			EmployeeID:   employeeID,
			Email:        email,
			PasswordHash: passwordHash,
		})
		if err != nil {
			if errors.Is(err, repository.ErrUserExists) {
				return ErrUserExists
			}
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return created, nil
}

func (s *Service) FindUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return mapUserErr(s.repo.GetUserByUsername(ctx, username))
}

func (s *Service) FindUserByEmployeeID(ctx context.Context, employeeID string) (domain.User, error) {
	return mapUserErr(s.repo.GetUserByEmployeeID(ctx, employeeID))
}

func (s *Service) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return mapUserErr(s.repo.GetUserByEmail(ctx, email))
}

func (s *Service) FindUserByID(ctx context.Context, userID int64) (domain.User, error) {
	return mapUserErr(s.repo.GetUserByID(ctx, userID))
}

// UpdatePassword swaps the stored hash unconditionally; verifying the old
// password is the caller's job.
func (s *Service) UpdatePassword(ctx context.Context, userID int64, newHash string) error {
	if err := s.repo.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func mapUserErr(user domain.User, err error) (domain.User, error) {
	if errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
