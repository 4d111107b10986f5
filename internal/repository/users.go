package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) InsertUser(ctx context.Context, tx pgx.Tx, user domain.User) (domain.User, error) {
	if tx == nil {
		return domain.User{}, errTxRequired
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO users (username, employee_id, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, created_at
	`, user.Username, user.EmployeeID, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

const selectUser = `
	SELECT user_id, username, employee_id, email, password_hash, created_at
	FROM users
`

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	return r.getUser(ctx, selectUser+`WHERE user_id = $1`, userID)
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getUser(ctx, selectUser+`WHERE username = $1`, username)
}

func (r *Repository) GetUserByEmployeeID(ctx context.Context, employeeID string) (domain.User, error) {
	return r.getUser(ctx, selectUser+`WHERE employee_id = $1`, employeeID)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, selectUser+`WHERE email = $1`, email)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (domain.User, error) {
	var user domain.User
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.EmployeeID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2
		WHERE user_id = $1
	`, userID, newHash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
