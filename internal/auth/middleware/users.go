package auth

import (
	"context"
	"database/sql"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// Credentials is what local login needs from the users table.
type Credentials struct {
	UserID       string
	Role         string
	PasswordHash string
}

type UserStore interface {
	Credentials(ctx context.Context, username string) (Credentials, error)
	// Role resolves a user's current role by id or username.
	Role(ctx context.Context, idOrUsername string) (string, error)
	PasswordHash(ctx context.Context, userID string) (string, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
}

type SQLUsers struct {
	db *sql.DB
}

func NewSQLUsers(db *sql.DB) *SQLUsers { return &SQLUsers{db: db} }

func (s *SQLUsers) Credentials(ctx context.Context, username string) (Credentials, error) {
	var c Credentials
	err := s.db.QueryRowContext(ctx,
		`SELECT id, role, password_hash FROM users WHERE username=$1`, username).
		Scan(&c.UserID, &c.Role, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrUserNotFound
	}
	return c, err
}

func (s *SQLUsers) Role(ctx context.Context, idOrUsername string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id=$1 OR username=$1`, idOrUsername).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return role, err
}

func (s *SQLUsers) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return hash, err
}

func (s *SQLUsers) SetPasswordHash(ctx context.Context, userID, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
