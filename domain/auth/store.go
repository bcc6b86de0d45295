package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrAdminExists   = errors.New("admin already exists")
	// ErrResetUnavailable means the reset record is missing, used or expired.
	ErrResetUnavailable = errors.New("password reset unavailable")
)

const uniqueViolation = "23505"

type Store interface {
	AdminByEmail(ctx context.Context, email string) (*Admin, error)
	AdminByID(ctx context.Context, id string) (*Admin, error)
	CreateAdmin(ctx context.Context, a *Admin) error

	// Attempts returns the zero value when the key has no history.
	Attempts(ctx context.Context, key AttemptKey) (LoginAttempts, error)
	// RecordFailure increments the failure count and returns the new total.
	RecordFailure(ctx context.Context, key AttemptKey, now time.Time) (int, error)
	Block(ctx context.Context, key AttemptKey, until time.Time) error
	ClearAttempts(ctx context.Context, key AttemptKey) error

	// CreateReset stores r and invalidates the admin's earlier unused resets.
	CreateReset(ctx context.Context, r *PasswordReset) error
	// ConsumeReset marks the reset used, sets the password hash and bumps the
	// admin's token version in one transaction.
	ConsumeReset(ctx context.Context, resetID, adminID, passwordHash string, now time.Time) error

	PurgeResets(ctx context.Context, usedBefore time.Time) (int64, error)
	PurgeAttempts(ctx context.Context, idleBefore time.Time) (int64, error)
}

const (
	adminColumns = `id, email, password, name, token_version, created_at, updated_at`

	adminByEmailQuery = `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`
	adminByIDQuery    = `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	insertAdminQuery  = `INSERT INTO admins (id, email, password, name)
		VALUES ($1, $2, $3, $4) RETURNING token_version, created_at, updated_at`

	attemptsQuery = `SELECT email, ip, failed_attempts, blocked_until, last_attempt_at
		FROM admin_login_attempts WHERE email = $1 AND ip = $2`
	recordFailureQuery = `INSERT INTO admin_login_attempts (email, ip, failed_attempts, last_attempt_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (email, ip) DO UPDATE
		SET failed_attempts = admin_login_attempts.failed_attempts + 1, last_attempt_at = $3
		RETURNING failed_attempts`
	blockQuery         = `UPDATE admin_login_attempts SET blocked_until = $3 WHERE email = $1 AND ip = $2`
	clearAttemptsQuery = `DELETE FROM admin_login_attempts WHERE email = $1 AND ip = $2`

	invalidateResetsQuery = `UPDATE password_resets SET used_at = $2 WHERE admin_id = $1 AND used_at IS NULL`
	insertResetQuery      = `INSERT INTO password_resets (id, admin_id, expires_at)
		VALUES ($1, $2, $3) RETURNING created_at`
	consumeResetQuery = `UPDATE password_resets SET used_at = $3
		WHERE id = $1 AND admin_id = $2 AND used_at IS NULL AND expires_at > $3`
	updatePasswordQuery = `UPDATE admins
		SET password = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	purgeResetsQuery = `DELETE FROM password_resets
		WHERE expires_at < $1 OR (used_at IS NOT NULL AND used_at < $1)`
	purgeAttemptsQuery = `DELETE FROM admin_login_attempts
		WHERE last_attempt_at < $1 AND (blocked_until IS NULL OR blocked_until < NOW())`
)

type SQLStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) AdminByEmail(ctx context.Context, email string) (*Admin, error) {
	return s.getAdmin(ctx, adminByEmailQuery, email)
}

func (s *SQLStore) AdminByID(ctx context.Context, id string) (*Admin, error) {
	return s.getAdmin(ctx, adminByIDQuery, id)
}

func (s *SQLStore) getAdmin(ctx context.Context, query, arg string) (*Admin, error) {
	var a Admin
	if err := s.db.GetContext(ctx, &a, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *SQLStore) CreateAdmin(ctx context.Context, a *Admin) error {
	err := s.db.QueryRowxContext(ctx, insertAdminQuery, a.ID, a.Email, a.Password, a.Name).
		Scan(&a.TokenVersion, &a.CreatedAt, &a.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrAdminExists
	}
	return err
}

func (s *SQLStore) Attempts(ctx context.Context, key AttemptKey) (LoginAttempts, error) {
	var att LoginAttempts
	err := s.db.GetContext(ctx, &att, attemptsQuery, key.Email, key.IP)
	if errors.Is(err, sql.ErrNoRows) {
		return LoginAttempts{Email: key.Email, IP: key.IP}, nil
	}
	return att, err
}

func (s *SQLStore) RecordFailure(ctx context.Context, key AttemptKey, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowxContext(ctx, recordFailureQuery, key.Email, key.IP, now).Scan(&n)
	return n, err
}

func (s *SQLStore) Block(ctx context.Context, key AttemptKey, until time.Time) error {
	_, err := s.db.ExecContext(ctx, blockQuery, key.Email, key.IP, until)
	return err
}

func (s *SQLStore) ClearAttempts(ctx context.Context, key AttemptKey) error {
	_, err := s.db.ExecContext(ctx, clearAttemptsQuery, key.Email, key.IP)
	return err
}

func (s *SQLStore) CreateReset(ctx context.Context, r *PasswordReset) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, invalidateResetsQuery, r.AdminID, time.Now()); err != nil {
		return fmt.Errorf("invalidate resets: %w", err)
	}
	if err := tx.QueryRowxContext(ctx, insertResetQuery, r.ID, r.AdminID, r.ExpiresAt).Scan(&r.CreatedAt); err != nil {
		return fmt.Errorf("insert reset: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) ConsumeReset(ctx context.Context, resetID, adminID, passwordHash string, now time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, consumeResetQuery, resetID, adminID, now)
	if err != nil {
		return fmt.Errorf("consume reset: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrResetUnavailable
	}

	res, err = tx.ExecContext(ctx, updatePasswordQuery, adminID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrAdminNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) PurgeResets(ctx context.Context, usedBefore time.Time) (int64, error) {
	return s.purge(ctx, purgeResetsQuery, usedBefore)
}

func (s *SQLStore) PurgeAttempts(ctx context.Context, idleBefore time.Time) (int64, error) {
	return s.purge(ctx, purgeAttemptsQuery, idleBefore)
}

func (s *SQLStore) purge(ctx context.Context, query string, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
