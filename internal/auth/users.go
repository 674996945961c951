package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// User is a row of the `users` table (spec §6).
type User struct {
	UserID           int64  `db:"user_id"`
	UserName         string `db:"user_name"`
	KeySalt          string `db:"key_salt"`
	IsMod            bool   `db:"is_mod"`
	IsBanned         bool   `db:"is_banned"`
	ProjectsComplete int    `db:"projects_complete"`
}

// ErrBanned is returned by ResetToken for a banned user.
var ErrBanned = errors.New("auth: user is banned")

// UserRepository persists user rows and handles salt rotation.
type UserRepository interface {
	Get(ctx context.Context, userID int64) (User, bool, error)
	ResetToken(ctx context.Context, userID int64, userName string, isMod bool) (salt string, err error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
	SetMod(ctx context.Context, userID int64, isMod bool) error
	IncrementProjectsComplete(ctx context.Context, userID int64) error
}

// PostgresUserRepository is UserRepository backed by the `users` table.
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository wraps an already-connected sqlx handle.
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Get(ctx context.Context, userID int64) (User, bool, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT user_id, user_name, key_salt, is_mod, is_banned, projects_complete
		FROM users WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("auth: get user %d: %w", userID, err)
	}
	return u, true, nil
}

func newSalt() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// ResetToken ensures a user row exists and rotates its key_salt,
// invalidating any previously issued token. Returns ErrBanned for a
// banned user, matching original_source/rickchurch/auth.py:reset_user_token.
//
// The original's upsert referenced its first placeholder twice
// ("VALUES ($1, $1, $3)"); this corrects it to bind user_id, key_salt and
// is_mod distinctly.
func (r *PostgresUserRepository) ResetToken(ctx context.Context, userID int64, userName string, isMod bool) (string, error) {
	var banned bool
	err := r.db.GetContext(ctx, &banned, `SELECT is_banned FROM users WHERE user_id = $1`, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("auth: check banned status: %w", err)
	}
	if banned {
		return "", ErrBanned
	}

	salt, err := newSalt()
	if err != nil {
		return "", err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, user_name, key_salt, is_mod)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET key_salt = $3, user_name = $2
	`, userID, userName, salt, isMod)
	if err != nil {
		return "", fmt.Errorf("auth: upsert user %d: %w", userID, err)
	}
	return salt, nil
}

func (r *PostgresUserRepository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_banned = $2 WHERE user_id = $1`, userID, banned)
	if err != nil {
		return fmt.Errorf("auth: set banned for user %d: %w", userID, err)
	}
	return nil
}

func (r *PostgresUserRepository) SetMod(ctx context.Context, userID int64, isMod bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_mod = $2 WHERE user_id = $1`, userID, isMod)
	if err != nil {
		return fmt.Errorf("auth: set mod for user %d: %w", userID, err)
	}
	return nil
}

func (r *PostgresUserRepository) IncrementProjectsComplete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET projects_complete = projects_complete + 1 WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("auth: increment projects_complete for user %d: %w", userID, err)
	}
	return nil
}
