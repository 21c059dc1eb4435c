package repo

import (
	"context"
	"time"

	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	Create(ctx context.Context, u dom.User) (dom.User, error)
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	GetByID(ctx context.Context, id string) (dom.User, error)
	// SetLoginState writes the failed-login counter and lock-until timestamp.
	SetLoginState(ctx context.Context, id string, attempts int, lockUntil *time.Time) error
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userColumns = `id, email, name, password_hash, role, is_active, login_attempts, lock_until, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.LoginAttempts, &u.LockUntil, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		INSERT INTO users (id, email, name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.IsActive))
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// SetLoginState writes the lockout counters for one user.
func (r *PGUserRepo) SetLoginState(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET login_attempts = $2, lock_until = $3, updated_at = NOW() WHERE id = $1`,
		id, attempts, lockUntil)
	return err
}
