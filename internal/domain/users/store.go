package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, password_hash, role, is_active, mfa_enabled, COALESCE(mfa_secret, ''), created_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.IsActive, &user.MFAEnabled, &user.MFASecret, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1",
		strings.ToLower(strings.TrimSpace(username)))
	return scanUser(row)
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash, role string) (*User, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		uuid.New(), strings.ToLower(strings.TrimSpace(username)), passwordHash, role)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *user)
	}
	return list, rows.Err()
}

// SetMFASecret stores a fresh secret and forces re-verification before
// the factor becomes active.
func (s *Store) SetMFASecret(ctx context.Context, id uuid.UUID, secret string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_secret = $1, mfa_enabled = false WHERE id = $2", secret, id)
	return err
}

func (s *Store) SetMFAEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_enabled = $1 WHERE id = $2", enabled, id)
	return err
}
