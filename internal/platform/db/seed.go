package db

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinic/internal/domain/users"
	"clinic/internal/platform/config"
)

// seedConn is the slice of pgxpool.Pool the seeders need.
type seedConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Seed makes the default clinic and admin user idempotently so a fresh
// database is usable right after startup.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureClinic(ctx, pool, cfg.SeedClinicCode, cfg.SeedClinicName); err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminUsername, cfg.SeedAdminPassword)
}

func ensureClinic(ctx context.Context, conn seedConn, code, name string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil
	}

	var id uuid.UUID
	err := conn.QueryRow(ctx, "SELECT id FROM clinics WHERE code = $1", code).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	_, err = conn.Exec(ctx, "INSERT INTO clinics (id, code, name) VALUES ($1, $2, $3)", uuid.New(), code, name)
	return err
}

func ensureAdminUser(ctx context.Context, conn seedConn, username, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id uuid.UUID
	err := conn.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, "INSERT INTO users (id, username, password_hash, role) VALUES ($1, $2, $3, $4)",
		uuid.New(), username, hash, users.RoleAdmin)
	return err
}
