package clinics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clinicColumns = `
	id, code, name,
	COALESCE(address_line1, ''), COALESCE(address_line2, ''),
	COALESCE(city, ''), COALESCE(postal_code, ''), COALESCE(country, ''),
	COALESCE(phone, ''), COALESCE(email, ''),
	is_active, created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanClinic(row pgx.Row) (*Clinic, error) {
	var clinic Clinic
	err := row.Scan(
		&clinic.ID, &clinic.Code, &clinic.Name,
		&clinic.AddressLine1, &clinic.AddressLine2,
		&clinic.City, &clinic.PostalCode, &clinic.Country,
		&clinic.Phone, &clinic.Email,
		&clinic.IsActive, &clinic.CreatedAt, &clinic.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}

func (s *Store) FindClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+clinicColumns+" FROM clinics WHERE id = $1", id)
	return scanClinic(row)
}

func (s *Store) FindByCode(ctx context.Context, code string) (*Clinic, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+clinicColumns+" FROM clinics WHERE code = $1", code)
	return scanClinic(row)
}

func (s *Store) ListClinics(ctx context.Context, includeInactive bool) ([]Clinic, error) {
	query := "SELECT " + clinicColumns + " FROM clinics"
	if !includeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY code"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Clinic
	for rows.Next() {
		clinic, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *clinic)
	}
	return list, rows.Err()
}

func (s *Store) CreateClinic(ctx context.Context, input ClinicInput) (*Clinic, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO clinics (id, code, name, address_line1, address_line2, city, postal_code, country, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+clinicColumns,
		uuid.New(), input.Code, input.Name,
		nullIfEmpty(input.AddressLine1), nullIfEmpty(input.AddressLine2),
		nullIfEmpty(input.City), nullIfEmpty(input.PostalCode), nullIfEmpty(input.Country),
		nullIfEmpty(input.Phone), nullIfEmpty(input.Email))
	return scanClinic(row)
}

func (s *Store) UpdateClinic(ctx context.Context, id uuid.UUID, upd ClinicUpdate) (*Clinic, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.AddressLine1 != nil {
		set("address_line1", nullIfEmpty(*upd.AddressLine1))
	}
	if upd.AddressLine2 != nil {
		set("address_line2", nullIfEmpty(*upd.AddressLine2))
	}
	if upd.City != nil {
		set("city", nullIfEmpty(*upd.City))
	}
	if upd.PostalCode != nil {
		set("postal_code", nullIfEmpty(*upd.PostalCode))
	}
	if upd.Country != nil {
		set("country", nullIfEmpty(*upd.Country))
	}
	if upd.Phone != nil {
		set("phone", nullIfEmpty(*upd.Phone))
	}
	if upd.Email != nil {
		set("email", nullIfEmpty(*upd.Email))
	}
	if upd.IsActive != nil {
		set("is_active", *upd.IsActive)
	}

	query := fmt.Sprintf("UPDATE clinics SET %s WHERE id = $1 RETURNING %s", strings.Join(sets, ", "), clinicColumns)
	row := s.DB.QueryRow(ctx, query, args...)
	return scanClinic(row)
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
