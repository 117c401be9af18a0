package clinics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalid    = errors.New("invalid clinic")
	ErrNotFound   = errors.New("clinic not found")
	ErrCodeExists = errors.New("clinic code already exists")
)

type directory interface {
	FindClinic(ctx context.Context, id uuid.UUID) (*Clinic, error)
	FindByCode(ctx context.Context, code string) (*Clinic, error)
	ListClinics(ctx context.Context, includeInactive bool) ([]Clinic, error)
	CreateClinic(ctx context.Context, input ClinicInput) (*Clinic, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, upd ClinicUpdate) (*Clinic, error)
}

type Service struct {
	store directory
}

func NewService(store directory) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, input ClinicInput) (*Clinic, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)

	if input.Code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalid)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	existing, err := s.store.FindByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCodeExists
	}

	clinic, err := s.store.CreateClinic(ctx, input)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrCodeExists
		}
		return nil, err
	}

	slog.Info("clinic created", "code", clinic.Code)
	return clinic, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	clinic, err := s.store.FindClinic(ctx, id)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrNotFound
	}
	return clinic, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Clinic, error) {
	clinic, err := s.store.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrNotFound
	}
	return clinic, nil
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]Clinic, error) {
	return s.store.ListClinics(ctx, includeInactive)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd ClinicUpdate) (*Clinic, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalid)
	}

	clinic, err := s.store.UpdateClinic(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrNotFound
	}
	return clinic, nil
}

// Deactivate keeps the row so historical employee assignments stay resolvable.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	off := false
	return s.Update(ctx, id, ClinicUpdate{IsActive: &off})
}
