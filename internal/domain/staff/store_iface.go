package staff

import (
	"context"

	"github.com/google/uuid"
)

// PersonDirectory is the read side of the persons table. Lookups return
// (nil, nil) when no row matches.
type PersonDirectory interface {
	FindPerson(ctx context.Context, id uuid.UUID) (*Person, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByIdentification(ctx context.Context, idType, idNumber string) (bool, error)
	ListPersons(ctx context.Context, skip, limit int) ([]Person, error)
	SearchPersons(ctx context.Context, firstName, lastName string) ([]Person, error)
	ListPersonsWithoutEmployee(ctx context.Context) ([]Person, error)
}

// EmployeeDirectory is the read side of the employees table. Find methods
// return the person view embedded.
type EmployeeDirectory interface {
	FindEmployee(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindByCode(ctx context.Context, code string) (*Employee, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindByPersonID(ctx context.Context, personID uuid.UUID) (*Employee, error)
	ExistsByPersonID(ctx context.Context, personID uuid.UUID) (bool, error)
	ListEmployees(ctx context.Context, filter ListFilter) ([]Employee, error)
	ListMedicalStaff(ctx context.Context, clinicID *uuid.UUID) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) (bool, error)
}

type ClinicDirectory interface {
	FindClinic(ctx context.Context, id uuid.UUID) (*Clinic, error)
}

// OnboardingTx exposes the staged writes available inside one transaction.
// Created rows are reloaded with RETURNING/SELECT so server-assigned defaults
// are materialized before commit.
type OnboardingTx interface {
	CreatePerson(ctx context.Context, sub Submission) (*Person, error)
	CreateEmployee(ctx context.Context, sub Submission, personID uuid.UUID) (*Employee, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, upd EmployeeUpdate) (*Employee, error)
	ReloadEmployee(ctx context.Context, id uuid.UUID) (*Employee, error)
}

// UnitOfWork runs fn inside a single transaction: commit on nil return,
// rollback on any error.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(tx OnboardingTx) error) error
}
