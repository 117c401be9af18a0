package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// Service orchestrates employee onboarding: validation, code generation and
// the person+employee writes inside one transaction.
type Service struct {
	persons   PersonDirectory
	employees EmployeeDirectory
	clinics   ClinicDirectory
	uow       UnitOfWork
	validator *Validator
	codegen   *CodeGenerator
}

func NewService(persons PersonDirectory, employees EmployeeDirectory, clinics ClinicDirectory, uow UnitOfWork) *Service {
	return &Service{
		persons:   persons,
		employees: employees,
		clinics:   clinics,
		uow:       uow,
		validator: &Validator{Persons: persons, Employees: employees, Clinics: clinics},
		codegen:   &CodeGenerator{Employees: employees},
	}
}

func normalize(sub Submission) Submission {
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	sub.EmployeeCode = strings.ToUpper(strings.TrimSpace(sub.EmployeeCode))
	return sub
}

// CreateEmployee validates the submission, resolves an employee code and
// creates the Person and Employee rows atomically. The actor is the acting
// username supplied by the caller, used for logging only.
func (s *Service) CreateEmployee(ctx context.Context, sub Submission, actor string) (*CreateResult, error) {
	sub = normalize(sub)
	if err := s.validator.ValidateCreate(ctx, sub); err != nil {
		return nil, err
	}

	var existing *Person
	if sub.PersonID != nil {
		person, err := s.persons.FindPerson(ctx, *sub.PersonID)
		if err != nil {
			return nil, err
		}
		if person == nil {
			return nil, &NotFoundError{Resource: "Person", ID: sub.PersonID.String()}
		}
		if err := s.validator.ValidatePersonNotEmployee(ctx, *sub.PersonID); err != nil {
			return nil, err
		}
		existing = person
	}

	if sub.EmployeeCode == "" {
		clinic, err := s.clinics.FindClinic(ctx, sub.PrimaryClinicID)
		if err != nil {
			return nil, err
		}
		if clinic == nil {
			return nil, &NotFoundError{Resource: "Clinic", ID: sub.PrimaryClinicID.String()}
		}
		// on the attach path the initials come from the existing person
		firstName, lastName := sub.FirstName, sub.LastName
		if existing != nil {
			firstName, lastName = existing.FirstName, existing.LastName
		}
		code, err := s.codegen.Generate(ctx, firstName, lastName, clinic.Code)
		if err != nil {
			return nil, err
		}
		sub.EmployeeCode = code
		slog.Info("generated employee code", "code", code)
	}

	var created *Employee
	err := s.uow.RunInTx(ctx, func(tx OnboardingTx) error {
		personID := uuid.Nil
		if existing != nil {
			personID = existing.ID
		} else {
			person, err := tx.CreatePerson(ctx, sub)
			if err != nil {
				return &TransactionError{Step: "person-create", Err: err}
			}
			personID = person.ID
		}

		employee, err := tx.CreateEmployee(ctx, sub, personID)
		if err != nil {
			return &TransactionError{Step: "employee-create", Err: err}
		}

		created, err = tx.ReloadEmployee(ctx, employee.ID)
		if err != nil {
			return &TransactionError{Step: "employee-reload", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}

	slog.Info("employee created", "code", created.EmployeeCode, "actor", actor)
	return &CreateResult{
		Employee: *created,
		Person:   *created.Person,
		Message:  fmt.Sprintf("Employee %s created successfully", created.EmployeeCode),
	}, nil
}

// mapPersistenceError turns a commit-time unique violation the pre-checks
// missed into the matching validation failure instead of leaking a raw
// storage error. Anything else stays a TransactionError.
func mapPersistenceError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return &ValidationError{Reasons: []string{"email address already exists"}}
		case strings.Contains(pgErr.ConstraintName, "employee_code"):
			return &ValidationError{Reasons: []string{"employee code already exists"}}
		case strings.Contains(pgErr.ConstraintName, "person_id"):
			return &ValidationError{Reasons: []string{"person is already registered as an employee"}}
		}
	}
	var txErr *TransactionError
	if errors.As(err, &txErr) {
		slog.Error("onboarding transaction rolled back", "step", txErr.Step, "err", txErr.Err)
		return txErr
	}
	return &TransactionError{Step: "employee-creation", Err: err}
}

// UpdateEmployee applies a partial update after the narrow update-path
// validation.
func (s *Service) UpdateEmployee(ctx context.Context, id uuid.UUID, upd EmployeeUpdate) (*Employee, error) {
	current, err := s.employees.FindEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &NotFoundError{Resource: "Employee", ID: id.String()}
	}
	if upd.EmployeeCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*upd.EmployeeCode))
		upd.EmployeeCode = &code
	}
	if err := s.validator.ValidateUpdate(ctx, current, upd); err != nil {
		return nil, err
	}

	var updated *Employee
	err = s.uow.RunInTx(ctx, func(tx OnboardingTx) error {
		employee, err := tx.UpdateEmployee(ctx, id, upd)
		if err != nil {
			return &TransactionError{Step: "employee-update", Err: err}
		}
		updated, err = tx.ReloadEmployee(ctx, employee.ID)
		if err != nil {
			return &TransactionError{Step: "employee-reload", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	return updated, nil
}

func (s *Service) GetEmployee(ctx context.Context, id uuid.UUID) (*Employee, error) {
	employee, err := s.employees.FindEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, &NotFoundError{Resource: "Employee", ID: id.String()}
	}
	return employee, nil
}

func (s *Service) GetEmployeeByCode(ctx context.Context, code string) (*Employee, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	employee, err := s.employees.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, &NotFoundError{Resource: "Employee", ID: code}
	}
	return employee, nil
}

func (s *Service) ListEmployees(ctx context.Context, filter ListFilter) ([]Employee, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.employees.ListEmployees(ctx, filter)
}

func (s *Service) MedicalStaff(ctx context.Context, clinicID *uuid.UUID) ([]Employee, error) {
	return s.employees.ListMedicalStaff(ctx, clinicID)
}

// DeleteEmployee soft-deletes by default; hard removal only on explicit
// request. The person row is never touched.
func (s *Service) DeleteEmployee(ctx context.Context, id uuid.UUID, hard bool) (bool, error) {
	if hard {
		return s.employees.DeleteEmployee(ctx, id)
	}
	current, err := s.employees.FindEmployee(ctx, id)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}
	inactive := false
	err = s.uow.RunInTx(ctx, func(tx OnboardingTx) error {
		if _, err := tx.UpdateEmployee(ctx, id, EmployeeUpdate{IsActive: &inactive}); err != nil {
			return &TransactionError{Step: "employee-delete", Err: err}
		}
		return nil
	})
	if err != nil {
		return false, mapPersistenceError(err)
	}
	return true, nil
}

func (s *Service) GetPerson(ctx context.Context, id uuid.UUID) (*Person, error) {
	person, err := s.persons.FindPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, &NotFoundError{Resource: "Person", ID: id.String()}
	}
	return person, nil
}

func (s *Service) ListPersons(ctx context.Context, skip, limit int) ([]Person, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.persons.ListPersons(ctx, skip, limit)
}

func (s *Service) SearchPersons(ctx context.Context, firstName, lastName string) ([]Person, error) {
	return s.persons.SearchPersons(ctx, firstName, lastName)
}

func (s *Service) PersonsWithoutEmployee(ctx context.Context) ([]Person, error) {
	return s.persons.ListPersonsWithoutEmployee(ctx)
}
