package staff

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore backs the service tests with map-based tables and a staged
// transaction that enforces unique constraints at commit, like Postgres
// would. raceCodes are hidden from ExistsByCode to simulate a concurrent
// writer landing between the pre-check and the commit.
type memStore struct {
	persons   map[uuid.UUID]Person
	employees map[uuid.UUID]Employee
	clinics   map[uuid.UUID]Clinic

	raceCodes         map[string]bool
	personInsertErr   error
	employeeInsertErr error
}

func newMemStore() *memStore {
	return &memStore{
		persons:   map[uuid.UUID]Person{},
		employees: map[uuid.UUID]Employee{},
		clinics:   map[uuid.UUID]Clinic{},
		raceCodes: map[string]bool{},
	}
}

func (m *memStore) addClinic(code string, active bool) uuid.UUID {
	id := uuid.New()
	m.clinics[id] = Clinic{ID: id, Code: code, Name: code + " Clinic", IsActive: active}
	return id
}

func (m *memStore) addPerson(p Person) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.persons[p.ID] = p
	return p.ID
}

func (m *memStore) addEmployee(e Employee) uuid.UUID {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.employees[e.ID] = e
	return e.ID
}

func (m *memStore) FindPerson(_ context.Context, id uuid.UUID) (*Person, error) {
	if p, ok := m.persons[id]; ok {
		copied := p
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, p := range m.persons {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ExistsByIdentification(_ context.Context, idType, idNumber string) (bool, error) {
	for _, p := range m.persons {
		if p.IDType == idType && p.IDNumber == idNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListPersons(_ context.Context, skip, limit int) ([]Person, error) {
	var out []Person
	for _, p := range m.persons {
		out = append(out, p)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SearchPersons(_ context.Context, firstName, lastName string) ([]Person, error) {
	var out []Person
	for _, p := range m.persons {
		if firstName != "" && !strings.Contains(strings.ToLower(p.FirstName), strings.ToLower(firstName)) {
			continue
		}
		if lastName != "" && !strings.Contains(strings.ToLower(p.LastName), strings.ToLower(lastName)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) ListPersonsWithoutEmployee(_ context.Context) ([]Person, error) {
	var out []Person
	for _, p := range m.persons {
		if !m.personHasEmployee(p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) personHasEmployee(personID uuid.UUID) bool {
	for _, e := range m.employees {
		if e.PersonID == personID {
			return true
		}
	}
	return false
}

func (m *memStore) FindEmployee(_ context.Context, id uuid.UUID) (*Employee, error) {
	if e, ok := m.employees[id]; ok {
		return m.withPerson(e), nil
	}
	return nil, nil
}

func (m *memStore) withPerson(e Employee) *Employee {
	copied := e
	if p, ok := m.persons[e.PersonID]; ok {
		person := p
		copied.Person = &person
	}
	return &copied
}

func (m *memStore) FindByCode(_ context.Context, code string) (*Employee, error) {
	for _, e := range m.employees {
		if e.EmployeeCode == code {
			return m.withPerson(e), nil
		}
	}
	return nil, nil
}

func (m *memStore) ExistsByCode(_ context.Context, code string) (bool, error) {
	if m.raceCodes[code] {
		return false, nil
	}
	for _, e := range m.employees {
		if e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FindByPersonID(_ context.Context, personID uuid.UUID) (*Employee, error) {
	for _, e := range m.employees {
		if e.PersonID == personID {
			return m.withPerson(e), nil
		}
	}
	return nil, nil
}

func (m *memStore) ExistsByPersonID(_ context.Context, personID uuid.UUID) (bool, error) {
	return m.personHasEmployee(personID), nil
}

func (m *memStore) ListEmployees(_ context.Context, filter ListFilter) ([]Employee, error) {
	var out []Employee
	for _, e := range m.employees {
		if filter.ClinicID != nil && e.PrimaryClinicID != *filter.ClinicID {
			continue
		}
		if filter.Role != nil && e.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && e.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *m.withPerson(e))
	}
	return out, nil
}

func (m *memStore) ListMedicalStaff(_ context.Context, clinicID *uuid.UUID) ([]Employee, error) {
	var out []Employee
	for _, e := range m.employees {
		if !e.CanPerformTreatments || !e.IsActive {
			continue
		}
		if clinicID != nil && e.PrimaryClinicID != *clinicID {
			continue
		}
		out = append(out, *m.withPerson(e))
	}
	return out, nil
}

func (m *memStore) DeleteEmployee(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.employees[id]; !ok {
		return false, nil
	}
	delete(m.employees, id)
	return true, nil
}

func (m *memStore) FindClinic(_ context.Context, id uuid.UUID) (*Clinic, error) {
	if c, ok := m.clinics[id]; ok {
		copied := c
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) RunInTx(_ context.Context, fn func(tx OnboardingTx) error) error {
	tx := &memTx{
		store:     m,
		persons:   map[uuid.UUID]Person{},
		employees: map[uuid.UUID]Employee{},
	}
	if err := fn(tx); err != nil {
		return err
	}

	// commit-time constraint enforcement
	for _, e := range tx.employees {
		if m.raceCodes[e.EmployeeCode] {
			return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "employees_employee_code_key"}
		}
		for _, existing := range m.employees {
			if existing.EmployeeCode == e.EmployeeCode && existing.ID != e.ID {
				return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "employees_employee_code_key"}
			}
		}
	}
	for _, p := range tx.persons {
		for _, existing := range m.persons {
			if p.Email != "" && existing.Email == p.Email && existing.ID != p.ID {
				return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "persons_email_key"}
			}
		}
	}

	for id, p := range tx.persons {
		m.persons[id] = p
	}
	for id, e := range tx.employees {
		m.employees[id] = e
	}
	return nil
}

type memTx struct {
	store     *memStore
	persons   map[uuid.UUID]Person
	employees map[uuid.UUID]Employee
}

func (t *memTx) CreatePerson(_ context.Context, sub Submission) (*Person, error) {
	if t.store.personInsertErr != nil {
		return nil, t.store.personInsertErr
	}
	now := time.Now().UTC()
	p := Person{
		ID:                     uuid.New(),
		FirstName:              sub.FirstName,
		LastName:               sub.LastName,
		MiddleName:             sub.MiddleName,
		Email:                  sub.Email,
		PhoneMobileCountryCode: sub.PhoneMobileCountryCode,
		PhoneMobileNumber:      sub.PhoneMobileNumber,
		PhoneHomeCountryCode:   sub.PhoneHomeCountryCode,
		PhoneHomeNumber:        sub.PhoneHomeNumber,
		DOB:                    sub.DOB,
		Gender:                 sub.Gender,
		Nationality:            sub.Nationality,
		IDType:                 sub.IDType,
		IDNumber:               sub.IDNumber,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	t.persons[p.ID] = p
	return &p, nil
}

func (t *memTx) CreateEmployee(_ context.Context, sub Submission, personID uuid.UUID) (*Employee, error) {
	if t.store.employeeInsertErr != nil {
		return nil, t.store.employeeInsertErr
	}
	now := time.Now().UTC()
	e := Employee{
		ID:                   uuid.New(),
		PersonID:             personID,
		EmployeeCode:         sub.EmployeeCode,
		PrimaryClinicID:      sub.PrimaryClinicID,
		Role:                 sub.Role,
		Specialization:       sub.Specialization,
		LicenseNumber:        sub.LicenseNumber,
		LicenseExpiry:        sub.LicenseExpiry,
		HireDate:             sub.HireDate,
		TerminationDate:      sub.TerminationDate,
		BaseSalaryMinor:      sub.BaseSalaryMinor,
		SalaryCurrency:       sub.SalaryCurrency,
		CommissionRate:       sub.CommissionRate,
		IsActive:             sub.active(),
		CanPerformTreatments: sub.CanPerformTreatments,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	t.employees[e.ID] = e
	return &e, nil
}

func (t *memTx) UpdateEmployee(_ context.Context, id uuid.UUID, upd EmployeeUpdate) (*Employee, error) {
	e, ok := t.employees[id]
	if !ok {
		stored, found := t.store.employees[id]
		if !found {
			return nil, &NotFoundError{Resource: "Employee", ID: id.String()}
		}
		e = stored
	}
	if upd.EmployeeCode != nil {
		e.EmployeeCode = *upd.EmployeeCode
	}
	if upd.PrimaryClinicID != nil {
		e.PrimaryClinicID = *upd.PrimaryClinicID
	}
	if upd.Role != nil {
		e.Role = *upd.Role
	}
	if upd.Specialization != nil {
		e.Specialization = *upd.Specialization
	}
	if upd.LicenseNumber != nil {
		e.LicenseNumber = *upd.LicenseNumber
	}
	if upd.LicenseExpiry != nil {
		e.LicenseExpiry = upd.LicenseExpiry
	}
	if upd.TerminationDate != nil {
		e.TerminationDate = upd.TerminationDate
	}
	if upd.BaseSalaryMinor != nil {
		e.BaseSalaryMinor = upd.BaseSalaryMinor
	}
	if upd.SalaryCurrency != nil {
		e.SalaryCurrency = *upd.SalaryCurrency
	}
	if upd.CommissionRate != nil {
		e.CommissionRate = upd.CommissionRate
	}
	if upd.IsActive != nil {
		e.IsActive = *upd.IsActive
	}
	if upd.CanPerformTreatments != nil {
		e.CanPerformTreatments = *upd.CanPerformTreatments
	}
	e.UpdatedAt = time.Now().UTC()
	t.employees[id] = e
	return &e, nil
}

func (t *memTx) ReloadEmployee(_ context.Context, id uuid.UUID) (*Employee, error) {
	e, ok := t.employees[id]
	if !ok {
		stored, found := t.store.employees[id]
		if !found {
			return nil, &NotFoundError{Resource: "Employee", ID: id.String()}
		}
		e = stored
	}
	copied := e
	if p, ok := t.persons[e.PersonID]; ok {
		person := p
		copied.Person = &person
	} else if p, ok := t.store.persons[e.PersonID]; ok {
		person := p
		copied.Person = &person
	}
	return &copied, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func validSubmission(clinicID uuid.UUID) Submission {
	return Submission{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane.doe@example.com",
		PrimaryClinicID: clinicID,
		Role:            RoleReceptionist,
		HireDate:        date(2024, time.January, 15),
	}
}
