package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so the same queries
// serve reads outside and inside a transaction.
type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements the directories and the unit of work on Postgres.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx OnboardingTx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type txStore struct {
	tx pgx.Tx
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

const personColumns = `
    id, first_name, last_name,
    COALESCE(middle_name, ''),
    COALESCE(email, ''),
    COALESCE(phone_mobile_country_code, ''),
    COALESCE(phone_mobile_number, ''),
    COALESCE(phone_home_country_code, ''),
    COALESCE(phone_home_number, ''),
    dob,
    COALESCE(gender::text, ''),
    COALESCE(nationality, ''),
    COALESCE(id_type, ''),
    COALESCE(id_number, ''),
    created_at, updated_at`

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.MiddleName, &p.Email,
		&p.PhoneMobileCountryCode, &p.PhoneMobileNumber,
		&p.PhoneHomeCountryCode, &p.PhoneHomeNumber,
		&p.DOB, &p.Gender, &p.Nationality, &p.IDType, &p.IDNumber,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) FindPerson(ctx context.Context, id uuid.UUID) (*Person, error) {
	return findPerson(ctx, s.DB, id)
}

func findPerson(ctx context.Context, q dbtx, id uuid.UUID) (*Person, error) {
	person, err := scanPerson(q.QueryRow(ctx, `
    SELECT `+personColumns+`
    FROM persons
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return person, err
}

func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM persons
    WHERE email = $1
  `, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ExistsByIdentification(ctx context.Context, idType, idNumber string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM persons
    WHERE id_type = $1 AND id_number = $2
  `, idType, idNumber).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListPersons(ctx context.Context, skip, limit int) ([]Person, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+personColumns+`
    FROM persons
    ORDER BY last_name, first_name
    OFFSET $1 LIMIT $2
  `, skip, limit)
	if err != nil {
		return nil, err
	}
	return collectPersons(rows)
}

func (s *Store) SearchPersons(ctx context.Context, firstName, lastName string) ([]Person, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+personColumns+`
    FROM persons
    WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%')
      AND ($2 = '' OR last_name ILIKE '%' || $2 || '%')
    ORDER BY last_name, first_name
  `, firstName, lastName)
	if err != nil {
		return nil, err
	}
	return collectPersons(rows)
}

func (s *Store) ListPersonsWithoutEmployee(ctx context.Context) ([]Person, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, p.first_name, p.last_name,
           COALESCE(p.middle_name, ''),
           COALESCE(p.email, ''),
           COALESCE(p.phone_mobile_country_code, ''),
           COALESCE(p.phone_mobile_number, ''),
           COALESCE(p.phone_home_country_code, ''),
           COALESCE(p.phone_home_number, ''),
           p.dob,
           COALESCE(p.gender::text, ''),
           COALESCE(p.nationality, ''),
           COALESCE(p.id_type, ''),
           COALESCE(p.id_number, ''),
           p.created_at, p.updated_at
    FROM persons p
    LEFT JOIN employees e ON e.person_id = p.id
    WHERE e.id IS NULL
    ORDER BY p.last_name, p.first_name
  `)
	if err != nil {
		return nil, err
	}
	return collectPersons(rows)
}

func collectPersons(rows pgx.Rows) ([]Person, error) {
	defer rows.Close()
	var out []Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *person)
	}
	return out, rows.Err()
}

const employeeColumns = `
    e.id, e.person_id,
    COALESCE(e.employee_code, ''),
    e.primary_clinic_id, e.role::text,
    COALESCE(e.specialization, ''),
    COALESCE(e.license_number, ''),
    e.license_expiry, e.hire_date, e.termination_date,
    e.base_salary_minor,
    COALESCE(e.salary_currency, ''),
    e.commission_rate,
    e.is_active, e.can_perform_treatments,
    e.created_at, e.updated_at,
    p.id, p.first_name, p.last_name,
    COALESCE(p.middle_name, ''),
    COALESCE(p.email, ''),
    COALESCE(p.phone_mobile_country_code, ''),
    COALESCE(p.phone_mobile_number, ''),
    COALESCE(p.phone_home_country_code, ''),
    COALESCE(p.phone_home_number, ''),
    p.dob,
    COALESCE(p.gender::text, ''),
    COALESCE(p.nationality, ''),
    COALESCE(p.id_type, ''),
    COALESCE(p.id_number, ''),
    p.created_at, p.updated_at`

const employeeFrom = `
    FROM employees e
    JOIN persons p ON e.person_id = p.id`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	var p Person
	var role string
	err := row.Scan(
		&e.ID, &e.PersonID, &e.EmployeeCode, &e.PrimaryClinicID, &role,
		&e.Specialization, &e.LicenseNumber, &e.LicenseExpiry,
		&e.HireDate, &e.TerminationDate,
		&e.BaseSalaryMinor, &e.SalaryCurrency, &e.CommissionRate,
		&e.IsActive, &e.CanPerformTreatments,
		&e.CreatedAt, &e.UpdatedAt,
		&p.ID, &p.FirstName, &p.LastName, &p.MiddleName, &p.Email,
		&p.PhoneMobileCountryCode, &p.PhoneMobileNumber,
		&p.PhoneHomeCountryCode, &p.PhoneHomeNumber,
		&p.DOB, &p.Gender, &p.Nationality, &p.IDType, &p.IDNumber,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Role = Role(role)
	e.Person = &p
	return &e, nil
}

func (s *Store) FindEmployee(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return findEmployee(ctx, s.DB, id)
}

func findEmployee(ctx context.Context, q dbtx, id uuid.UUID) (*Employee, error) {
	employee, err := scanEmployee(q.QueryRow(ctx, `
    SELECT `+employeeColumns+employeeFrom+`
    WHERE e.id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return employee, err
}

func (s *Store) FindByCode(ctx context.Context, code string) (*Employee, error) {
	employee, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+employeeFrom+`
    WHERE e.employee_code = $1
  `, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return employee, err
}

func (s *Store) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE employee_code = $1
  `, code).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) FindByPersonID(ctx context.Context, personID uuid.UUID) (*Employee, error) {
	employee, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+employeeFrom+`
    WHERE e.person_id = $1
  `, personID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return employee, err
}

func (s *Store) ExistsByPersonID(ctx context.Context, personID uuid.UUID) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE person_id = $1
  `, personID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter ListFilter) ([]Employee, error) {
	where := []string{"1 = 1"}
	args := []any{}
	n := 1
	if filter.ClinicID != nil {
		where = append(where, fmt.Sprintf("e.primary_clinic_id = $%d", n))
		args = append(args, *filter.ClinicID)
		n++
	}
	if filter.Role != nil {
		where = append(where, fmt.Sprintf("e.role = $%d", n))
		args = append(args, string(*filter.Role))
		n++
	}
	if filter.IsActive != nil {
		where = append(where, fmt.Sprintf("e.is_active = $%d", n))
		args = append(args, *filter.IsActive)
		n++
	}
	args = append(args, filter.Skip, filter.Limit)

	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+employeeFrom+`
    WHERE `+strings.Join(where, " AND ")+`
    ORDER BY e.employee_code
    OFFSET $`+fmt.Sprint(n)+` LIMIT $`+fmt.Sprint(n+1)+`
  `, args...)
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func (s *Store) ListMedicalStaff(ctx context.Context, clinicID *uuid.UUID) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+employeeFrom+`
    WHERE e.can_perform_treatments AND e.is_active
      AND ($1::uuid IS NULL OR e.primary_clinic_id = $1)
    ORDER BY e.employee_code
  `, clinicID)
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func collectEmployees(rows pgx.Rows) ([]Employee, error) {
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *employee)
	}
	return out, rows.Err()
}

func (s *Store) DeleteEmployee(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM employees
    WHERE id = $1
  `, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) FindClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	var c Clinic
	err := s.DB.QueryRow(ctx, `
    SELECT id, code, name, is_active
    FROM clinics
    WHERE id = $1
  `, id).Scan(&c.ID, &c.Code, &c.Name, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *txStore) CreatePerson(ctx context.Context, sub Submission) (*Person, error) {
	return scanPerson(t.tx.QueryRow(ctx, `
    INSERT INTO persons
      (first_name, last_name, middle_name, email,
       phone_mobile_country_code, phone_mobile_number,
       phone_home_country_code, phone_home_number,
       dob, gender, nationality, id_type, id_number)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING `+personColumns+`
  `,
		sub.FirstName, sub.LastName, nullIfEmpty(sub.MiddleName), nullIfEmpty(sub.Email),
		nullIfEmpty(sub.PhoneMobileCountryCode), nullIfEmpty(sub.PhoneMobileNumber),
		nullIfEmpty(sub.PhoneHomeCountryCode), nullIfEmpty(sub.PhoneHomeNumber),
		sub.DOB, nullIfEmpty(sub.Gender), nullIfEmpty(sub.Nationality),
		nullIfEmpty(sub.IDType), nullIfEmpty(sub.IDNumber),
	))
}

func (t *txStore) CreateEmployee(ctx context.Context, sub Submission, personID uuid.UUID) (*Employee, error) {
	var e Employee
	err := t.tx.QueryRow(ctx, `
    INSERT INTO employees
      (person_id, employee_code, primary_clinic_id, role, specialization,
       license_number, license_expiry, hire_date, termination_date,
       base_salary_minor, salary_currency, commission_rate,
       is_active, can_perform_treatments)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    RETURNING id
  `,
		personID, sub.EmployeeCode, sub.PrimaryClinicID, string(sub.Role),
		nullIfEmpty(sub.Specialization), nullIfEmpty(sub.LicenseNumber), sub.LicenseExpiry,
		sub.HireDate, sub.TerminationDate, sub.BaseSalaryMinor,
		nullIfEmpty(sub.SalaryCurrency), sub.CommissionRate,
		sub.active(), sub.CanPerformTreatments,
	).Scan(&e.ID)
	if err != nil {
		return nil, err
	}
	e.PersonID = personID
	e.EmployeeCode = sub.EmployeeCode
	return &e, nil
}

func (t *txStore) UpdateEmployee(ctx context.Context, id uuid.UUID, upd EmployeeUpdate) (*Employee, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	n := 1
	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}

	if upd.EmployeeCode != nil {
		set("employee_code", nullIfEmpty(*upd.EmployeeCode))
	}
	if upd.PrimaryClinicID != nil {
		set("primary_clinic_id", *upd.PrimaryClinicID)
	}
	if upd.Role != nil {
		set("role", string(*upd.Role))
	}
	if upd.Specialization != nil {
		set("specialization", nullIfEmpty(*upd.Specialization))
	}
	if upd.LicenseNumber != nil {
		set("license_number", nullIfEmpty(*upd.LicenseNumber))
	}
	if upd.LicenseExpiry != nil {
		set("license_expiry", *upd.LicenseExpiry)
	}
	if upd.TerminationDate != nil {
		set("termination_date", *upd.TerminationDate)
	}
	if upd.BaseSalaryMinor != nil {
		set("base_salary_minor", *upd.BaseSalaryMinor)
	}
	if upd.SalaryCurrency != nil {
		set("salary_currency", nullIfEmpty(*upd.SalaryCurrency))
	}
	if upd.CommissionRate != nil {
		set("commission_rate", *upd.CommissionRate)
	}
	if upd.IsActive != nil {
		set("is_active", *upd.IsActive)
	}
	if upd.CanPerformTreatments != nil {
		set("can_perform_treatments", *upd.CanPerformTreatments)
	}

	args = append(args, id)
	var e Employee
	err := t.tx.QueryRow(ctx, fmt.Sprintf(`
    UPDATE employees
    SET %s
    WHERE id = $%d
    RETURNING id
  `, strings.Join(sets, ", "), n), args...).Scan(&e.ID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *txStore) ReloadEmployee(ctx context.Context, id uuid.UUID) (*Employee, error) {
	employee, err := findEmployee(ctx, t.tx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, pgx.ErrNoRows
	}
	return employee, nil
}
