package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService(store *memStore) *Service {
	return NewService(store, store, store, store)
}

func TestCreateEmployeeGeneratesCodeAndPairsRecords(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	service := newTestService(store)

	result, err := service.CreateEmployee(context.Background(), validSubmission(clinicID), "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if result.Employee.EmployeeCode != "JDNYC001" {
		t.Fatalf("expected generated code JDNYC001, got %s", result.Employee.EmployeeCode)
	}
	if result.Employee.PersonID != result.Person.ID {
		t.Fatal("employee must reference the created person")
	}
	if result.Employee.Person == nil || result.Employee.Person.ID != result.Person.ID {
		t.Fatal("expected person embedded in employee view")
	}
	if result.Message == "" {
		t.Fatal("expected a creation message")
	}
	if len(store.persons) != 1 || len(store.employees) != 1 {
		t.Fatalf("expected one person and one employee persisted, got %d/%d", len(store.persons), len(store.employees))
	}
}

func TestCreateEmployeeRoundTripKeepsAllFields(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	service := newTestService(store)

	dob := date(1990, time.April, 12)
	expiry := date(2027, time.March, 1)
	termination := date(2026, time.December, 31)
	salary := int64(750000)
	rate := 15.0
	sub := Submission{
		FirstName:              "Maria",
		LastName:               "Lopez",
		MiddleName:             "Carmen",
		Email:                  "maria.lopez@example.com",
		PhoneMobileCountryCode: "+34",
		PhoneMobileNumber:      "600123456",
		PhoneHomeCountryCode:   "+34",
		PhoneHomeNumber:        "910123456",
		DOB:                    &dob,
		Gender:                 "F",
		Nationality:            "ES",
		IDType:                 "passport",
		IDNumber:               "AA1234567",
		EmployeeCode:           "MLNYC009",
		PrimaryClinicID:        clinicID,
		Role:                   RoleDoctor,
		Specialization:         "Dermatology",
		LicenseNumber:          "MD-2201",
		LicenseExpiry:          &expiry,
		HireDate:               date(2024, time.June, 1),
		TerminationDate:        &termination,
		BaseSalaryMinor:        &salary,
		SalaryCurrency:         "EUR",
		CommissionRate:         &rate,
		CanPerformTreatments:   true,
	}

	created, err := service.CreateEmployee(context.Background(), sub, "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	fetched, err := service.GetEmployee(context.Background(), created.Employee.ID)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if fetched.EmployeeCode != "MLNYC009" || fetched.Role != RoleDoctor || fetched.Specialization != "Dermatology" {
		t.Fatalf("employee fields lost: %+v", fetched)
	}
	if fetched.LicenseNumber != "MD-2201" || fetched.LicenseExpiry == nil || !fetched.LicenseExpiry.Equal(expiry) {
		t.Fatalf("license fields lost: %+v", fetched)
	}
	if fetched.BaseSalaryMinor == nil || *fetched.BaseSalaryMinor != salary || fetched.SalaryCurrency != "EUR" {
		t.Fatalf("compensation fields lost: %+v", fetched)
	}
	if fetched.CommissionRate == nil || *fetched.CommissionRate != rate {
		t.Fatalf("commission rate lost: %+v", fetched)
	}
	if fetched.TerminationDate == nil || !fetched.TerminationDate.Equal(termination) {
		t.Fatalf("termination date lost: %+v", fetched)
	}
	person := fetched.Person
	if person == nil {
		t.Fatal("expected embedded person")
	}
	if person.FirstName != "Maria" || person.MiddleName != "Carmen" || person.Email != "maria.lopez@example.com" {
		t.Fatalf("person name/email lost: %+v", person)
	}
	if person.PhoneMobileCountryCode != "+34" || person.PhoneMobileNumber != "600123456" ||
		person.PhoneHomeCountryCode != "+34" || person.PhoneHomeNumber != "910123456" {
		t.Fatalf("phone fields lost: %+v", person)
	}
	if person.DOB == nil || !person.DOB.Equal(dob) || person.Gender != "F" || person.Nationality != "ES" {
		t.Fatalf("personal details lost: %+v", person)
	}
	if person.IDType != "passport" || person.IDNumber != "AA1234567" {
		t.Fatalf("identification lost: %+v", person)
	}
}

func TestCreateEmployeeRollsBackPersonOnEmployeeFailure(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	store.employeeInsertErr = errors.New("disk on fire")
	service := newTestService(store)

	_, err := service.CreateEmployee(context.Background(), validSubmission(clinicID), "admin")
	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected TransactionError, got %v", err)
	}
	if txErr.Step != "employee-create" {
		t.Fatalf("expected employee-create step, got %s", txErr.Step)
	}
	if len(store.persons) != 0 {
		t.Fatalf("person row leaked after rollback: %d", len(store.persons))
	}
	if len(store.employees) != 0 {
		t.Fatalf("employee row leaked after rollback: %d", len(store.employees))
	}
}

func TestCreateEmployeeMapsCommitRaceToValidationFailure(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	// a concurrent writer took JDNYC001 between the probe and the commit
	store.raceCodes["JDNYC001"] = true
	service := newTestService(store)

	_, err := service.CreateEmployee(context.Background(), validSubmission(clinicID), "admin")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Reasons[0] != "employee code already exists" {
		t.Fatalf("expected duplicate-code reason, got %v", vErr.Reasons)
	}
	if len(store.persons) != 0 {
		t.Fatal("person row leaked after failed commit")
	}
}

func TestCreateEmployeeAttachExistingPerson(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	personID := store.addPerson(Person{FirstName: "Jane", LastName: "Doe"})
	service := newTestService(store)

	sub := validSubmission(clinicID)
	sub.Email = ""
	sub.PersonID = &personID

	result, err := service.CreateEmployee(context.Background(), sub, "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if result.Employee.PersonID != personID {
		t.Fatal("expected employee to reference the existing person")
	}
	if len(store.persons) != 1 {
		t.Fatalf("attach path must not create a second person, got %d", len(store.persons))
	}
}

func TestCreateEmployeeAttachUsesExistingPersonInitials(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	personID := store.addPerson(Person{FirstName: "Jane", LastName: "Doe"})
	service := newTestService(store)

	sub := validSubmission(clinicID)
	sub.FirstName = ""
	sub.LastName = ""
	sub.Email = ""
	sub.PersonID = &personID

	result, err := service.CreateEmployee(context.Background(), sub, "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if result.Employee.EmployeeCode != "JDNYC001" {
		t.Fatalf("expected code from the existing person's initials, got %s", result.Employee.EmployeeCode)
	}
}

// vanishingClinicStore serves the clinic once and reports it missing on
// every later lookup.
type vanishingClinicStore struct {
	*memStore
	calls int
}

func (s *vanishingClinicStore) FindClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	s.calls++
	if s.calls > 1 {
		return nil, nil
	}
	return s.memStore.FindClinic(ctx, id)
}

func TestCreateEmployeeClinicRemovedBeforeGeneration(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	clinics := &vanishingClinicStore{memStore: store}
	service := NewService(store, store, clinics, store)

	_, err := service.CreateEmployee(context.Background(), validSubmission(clinicID), "admin")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(store.employees) != 0 {
		t.Fatal("no employee must be created without a clinic")
	}
}

func TestCreateEmployeeRejectsPersonAlreadyEmployee(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	personID := store.addPerson(Person{FirstName: "Jane", LastName: "Doe"})
	store.addEmployee(Employee{PersonID: personID, EmployeeCode: "JD001", Role: RoleReceptionist, IsActive: true})
	service := newTestService(store)

	sub := validSubmission(clinicID)
	sub.Email = ""
	sub.PersonID = &personID

	_, err := service.CreateEmployee(context.Background(), sub, "admin")
	var already *AlreadyEmployeeError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyEmployeeError, got %v", err)
	}
	if len(store.employees) != 1 {
		t.Fatal("a second employee must never be created for the same person")
	}
}

func TestCreateEmployeeNormalizesCodeAndEmail(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	service := newTestService(store)

	sub := validSubmission(clinicID)
	sub.Email = "  Jane.Doe@Example.COM "
	sub.EmployeeCode = " jdnyc777 "

	result, err := service.CreateEmployee(context.Background(), sub, "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if result.Employee.EmployeeCode != "JDNYC777" {
		t.Fatalf("expected uppercased code, got %s", result.Employee.EmployeeCode)
	}
	if result.Person.Email != "jane.doe@example.com" {
		t.Fatalf("expected lowercased email, got %s", result.Person.Email)
	}
}

func TestUpdateEmployeeNotFound(t *testing.T) {
	store := newMemStore()
	service := newTestService(store)

	_, err := service.UpdateEmployee(context.Background(), uuid.New(), EmployeeUpdate{})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateEmployeeAppliesPartialUpdate(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	service := newTestService(store)

	created, err := service.CreateEmployee(context.Background(), validSubmission(clinicID), "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	specialization := "Front desk lead"
	updated, err := service.UpdateEmployee(context.Background(), created.Employee.ID, EmployeeUpdate{Specialization: &specialization})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if updated.Specialization != specialization {
		t.Fatalf("expected specialization update, got %+v", updated)
	}
	if updated.EmployeeCode != created.Employee.EmployeeCode {
		t.Fatal("untouched fields must be preserved")
	}
}

func TestDeleteEmployeeSoftByDefault(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	service := newTestService(store)

	created, err := service.CreateEmployee(context.Background(), validSubmission(clinicID), "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	deleted, err := service.DeleteEmployee(context.Background(), created.Employee.ID, false)
	if err != nil || !deleted {
		t.Fatalf("soft delete failed: %v %v", deleted, err)
	}
	remaining := store.employees[created.Employee.ID]
	if remaining.IsActive {
		t.Fatal("expected employee marked inactive")
	}
	if len(store.persons) != 1 {
		t.Fatal("person must survive employee removal")
	}

	deleted, err = service.DeleteEmployee(context.Background(), created.Employee.ID, true)
	if err != nil || !deleted {
		t.Fatalf("hard delete failed: %v %v", deleted, err)
	}
	if len(store.employees) != 0 {
		t.Fatal("expected employee row removed")
	}
	if len(store.persons) != 1 {
		t.Fatal("person must never be cascade-deleted")
	}
}

func TestGetEmployeeByCodeUppercasesLookup(t *testing.T) {
	store := newMemStore()
	clinicID := store.addClinic("NYC", true)
	service := newTestService(store)

	created, err := service.CreateEmployee(context.Background(), validSubmission(clinicID), "admin")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	fetched, err := service.GetEmployeeByCode(context.Background(), "jdnyc001")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if fetched.ID != created.Employee.ID {
		t.Fatal("expected lookup to find the created employee")
	}
}
