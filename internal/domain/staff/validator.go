package staff

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	countryCodePattern = regexp.MustCompile(`^\+\d{1,5}$`)
	phoneNumberPattern = regexp.MustCompile(`^\d{4,20}$`)
)

// Validator checks onboarding submissions against business rules and
// existing records. Duplicate and not-found findings abort immediately;
// everything else accumulates into one ValidationError.
type Validator struct {
	Persons   PersonDirectory
	Employees EmployeeDirectory
	Clinics   ClinicDirectory
}

func (v *Validator) ValidateCreate(ctx context.Context, sub Submission) error {
	if sub.Email != "" {
		taken, err := v.Persons.ExistsByEmail(ctx, sub.Email)
		if err != nil {
			return err
		}
		if taken {
			return &DuplicateError{Resource: "Person", Field: "email", Value: sub.Email}
		}
	}

	if sub.EmployeeCode != "" {
		taken, err := v.Employees.ExistsByCode(ctx, sub.EmployeeCode)
		if err != nil {
			return err
		}
		if taken {
			return &DuplicateError{Resource: "Employee", Field: "employee_code", Value: sub.EmployeeCode}
		}
	}

	clinic, err := v.Clinics.FindClinic(ctx, sub.PrimaryClinicID)
	if err != nil {
		return err
	}
	if clinic == nil {
		return &NotFoundError{Resource: "Clinic", ID: sub.PrimaryClinicID.String()}
	}

	var reasons []string
	if !clinic.IsActive {
		reasons = append(reasons, fmt.Sprintf("clinic %s is not active", clinic.Code))
	}

	if sub.PersonID == nil {
		if strings.TrimSpace(sub.FirstName) == "" {
			reasons = append(reasons, "first name is required")
		}
		if strings.TrimSpace(sub.LastName) == "" {
			reasons = append(reasons, "last name is required")
		}
	}
	if !sub.Role.Valid() {
		reasons = append(reasons, fmt.Sprintf("invalid role: %s", sub.Role))
	}
	if sub.HireDate.IsZero() {
		reasons = append(reasons, "hire date is required")
	}

	if sub.IDType != "" && sub.IDNumber != "" {
		taken, err := v.Persons.ExistsByIdentification(ctx, sub.IDType, sub.IDNumber)
		if err != nil {
			return err
		}
		if taken {
			reasons = append(reasons, fmt.Sprintf("person with %s number %s already exists", sub.IDType, sub.IDNumber))
		}
	}

	reasons = append(reasons, validatePhone("mobile", sub.PhoneMobileCountryCode, sub.PhoneMobileNumber)...)
	reasons = append(reasons, validatePhone("home", sub.PhoneHomeCountryCode, sub.PhoneHomeNumber)...)

	if sub.Role.Medical() {
		if sub.LicenseNumber == "" {
			reasons = append(reasons, fmt.Sprintf("license number is required for %s", sub.Role))
		}
		if sub.LicenseExpiry == nil {
			reasons = append(reasons, fmt.Sprintf("license expiry date is required for %s", sub.Role))
		}
	}

	if sub.BaseSalaryMinor != nil && sub.SalaryCurrency == "" {
		reasons = append(reasons, "salary currency is required when base salary is provided")
	}

	if sub.CommissionRate != nil && !sub.Role.Commissionable() {
		reasons = append(reasons, fmt.Sprintf("commission rate not applicable for role: %s", sub.Role))
	}

	if sub.CanPerformTreatments && !sub.Role.Medical() {
		reasons = append(reasons, "only doctor, nurse can perform treatments")
	}

	if sub.TerminationDate != nil && !sub.HireDate.IsZero() && sub.TerminationDate.Before(sub.HireDate) {
		reasons = append(reasons, "termination date cannot be before hire date")
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// validatePhone requires country code and number together; when both are
// present the formats are checked as well.
func validatePhone(channel, countryCode, number string) []string {
	switch {
	case countryCode == "" && number == "":
		return nil
	case countryCode == "" || number == "":
		return []string{fmt.Sprintf("%s phone requires both country code and number", channel)}
	}
	if !countryCodePattern.MatchString(countryCode) || !phoneNumberPattern.MatchString(number) {
		return []string{fmt.Sprintf("invalid %s phone format", channel)}
	}
	return nil
}

// ValidateUpdate re-checks only the fields present in a partial update
// against the employee's current state.
func (v *Validator) ValidateUpdate(ctx context.Context, current *Employee, upd EmployeeUpdate) error {
	if upd.EmployeeCode != nil {
		newCode := *upd.EmployeeCode
		if newCode != "" && newCode != current.EmployeeCode {
			taken, err := v.Employees.ExistsByCode(ctx, newCode)
			if err != nil {
				return err
			}
			if taken {
				return &DuplicateError{Resource: "Employee", Field: "employee_code", Value: newCode}
			}
		}
	}

	var reasons []string
	if upd.PrimaryClinicID != nil {
		clinic, err := v.Clinics.FindClinic(ctx, *upd.PrimaryClinicID)
		if err != nil {
			return err
		}
		if clinic == nil {
			return &NotFoundError{Resource: "Clinic", ID: upd.PrimaryClinicID.String()}
		}
		if !clinic.IsActive {
			reasons = append(reasons, fmt.Sprintf("clinic %s is not active", clinic.Code))
		}
	}

	if upd.TerminationDate != nil && upd.TerminationDate.Before(current.HireDate) {
		reasons = append(reasons, "termination date cannot be before hire date")
	}

	role := current.Role
	if upd.Role != nil {
		role = *upd.Role
		if !role.Valid() {
			reasons = append(reasons, fmt.Sprintf("invalid role: %s", role))
		}
	}
	treatments := current.CanPerformTreatments
	if upd.CanPerformTreatments != nil {
		treatments = *upd.CanPerformTreatments
	}
	if treatments && !role.Medical() {
		if upd.Role != nil && current.CanPerformTreatments {
			reasons = append(reasons, fmt.Sprintf("cannot change role to %s while employee has treatment permissions", role))
		} else {
			reasons = append(reasons, "only doctor, nurse can perform treatments")
		}
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// ValidatePersonNotEmployee guards the one-employee-per-person invariant on
// the attach path.
func (v *Validator) ValidatePersonNotEmployee(ctx context.Context, personID uuid.UUID) error {
	taken, err := v.Employees.ExistsByPersonID(ctx, personID)
	if err != nil {
		return err
	}
	if taken {
		return &AlreadyEmployeeError{PersonID: personID.String()}
	}
	return nil
}
