package staffhandler

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"clinic/internal/domain/staff"
	"clinic/internal/transport/http/shared"
)

type submissionPayload struct {
	PersonID               string `json:"personId"`
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	MiddleName             string `json:"middleName"`
	Email                  string `json:"email"`
	PhoneMobileCountryCode string `json:"phoneMobileCountryCode"`
	PhoneMobileNumber      string `json:"phoneMobileNumber"`
	PhoneHomeCountryCode   string `json:"phoneHomeCountryCode"`
	PhoneHomeNumber        string `json:"phoneHomeNumber"`
	DOB                    string `json:"dob"`
	Gender                 string `json:"gender"`
	Nationality            string `json:"nationality"`
	IDType                 string `json:"idType"`
	IDNumber               string `json:"idNumber"`

	EmployeeCode         string   `json:"employeeCode"`
	PrimaryClinicID      string   `json:"primaryClinicId"`
	Role                 string   `json:"role"`
	Specialization       string   `json:"specialization"`
	LicenseNumber        string   `json:"licenseNumber"`
	LicenseExpiry        string   `json:"licenseExpiry"`
	HireDate             string   `json:"hireDate"`
	TerminationDate      string   `json:"terminationDate"`
	BaseSalaryMinor      *int64   `json:"baseSalaryMinor"`
	SalaryCurrency       string   `json:"salaryCurrency"`
	CommissionRate       *float64 `json:"commissionRate"`
	IsActive             *bool    `json:"isActive"`
	CanPerformTreatments bool     `json:"canPerformTreatments"`
}

// toSubmission converts the wire payload into the domain submission,
// collecting format problems instead of stopping at the first.
func (p submissionPayload) toSubmission() (staff.Submission, []string) {
	var problems []string

	sub := staff.Submission{
		FirstName:              p.FirstName,
		LastName:               p.LastName,
		MiddleName:             p.MiddleName,
		Email:                  p.Email,
		PhoneMobileCountryCode: p.PhoneMobileCountryCode,
		PhoneMobileNumber:      p.PhoneMobileNumber,
		PhoneHomeCountryCode:   p.PhoneHomeCountryCode,
		PhoneHomeNumber:        p.PhoneHomeNumber,
		Gender:                 p.Gender,
		Nationality:            p.Nationality,
		IDType:                 p.IDType,
		IDNumber:               p.IDNumber,
		EmployeeCode:           p.EmployeeCode,
		Role:                   staff.Role(p.Role),
		Specialization:         p.Specialization,
		LicenseNumber:          p.LicenseNumber,
		BaseSalaryMinor:        p.BaseSalaryMinor,
		SalaryCurrency:         p.SalaryCurrency,
		CommissionRate:         p.CommissionRate,
		IsActive:               p.IsActive,
		CanPerformTreatments:   p.CanPerformTreatments,
	}

	if p.PersonID != "" {
		id, err := uuid.Parse(p.PersonID)
		if err != nil {
			problems = append(problems, "personId must be a valid UUID")
		} else {
			sub.PersonID = &id
		}
	}

	if p.PrimaryClinicID == "" {
		problems = append(problems, "primaryClinicId is required")
	} else {
		id, err := uuid.Parse(p.PrimaryClinicID)
		if err != nil {
			problems = append(problems, "primaryClinicId must be a valid UUID")
		} else {
			sub.PrimaryClinicID = id
		}
	}

	if p.HireDate == "" {
		problems = append(problems, "hireDate is required")
	} else if parsed, err := shared.ParseDate(p.HireDate); err != nil {
		problems = append(problems, "hireDate must be a valid date")
	} else {
		sub.HireDate = parsed
	}

	sub.DOB = optionalDate(p.DOB, "dob", &problems)
	sub.LicenseExpiry = optionalDate(p.LicenseExpiry, "licenseExpiry", &problems)
	sub.TerminationDate = optionalDate(p.TerminationDate, "terminationDate", &problems)

	return sub, problems
}

type updatePayload struct {
	EmployeeCode         *string  `json:"employeeCode"`
	PrimaryClinicID      *string  `json:"primaryClinicId"`
	Role                 *string  `json:"role"`
	Specialization       *string  `json:"specialization"`
	LicenseNumber        *string  `json:"licenseNumber"`
	LicenseExpiry        *string  `json:"licenseExpiry"`
	TerminationDate      *string  `json:"terminationDate"`
	BaseSalaryMinor      *int64   `json:"baseSalaryMinor"`
	SalaryCurrency       *string  `json:"salaryCurrency"`
	CommissionRate       *float64 `json:"commissionRate"`
	IsActive             *bool    `json:"isActive"`
	CanPerformTreatments *bool    `json:"canPerformTreatments"`
}

func (p updatePayload) toUpdate() (staff.EmployeeUpdate, []string) {
	var problems []string

	upd := staff.EmployeeUpdate{
		EmployeeCode:         p.EmployeeCode,
		Specialization:       p.Specialization,
		LicenseNumber:        p.LicenseNumber,
		BaseSalaryMinor:      p.BaseSalaryMinor,
		SalaryCurrency:       p.SalaryCurrency,
		CommissionRate:       p.CommissionRate,
		IsActive:             p.IsActive,
		CanPerformTreatments: p.CanPerformTreatments,
	}

	if p.PrimaryClinicID != nil {
		id, err := uuid.Parse(*p.PrimaryClinicID)
		if err != nil {
			problems = append(problems, "primaryClinicId must be a valid UUID")
		} else {
			upd.PrimaryClinicID = &id
		}
	}
	if p.Role != nil {
		role := staff.Role(*p.Role)
		upd.Role = &role
	}
	if p.LicenseExpiry != nil {
		upd.LicenseExpiry = optionalDate(*p.LicenseExpiry, "licenseExpiry", &problems)
	}
	if p.TerminationDate != nil {
		upd.TerminationDate = optionalDate(*p.TerminationDate, "terminationDate", &problems)
	}

	return upd, problems
}

func optionalDate(raw, field string, problems *[]string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := shared.ParseDate(raw)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s must be a valid date", field))
		return nil
	}
	return &parsed
}
