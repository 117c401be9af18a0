package staff

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
	RoleManager      Role = "manager"
	RoleFinance      Role = "finance"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RoleNurse, RoleReceptionist, RoleManager, RoleFinance, RoleAdmin:
		return true
	}
	return false
}

// Medical roles carry licensing requirements and may hold treatment permissions.
func (r Role) Medical() bool {
	return r == RoleDoctor || r == RoleNurse
}

// Commissionable roles are the only ones a commission rate applies to.
func (r Role) Commissionable() bool {
	return r == RoleDoctor || r == RoleManager
}

type Person struct {
	ID                     uuid.UUID  `json:"id"`
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	MiddleName             string     `json:"middleName,omitempty"`
	Email                  string     `json:"email,omitempty"`
	PhoneMobileCountryCode string     `json:"phoneMobileCountryCode,omitempty"`
	PhoneMobileNumber      string     `json:"phoneMobileNumber,omitempty"`
	PhoneHomeCountryCode   string     `json:"phoneHomeCountryCode,omitempty"`
	PhoneHomeNumber        string     `json:"phoneHomeNumber,omitempty"`
	DOB                    *time.Time `json:"dob,omitempty"`
	Gender                 string     `json:"gender,omitempty"`
	Nationality            string     `json:"nationality,omitempty"`
	IDType                 string     `json:"idType,omitempty"`
	IDNumber               string     `json:"idNumber,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

type Employee struct {
	ID                   uuid.UUID  `json:"id"`
	PersonID             uuid.UUID  `json:"personId"`
	EmployeeCode         string     `json:"employeeCode"`
	PrimaryClinicID      uuid.UUID  `json:"primaryClinicId"`
	Role                 Role       `json:"role"`
	Specialization       string     `json:"specialization,omitempty"`
	LicenseNumber        string     `json:"licenseNumber,omitempty"`
	LicenseExpiry        *time.Time `json:"licenseExpiry,omitempty"`
	HireDate             time.Time  `json:"hireDate"`
	TerminationDate      *time.Time `json:"terminationDate,omitempty"`
	BaseSalaryMinor      *int64     `json:"baseSalaryMinor,omitempty"`
	SalaryCurrency       string     `json:"salaryCurrency,omitempty"`
	CommissionRate       *float64   `json:"commissionRate,omitempty"`
	IsActive             bool       `json:"isActive"`
	CanPerformTreatments bool       `json:"canPerformTreatments"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
	Person               *Person    `json:"person,omitempty"`
}

// Clinic is the narrow view the onboarding path needs; full clinic
// management lives in the clinics package.
type Clinic struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
}

// Submission combines the person and employee halves of one onboarding
// request. Optional fields are zero-valued when absent; PersonID switches
// to the attach path, reusing an existing person instead of creating one.
type Submission struct {
	PersonID               *uuid.UUID
	FirstName              string
	LastName               string
	MiddleName             string
	Email                  string
	PhoneMobileCountryCode string
	PhoneMobileNumber      string
	PhoneHomeCountryCode   string
	PhoneHomeNumber        string
	DOB                    *time.Time
	Gender                 string
	Nationality            string
	IDType                 string
	IDNumber               string

	EmployeeCode         string
	PrimaryClinicID      uuid.UUID
	Role                 Role
	Specialization       string
	LicenseNumber        string
	LicenseExpiry        *time.Time
	HireDate             time.Time
	TerminationDate      *time.Time
	BaseSalaryMinor      *int64
	SalaryCurrency       string
	CommissionRate       *float64
	IsActive             *bool
	CanPerformTreatments bool
}

func (s Submission) active() bool {
	if s.IsActive == nil {
		return true
	}
	return *s.IsActive
}

// EmployeeUpdate carries only the fields present in a partial update.
type EmployeeUpdate struct {
	EmployeeCode         *string
	PrimaryClinicID      *uuid.UUID
	Role                 *Role
	Specialization       *string
	LicenseNumber        *string
	LicenseExpiry        *time.Time
	TerminationDate      *time.Time
	BaseSalaryMinor      *int64
	SalaryCurrency       *string
	CommissionRate       *float64
	IsActive             *bool
	CanPerformTreatments *bool
}

type ListFilter struct {
	ClinicID *uuid.UUID
	Role     *Role
	IsActive *bool
	Skip     int
	Limit    int
}

type CreateResult struct {
	Employee Employee `json:"employee"`
	Person   Person   `json:"person"`
	Message  string   `json:"message"`
}

type BulkRequest struct {
	Submissions      []Submission
	StopOnError      bool
	ValidateAllFirst bool
}

type BulkFailure struct {
	Index        int    `json:"index"`
	EmployeeCode string `json:"employeeCode,omitempty"`
	Email        string `json:"email,omitempty"`
	Error        string `json:"error"`
}

type BulkResult struct {
	Created        []CreateResult `json:"created"`
	Failed         []BulkFailure  `json:"failed"`
	TotalProcessed int            `json:"totalProcessed"`
	TotalCreated   int            `json:"totalCreated"`
	TotalFailed    int            `json:"totalFailed"`
}
