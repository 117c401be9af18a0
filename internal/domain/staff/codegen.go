package staff

import (
	"context"
	"fmt"
	"strings"
)

// CodeGenerator builds human-readable employee codes from name initials and
// the clinic code, probing the employee store until an unused candidate is
// found. Two concurrent generations on the same base can race; the loser
// fails the unique constraint at commit and surfaces as a duplicate-code
// validation failure.
type CodeGenerator struct {
	Employees EmployeeDirectory
}

func (g *CodeGenerator) Generate(ctx context.Context, firstName, lastName, clinicCode string) (string, error) {
	base := strings.ToUpper(initial(firstName) + initial(lastName) + clinicCode)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s%03d", base, counter)
		taken, err := g.Employees.ExistsByCode(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func initial(name string) string {
	for _, r := range name {
		return string(r)
	}
	return ""
}
