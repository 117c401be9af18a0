package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func seedEmployeeWithCode(store *memStore, code string) {
	personID := store.addPerson(Person{FirstName: "Seed", LastName: "Person"})
	store.addEmployee(Employee{
		ID:           uuid.New(),
		PersonID:     personID,
		EmployeeCode: code,
		Role:         RoleReceptionist,
		IsActive:     true,
	})
}

func TestGenerateEmployeeCodeEmptyCodeSpace(t *testing.T) {
	store := newMemStore()
	gen := &CodeGenerator{Employees: store}

	code, err := gen.Generate(context.Background(), "Jane", "Doe", "NYC")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if code != "JDNYC001" {
		t.Fatalf("expected JDNYC001, got %s", code)
	}
}

func TestGenerateEmployeeCodeSkipsTakenCounters(t *testing.T) {
	store := newMemStore()
	seedEmployeeWithCode(store, "JDNYC001")
	seedEmployeeWithCode(store, "JDNYC002")
	seedEmployeeWithCode(store, "JDNYC003")
	gen := &CodeGenerator{Employees: store}

	code, err := gen.Generate(context.Background(), "Jane", "Doe", "NYC")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if code != "JDNYC004" {
		t.Fatalf("expected JDNYC004, got %s", code)
	}
}

func TestGenerateEmployeeCodeUppercasesBase(t *testing.T) {
	store := newMemStore()
	gen := &CodeGenerator{Employees: store}

	code, err := gen.Generate(context.Background(), "jane", "doe", "nyc")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if code != "JDNYC001" {
		t.Fatalf("expected JDNYC001, got %s", code)
	}
}
