package entity

import "time"

// Estados de Employee. Nunca se borra un empleado: se cambia el estado.
const (
	EmployeeActive   = "Active"
	EmployeeOnLeave  = "On Leave"
	EmployeeInactive = "Inactive"
)

// Employee ficha del directorio de personal.
type Employee struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Department string
	Position   string
	Status     string // Active, On Leave, Inactive
	HireDate   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecordID identificador usado por el estado local sincronizado.
func (e Employee) RecordID() string { return e.ID }

// FullName nombre para mostrar.
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// IsValidEmployeeStatus informa si s es un estado conocido.
func IsValidEmployeeStatus(s string) bool {
	return s == EmployeeActive || s == EmployeeOnLeave || s == EmployeeInactive
}
