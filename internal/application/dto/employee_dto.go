package dto

import "time"

// CreateEmployeeRequest alta de ficha. HireDate en formato YYYY-MM-DD (vacío = hoy).
type CreateEmployeeRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"omitempty,max=100"`
	Position   string `json:"position" validate:"omitempty,max=100"`
	Status     string `json:"status" validate:"omitempty,oneof=Active 'On Leave' Inactive"`
	HireDate   string `json:"hire_date" validate:"omitempty"`
}

// UpdateEmployeeRequest campos opcionales; nil = no cambia.
type UpdateEmployeeRequest struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Status     *string `json:"status,omitempty"`
	HireDate   *string `json:"hire_date,omitempty"`
}

// EmployeeResponse ficha del directorio.
type EmployeeResponse struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Status     string    `json:"status"`
	HireDate   string    `json:"hire_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmployeeListResponse directorio filtrado con los conteos por pestaña.
type EmployeeListResponse struct {
	Items  []EmployeeResponse `json:"items"`
	Counts map[string]int     `json:"counts"`
}
