package dto

import "time"

// RegisterRequest entrada para registro (auth). Si existe una ficha con el mismo email se vincula.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	EmployeeID *string   `json:"employee_id,omitempty"`
	Roles      []string  `json:"roles"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MeResponse perfil del usuario autenticado.
type MeResponse struct {
	User     UserResponse      `json:"user"`
	Employee *EmployeeResponse `json:"employee,omitempty"`
}
