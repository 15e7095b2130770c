package entity

import "time"

// Roles válidos (deben coincidir con el CHECK de user_roles).
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa el principal autenticado (credenciales).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile vincula un User con su ficha de Employee (puede no tener una, ej. cuentas de servicio).
type UserProfile struct {
	UserID     string
	EmployeeID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserRole etiqueta de rol de un usuario (muchos por usuario).
type UserRole struct {
	UserID    string
	Role      string
	CreatedAt time.Time
}

// IsValidRole informa si r es uno de los roles conocidos.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// HasRole informa si roles contiene alguno de want.
func HasRole(roles []string, want ...string) bool {
	for _, r := range roles {
		for _, w := range want {
			if r == w {
				return true
			}
		}
	}
	return false
}
