package repository

import (
	"context"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// ProfileRepository vínculo usuario ↔ empleado.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *entity.UserProfile) error
	GetByUserID(ctx context.Context, userID string) (*entity.UserProfile, error)
	// GetByEmployeeID devuelve el perfil del usuario dueño de la ficha, o nil.
	GetByEmployeeID(ctx context.Context, employeeID string) (*entity.UserProfile, error)
	List(ctx context.Context) ([]entity.UserProfile, error)
}

// RoleRepository filas de user_roles.
type RoleRepository interface {
	ListByUser(ctx context.Context, userID string) ([]string, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	// ReplaceForUser borra todas las filas del usuario e inserta roles.
	// Debe ejecutarse dentro de una transacción (ver RoleTxRunner).
	ReplaceForUser(ctx context.Context, userID string, roles []string) error
}

// RoleTxRunner ejecuta fn con un RoleRepository atado a una transacción.
type RoleTxRunner interface {
	RunRoles(ctx context.Context, fn func(roles RoleRepository) error) error
}
