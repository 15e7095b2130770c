package repository

import (
	"context"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// EmployeeRepository define el puerto de persistencia para Employee (DIP).
// No hay Delete: las bajas se modelan con el estado.
type EmployeeRepository interface {
	Create(ctx context.Context, e *entity.Employee) error
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	// FindByEmail ficha con ese email (sin distinguir mayúsculas), o nil.
	FindByEmail(ctx context.Context, email string) (*entity.Employee, error)
	Update(ctx context.Context, e *entity.Employee) error
	// List devuelve el directorio completo ordenado por apellido y nombre.
	List(ctx context.Context) ([]entity.Employee, error)
}
