package repository

import (
	"context"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// ShiftFilter filtro opcional para listar turnos.
type ShiftFilter struct {
	EmployeeID string
}

// ShiftRepository define el puerto de persistencia para Shift (DIP).
type ShiftRepository interface {
	Create(ctx context.Context, s *entity.Shift) error
	GetByID(ctx context.Context, id string) (*entity.Shift, error)
	List(ctx context.Context, f ShiftFilter) ([]entity.Shift, error)
	// UpdateDay mueve el turno de día. Devuelve domain.ErrNotFound si no existe.
	UpdateDay(ctx context.Context, id string, day int) error
	// Delete devuelve domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
