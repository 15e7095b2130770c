package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// TimeOffFilter filtro opcional para listar solicitudes.
type TimeOffFilter struct {
	EmployeeID string
	Status     entity.TimeOffStatus // vacío = todos
}

// TimeOffRepository define el puerto de persistencia para TimeOffRequest (DIP).
type TimeOffRepository interface {
	Create(ctx context.Context, r *entity.TimeOffRequest) error
	GetByID(ctx context.Context, id string) (*entity.TimeOffRequest, error)
	List(ctx context.Context, f TimeOffFilter) ([]entity.TimeOffRequest, error)
	// Decide fija el estado final solo si la solicitud sigue pending.
	// Devuelve domain.ErrInvalidTransition si ya estaba resuelta y domain.ErrNotFound si no existe.
	Decide(ctx context.Context, id string, status entity.TimeOffStatus, by string, at time.Time) error
}

// BalanceRepository lectura de saldos de ausencia (la app no los escribe).
type BalanceRepository interface {
	GetByEmployee(ctx context.Context, employeeID string) (*entity.TimeOffBalance, error)
	List(ctx context.Context) ([]entity.TimeOffBalance, error)
}
