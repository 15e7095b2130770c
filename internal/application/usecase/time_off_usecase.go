package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

// TimeOffUseCase solicitudes de ausencia y saldos.
type TimeOffUseCase struct {
	requests  repository.TimeOffRepository
	balances  repository.BalanceRepository
	employees repository.EmployeeRepository
}

// NewTimeOffUseCase construye el caso de uso.
func NewTimeOffUseCase(requests repository.TimeOffRepository, balances repository.BalanceRepository, employees repository.EmployeeRepository) *TimeOffUseCase {
	return &TimeOffUseCase{requests: requests, balances: balances, employees: employees}
}

// List filas de la pestaña. Managers ven todas; el resto solo las suyas.
func (uc *TimeOffUseCase) List(ctx context.Context, actor Actor, tab string) ([]view.TimeOffRow, error) {
	f := repository.TimeOffFilter{}
	if !actor.IsManager() {
		if actor.EmployeeID == "" {
			return []view.TimeOffRow{}, nil
		}
		f.EmployeeID = actor.EmployeeID
	}
	list, err := uc.requests.List(ctx, f)
	if err != nil {
		return nil, err
	}
	staff, err := uc.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	return view.TimeOffRows(view.FilterTimeOffByTab(list, tab), view.NewDirectory(staff)), nil
}

// Create registra una solicitud pending para el propio empleado (o para otro si es manager).
func (uc *TimeOffUseCase) Create(ctx context.Context, actor Actor, in dto.CreateTimeOffRequest) (*dto.TimeOffResponse, error) {
	employeeID := actor.EmployeeID
	if in.EmployeeID != "" && in.EmployeeID != actor.EmployeeID {
		if !actor.IsManager() {
			return nil, domain.ErrForbidden
		}
		employeeID = in.EmployeeID
	}
	if employeeID == "" {
		return nil, domain.ErrInvalidInput
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if in.Reason != nil && strings.TrimSpace(*in.Reason) == "" {
		in.Reason = nil
	}
	r := &entity.TimeOffRequest{
		ID:          uuid.New().String(),
		EmployeeID:  employeeID,
		UserID:      actor.UserID,
		Type:        in.Type,
		StartDate:   start,
		EndDate:     end,
		Reason:      in.Reason,
		Status:      entity.TimeOffPending,
		SubmittedAt: time.Now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := uc.requests.Create(ctx, r); err != nil {
		return nil, err
	}
	return toTimeOffResponse(r), nil
}

// Decide aprueba o rechaza (solo managers). ErrInvalidTransition si ya estaba resuelta.
func (uc *TimeOffUseCase) Decide(ctx context.Context, actor Actor, id string, status entity.TimeOffStatus) (*dto.TimeOffResponse, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	r, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now().UTC()
	if err := r.Transition(status, actor.UserID, now); err != nil {
		return nil, err
	}
	if err := uc.requests.Decide(ctx, id, status, actor.UserID, now); err != nil {
		return nil, err
	}
	return toTimeOffResponse(r), nil
}

// Balances saldos visibles para el actor.
func (uc *TimeOffUseCase) Balances(ctx context.Context, actor Actor) ([]dto.BalanceResponse, error) {
	out := []dto.BalanceResponse{}
	if !actor.IsManager() {
		b, err := uc.Balance(ctx, actor, actor.EmployeeID)
		if errors.Is(err, domain.ErrNotFound) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		return append(out, *b), nil
	}
	list, err := uc.balances.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out = append(out, *toBalanceResponse(&list[i]))
	}
	return out, nil
}

// Balance saldo de un empleado.
func (uc *TimeOffUseCase) Balance(ctx context.Context, actor Actor, employeeID string) (*dto.BalanceResponse, error) {
	if employeeID == "" {
		return nil, domain.ErrNotFound
	}
	if !actor.canSeeEmployee(employeeID) {
		return nil, domain.ErrForbidden
	}
	b, err := uc.balances.GetByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return toBalanceResponse(b), nil
}
