package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

// EmployeeUseCase directorio de personal.
type EmployeeUseCase struct {
	repo repository.EmployeeRepository
}

// NewEmployeeUseCase construye el caso de uso con el puerto de persistencia.
func NewEmployeeUseCase(repo repository.EmployeeRepository) *EmployeeUseCase {
	return &EmployeeUseCase{repo: repo}
}

// List aplica búsqueda y pestaña; Counts refleja la búsqueda antes de la pestaña.
func (uc *EmployeeUseCase) List(ctx context.Context, query, tab string) (*dto.EmployeeListResponse, error) {
	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	found := view.SearchEmployees(all, query)
	counts := map[string]int{
		view.TabAll:      len(found),
		view.TabActive:   len(view.FilterEmployeesByTab(found, view.TabActive)),
		view.TabOnLeave:  len(view.FilterEmployeesByTab(found, view.TabOnLeave)),
		view.TabInactive: len(view.FilterEmployeesByTab(found, view.TabInactive)),
	}
	list := view.FilterEmployeesByTab(found, tab)
	items := make([]dto.EmployeeResponse, 0, len(list))
	for i := range list {
		items = append(items, *toEmployeeResponse(&list[i]))
	}
	return &dto.EmployeeListResponse{Items: items, Counts: counts}, nil
}

// GetByID ficha por id.
func (uc *EmployeeUseCase) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return toEmployeeResponse(e), nil
}

// Create alta de ficha.
func (uc *EmployeeUseCase) Create(ctx context.Context, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	now := time.Now().UTC()
	e := &entity.Employee{
		ID:         uuid.New().String(),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
		Status:     in.Status,
		HireDate:   now.Truncate(24 * time.Hour),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if e.Status == "" {
		e.Status = entity.EmployeeActive
	}
	if in.HireDate != "" {
		d, err := parseDate(in.HireDate)
		if err != nil {
			return nil, err
		}
		e.HireDate = d
	}
	if err := validateEmployee(e); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return toEmployeeResponse(e), nil
}

// Update cambia datos o estado (las bajas son Status = Inactive).
func (uc *EmployeeUseCase) Update(ctx context.Context, id string, in dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&e.FirstName, in.FirstName)
	set(&e.LastName, in.LastName)
	set(&e.Email, in.Email)
	set(&e.Department, in.Department)
	set(&e.Position, in.Position)
	set(&e.Status, in.Status)
	if in.HireDate != nil {
		d, err := parseDate(*in.HireDate)
		if err != nil {
			return nil, err
		}
		e.HireDate = d
	}
	if err := validateEmployee(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return toEmployeeResponse(e), nil
}

func validateEmployee(e *entity.Employee) error {
	if e.FirstName == "" || e.LastName == "" || !strings.Contains(e.Email, "@") {
		return domain.ErrInvalidInput
	}
	if !entity.IsValidEmployeeStatus(e.Status) {
		return domain.ErrInvalidInput
	}
	return nil
}
