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

// SchedulePDFGenerator puerto para el horario imprimible.
type SchedulePDFGenerator interface {
	GenerateSchedulePDF(ctx context.Context, title string, generatedAt time.Time, week [7][]view.ShiftRow) ([]byte, error)
}

// ShiftUseCase calendario semanal de turnos.
type ShiftUseCase struct {
	shifts    repository.ShiftRepository
	employees repository.EmployeeRepository
	pdf       SchedulePDFGenerator
}

// NewShiftUseCase construye el caso de uso. pdf puede ser nil si no se exporta.
func NewShiftUseCase(shifts repository.ShiftRepository, employees repository.EmployeeRepository, pdf SchedulePDFGenerator) *ShiftUseCase {
	return &ShiftUseCase{shifts: shifts, employees: employees, pdf: pdf}
}

// List turnos crudos, opcionalmente de un empleado.
func (uc *ShiftUseCase) List(ctx context.Context, employeeID string) ([]dto.ShiftResponse, error) {
	list, err := uc.shifts.List(ctx, repository.ShiftFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShiftResponse, 0, len(list))
	for i := range list {
		out = append(out, *toShiftResponse(&list[i]))
	}
	return out, nil
}

// Board filas proyectadas del tablero semanal.
func (uc *ShiftUseCase) Board(ctx context.Context) ([]view.ShiftRow, error) {
	list, err := uc.shifts.List(ctx, repository.ShiftFilter{})
	if err != nil {
		return nil, err
	}
	staff, err := uc.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	return view.ShiftRows(list, view.NewDirectory(staff)), nil
}

// Create alta de turno.
func (uc *ShiftUseCase) Create(ctx context.Context, actor Actor, in dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	if in.Day == nil {
		return nil, domain.ErrInvalidDay
	}
	emp, err := uc.employees.GetByID(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now().UTC()
	s := &entity.Shift{
		ID:         uuid.New().String(),
		EmployeeID: in.EmployeeID,
		CreatedBy:  actor.UserID,
		Type:       in.Type,
		Day:        *in.Day,
		StartTime:  strings.TrimSpace(in.StartTime),
		EndTime:    in.EndTime,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if s.Type == "" {
		s.Type = entity.ShiftRegular
	}
	if s.EndTime != nil && strings.TrimSpace(*s.EndTime) == "" {
		s.EndTime = nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := uc.shifts.Create(ctx, s); err != nil {
		return nil, err
	}
	return toShiftResponse(s), nil
}

// MoveDay cambia el día. Un empleado solo puede mover sus propios turnos.
func (uc *ShiftUseCase) MoveDay(ctx context.Context, actor Actor, id string, day int) (*dto.ShiftResponse, error) {
	if err := entity.ValidateDay(day); err != nil {
		return nil, err
	}
	s, err := uc.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.canSeeEmployee(s.EmployeeID) {
		return nil, domain.ErrForbidden
	}
	if err := uc.shifts.UpdateDay(ctx, id, day); err != nil {
		return nil, err
	}
	_ = s.MoveTo(day)
	s.UpdatedAt = time.Now().UTC()
	return toShiftResponse(s), nil
}

// Delete elimina el turno.
func (uc *ShiftUseCase) Delete(ctx context.Context, id string) error {
	return uc.shifts.Delete(ctx, id)
}

// ExportPDF horario semanal imprimible.
func (uc *ShiftUseCase) ExportPDF(ctx context.Context) ([]byte, error) {
	if uc.pdf == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.Board(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateSchedulePDF(ctx, "Horario semanal", time.Now(), view.GroupByDay(rows))
}
