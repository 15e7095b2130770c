package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// Las horas se leen como texto (HH:MM:SS) para conservar el formato de pared.
const shiftSelect = `
	SELECT id, employee_id, COALESCE(created_by::text, ''), shift_type, day,
		start_time::text, end_time::text, created_at, updated_at
	FROM shifts`

// ShiftRepo implementación de ShiftRepository sobre PostgreSQL.
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

// Create persiste un turno.
func (r *ShiftRepo) Create(ctx context.Context, s *entity.Shift) error {
	query := `
		INSERT INTO shifts (id, employee_id, created_by, shift_type, day, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::time, $7::time, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.EmployeeID, nullableString(s.CreatedBy), s.Type, s.Day, s.StartTime, s.EndTime,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

// GetByID turno por id; nil si no existe.
func (r *ShiftRepo) GetByID(ctx context.Context, id string) (*entity.Shift, error) {
	s, err := scanShift(r.q.QueryRow(ctx, shiftSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return s, nil
}

// List turnos ordenados por día y hora de inicio.
func (r *ShiftRepo) List(ctx context.Context, f repository.ShiftFilter) ([]entity.Shift, error) {
	query := shiftSelect
	var args []any
	if f.EmployeeID != "" {
		query += ` WHERE employee_id = $1`
		args = append(args, f.EmployeeID)
	}
	query += ` ORDER BY day, start_time`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()
	var list []entity.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// UpdateDay mueve el turno de día.
func (r *ShiftRepo) UpdateDay(ctx context.Context, id string, day int) error {
	tag, err := r.q.Exec(ctx, `UPDATE shifts SET day = $2, updated_at = now() WHERE id = $1`, id, day)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidDay
		}
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update shift day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el turno.
func (r *ShiftRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanShift(row pgxScanner) (*entity.Shift, error) {
	var s entity.Shift
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CreatedBy, &s.Type, &s.Day,
		&s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
