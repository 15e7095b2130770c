package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

var (
	_ repository.TimeOffRepository = (*TimeOffRepo)(nil)
	_ repository.BalanceRepository = (*BalanceRepo)(nil)
)

const timeOffSelect = `
	SELECT id, employee_id, user_id, request_type, start_date, end_date, reason, status,
		submitted_at, decided_at, decided_by::text
	FROM time_off_requests`

// TimeOffRepo implementación de TimeOffRepository sobre PostgreSQL.
type TimeOffRepo struct {
	q Querier
}

// NewTimeOffRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTimeOffRepository(q Querier) *TimeOffRepo {
	return &TimeOffRepo{q: q}
}

// Create persiste una solicitud (siempre pending).
func (r *TimeOffRepo) Create(ctx context.Context, t *entity.TimeOffRequest) error {
	query := `
		INSERT INTO time_off_requests (id, employee_id, user_id, request_type, start_date, end_date, reason, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.EmployeeID, t.UserID, t.Type, t.StartDate, t.EndDate, t.Reason, string(t.Status), t.SubmittedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert time_off_request: %w", err)
	}
	return nil
}

// GetByID solicitud por id; nil si no existe.
func (r *TimeOffRepo) GetByID(ctx context.Context, id string) (*entity.TimeOffRequest, error) {
	t, err := scanTimeOff(r.q.QueryRow(ctx, timeOffSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get time_off_request: %w", err)
	}
	return t, nil
}

// List solicitudes, más recientes primero.
func (r *TimeOffRepo) List(ctx context.Context, f repository.TimeOffFilter) ([]entity.TimeOffRequest, error) {
	query := timeOffSelect + ` WHERE ($1 = '' OR employee_id::text = $1) AND ($2 = '' OR status = $2)
		ORDER BY submitted_at DESC`
	rows, err := r.q.Query(ctx, query, f.EmployeeID, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("list time_off_requests: %w", err)
	}
	defer rows.Close()
	var list []entity.TimeOffRequest
	for rows.Next() {
		t, err := scanTimeOff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time_off_request: %w", err)
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// Decide aprueba o rechaza. El WHERE status = 'pending' hace la transición atómica.
func (r *TimeOffRepo) Decide(ctx context.Context, id string, status entity.TimeOffStatus, by string, at time.Time) error {
	if !entity.CanTransition(entity.TimeOffPending, status) {
		return domain.ErrInvalidTransition
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE time_off_requests SET status = $2, decided_at = $3, decided_by = $4
		WHERE id = $1 AND status = 'pending'`, id, string(status), at, by)
	if err != nil {
		switch {
		case isInvalidText(err):
			return domain.ErrNotFound
		case isCheckViolation(err):
			return domain.ErrInvalidTransition
		}
		return fmt.Errorf("decide time_off_request: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = r.q.QueryRow(ctx, `SELECT status FROM time_off_requests WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("decide time_off_request: %w", err)
	}
	return domain.ErrInvalidTransition
}

func scanTimeOff(row pgxScanner) (*entity.TimeOffRequest, error) {
	var t entity.TimeOffRequest
	var status string
	err := row.Scan(
		&t.ID, &t.EmployeeID, &t.UserID, &t.Type, &t.StartDate, &t.EndDate, &t.Reason, &status,
		&t.SubmittedAt, &t.DecidedAt, &t.DecidedBy,
	)
	if err != nil {
		return nil, err
	}
	t.Status = entity.TimeOffStatus(status)
	return &t, nil
}

// BalanceRepo lectura de time_off_balances.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// GetByEmployee saldo del empleado; nil si no tiene fila.
func (r *BalanceRepo) GetByEmployee(ctx context.Context, employeeID string) (*entity.TimeOffBalance, error) {
	var b entity.TimeOffBalance
	err := r.q.QueryRow(ctx, `
		SELECT employee_id, vacation_days, sick_days, personal_days, updated_at
		FROM time_off_balances WHERE employee_id = $1`, employeeID,
	).Scan(&b.EmployeeID, &b.VacationDays, &b.SickDays, &b.PersonalDays, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get time_off_balance: %w", err)
	}
	return &b, nil
}

// List todos los saldos.
func (r *BalanceRepo) List(ctx context.Context) ([]entity.TimeOffBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT employee_id, vacation_days, sick_days, personal_days, updated_at
		FROM time_off_balances ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("list time_off_balances: %w", err)
	}
	defer rows.Close()
	var list []entity.TimeOffBalance
	for rows.Next() {
		var b entity.TimeOffBalance
		if err := rows.Scan(&b.EmployeeID, &b.VacationDays, &b.SickDays, &b.PersonalDays, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan time_off_balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Upsert fija el saldo de un empleado (carga inicial desde turnosctl).
func (r *BalanceRepo) Upsert(ctx context.Context, b *entity.TimeOffBalance) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO time_off_balances (employee_id, vacation_days, sick_days, personal_days, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id) DO UPDATE SET vacation_days = EXCLUDED.vacation_days,
			sick_days = EXCLUDED.sick_days, personal_days = EXCLUDED.personal_days, updated_at = EXCLUDED.updated_at`,
		b.EmployeeID, b.VacationDays, b.SickDays, b.PersonalDays, b.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert time_off_balance: %w", err)
	}
	return nil
}
