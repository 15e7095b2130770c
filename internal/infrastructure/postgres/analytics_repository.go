package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para analítica y el panel de administración.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetHeadcountByDepartment total y activos por departamento ('' se agrupa como 'Sin departamento').
func (r *AnalyticsRepo) GetHeadcountByDepartment(ctx context.Context) ([]repository.DepartmentHeadcount, error) {
	const query = `
	SELECT
	    COALESCE(NULLIF(department, ''), 'Sin departamento')  AS department,
	    COUNT(*)                                              AS total,
	    COUNT(*) FILTER (WHERE status = 'Active')             AS active
	FROM employees
	GROUP BY 1
	ORDER BY total DESC, department`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetHeadcountByDepartment: %w", err)
	}
	defer rows.Close()

	var results []repository.DepartmentHeadcount
	for rows.Next() {
		var row repository.DepartmentHeadcount
		if err := rows.Scan(&row.Department, &row.Total, &row.Active); err != nil {
			return nil, fmt.Errorf("analytics.GetHeadcountByDepartment scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetScheduledHoursByDay horas programadas por día. Turnos sin hora de fin cuentan como turno
// pero no suman horas; los que cruzan medianoche suman 24h.
func (r *AnalyticsRepo) GetScheduledHoursByDay(ctx context.Context) ([]repository.DayHours, error) {
	const query = `
	SELECT
	    day,
	    COUNT(*) AS shifts,
	    COALESCE(SUM(
	        CASE
	            WHEN end_time IS NULL THEN 0
	            WHEN end_time >= start_time THEN EXTRACT(EPOCH FROM (end_time - start_time)) / 3600
	            ELSE EXTRACT(EPOCH FROM (end_time - start_time)) / 3600 + 24
	        END
	    ), 0)::NUMERIC(10,2) AS hours
	FROM shifts
	GROUP BY day
	ORDER BY day`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetScheduledHoursByDay: %w", err)
	}
	defer rows.Close()

	var results []repository.DayHours
	for rows.Next() {
		var row repository.DayHours
		if err := rows.Scan(&row.Day, &row.Shifts, &row.Hours); err != nil {
			return nil, fmt.Errorf("analytics.GetScheduledHoursByDay scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetTimeOffByStatus conteo de solicitudes por estado.
func (r *AnalyticsRepo) GetTimeOffByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM time_off_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTimeOffByStatus: %w", err)
	}
	defer rows.Close()

	out := map[string]int{"pending": 0, "approved": 0, "denied": 0}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("analytics.GetTimeOffByStatus scan: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// GetSystemStats conteos globales en una sola consulta más los conteos por rol.
func (r *AnalyticsRepo) GetSystemStats(ctx context.Context) (*repository.SystemStats, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM users),
	    (SELECT COUNT(*) FROM employees),
	    (SELECT COUNT(*) FROM employees WHERE status = 'Active'),
	    (SELECT COUNT(*) FROM shifts),
	    (SELECT COUNT(*) FROM time_off_requests WHERE status = 'pending'),
	    (SELECT COUNT(*) FROM messages),
	    (SELECT COUNT(*) FROM messages WHERE read_at IS NULL)`

	var s repository.SystemStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.TotalUsers, &s.TotalEmployees, &s.ActiveEmployees, &s.TotalShifts,
		&s.PendingTimeOff, &s.TotalMessages, &s.UnreadMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSystemStats: %w", err)
	}

	s.RoleCounts, err = NewRoleRepository(r.pool).CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSystemStats: %w", err)
	}
	return &s, nil
}
