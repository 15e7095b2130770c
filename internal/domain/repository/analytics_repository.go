package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// DepartmentHeadcount empleados por departamento.
type DepartmentHeadcount struct {
	Department string
	Total      int
	Active     int
}

// DayHours horas programadas por día de la semana (solo turnos con hora de fin).
type DayHours struct {
	Day    int
	Shifts int
	Hours  decimal.Decimal
}

// SystemStats conteos agregados para el panel de administración.
type SystemStats struct {
	TotalUsers      int
	TotalEmployees  int
	ActiveEmployees int
	TotalShifts     int
	PendingTimeOff  int
	TotalMessages   int
	UnreadMessages  int
	RoleCounts      map[string]int
}

// AnalyticsRepository consultas de solo lectura para analítica y administración.
type AnalyticsRepository interface {
	GetHeadcountByDepartment(ctx context.Context) ([]DepartmentHeadcount, error)
	GetScheduledHoursByDay(ctx context.Context) ([]DayHours, error)
	GetTimeOffByStatus(ctx context.Context) (map[string]int, error)
	GetSystemStats(ctx context.Context) (*SystemStats, error)
}
