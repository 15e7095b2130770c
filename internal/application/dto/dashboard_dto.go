package dto

import "github.com/shopspring/decimal"

// DepartmentHeadcountDTO empleados por departamento.
type DepartmentHeadcountDTO struct {
	Department string `json:"department"`
	Total      int    `json:"total"`
	Active     int    `json:"active"`
}

// DayHoursDTO horas programadas de un día.
type DayHoursDTO struct {
	Day     int             `json:"day"`
	DayName string          `json:"day_name"`
	Shifts  int             `json:"shifts"`
	Hours   decimal.Decimal `json:"hours"`
}

// StaffingForecastDTO punto de la serie de personal previsto (datos estáticos).
type StaffingForecastDTO struct {
	DayName   string `json:"day_name"`
	Scheduled int    `json:"scheduled"`
	Predicted int    `json:"predicted"`
}

// LaborCostDTO punto de la serie de costo laboral (datos estáticos).
type LaborCostDTO struct {
	Week   string          `json:"week"`
	Cost   decimal.Decimal `json:"cost"`
	Budget decimal.Decimal `json:"budget"`
}

// AnalyticsSummaryResponse resumen para la pantalla de analítica.
type AnalyticsSummaryResponse struct {
	Headcount         []DepartmentHeadcountDTO `json:"headcount"`
	ScheduledHours    []DayHoursDTO            `json:"scheduled_hours"`
	TotalHours        decimal.Decimal          `json:"total_hours"`
	TimeOffByStatus   map[string]int           `json:"time_off_by_status"`
	PredictedStaffing []StaffingForecastDTO    `json:"predicted_staffing"`
	LaborCost         []LaborCostDTO           `json:"labor_cost"`
}

// SystemStatsResponse resultado de getSystemStats.
type SystemStatsResponse struct {
	TotalUsers      int            `json:"totalUsers"`
	TotalEmployees  int            `json:"totalEmployees"`
	ActiveEmployees int            `json:"activeEmployees"`
	TotalShifts     int            `json:"totalShifts"`
	PendingTimeOff  int            `json:"pendingTimeOff"`
	TotalMessages   int            `json:"totalMessages"`
	UnreadMessages  int            `json:"unreadMessages"`
	RoleCounts      map[string]int `json:"roleCounts"`
}

// AdminRequest cuerpo de /functions/admin-dashboard. Roles es puntero para distinguir ausente de vacío.
type AdminRequest struct {
	Action string    `json:"action"`
	UserID string    `json:"userId,omitempty"`
	Roles  *[]string `json:"roles,omitempty"`
}

// AssignRolesResponse resultado de assignRoles.
type AssignRolesResponse struct {
	Success bool     `json:"success"`
	UserID  string   `json:"userId"`
	Roles   []string `json:"roles"`
}
