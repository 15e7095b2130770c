// Package analytics contiene el caso de uso de la pantalla de analítica:
// plantilla por departamento, horas programadas y estado de las ausencias.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen de analítica.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
// Las series de personal previsto y costo laboral son estáticas: no hay motor de predicción.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo}
}

// GetSummary construye el AnalyticsSummaryResponse.
//
// Tres llamadas en paralelo:
//  1. GetHeadcountByDepartment → Headcount
//  2. GetScheduledHoursByDay   → ScheduledHours + TotalHours
//  3. GetTimeOffByStatus       → TimeOffByStatus
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.AnalyticsSummaryResponse, error) {
	type headcountResult struct {
		rows []repository.DepartmentHeadcount
		err  error
	}
	type hoursResult struct {
		rows []repository.DayHours
		err  error
	}
	type timeOffResult struct {
		byStatus map[string]int
		err      error
	}

	headCh := make(chan headcountResult, 1)
	hoursCh := make(chan hoursResult, 1)
	timeOffCh := make(chan timeOffResult, 1)

	go func() {
		rows, err := uc.analyticsRepo.GetHeadcountByDepartment(ctx)
		headCh <- headcountResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetScheduledHoursByDay(ctx)
		hoursCh <- hoursResult{rows, err}
	}()
	go func() {
		m, err := uc.analyticsRepo.GetTimeOffByStatus(ctx)
		timeOffCh <- timeOffResult{m, err}
	}()

	head := <-headCh
	hours := <-hoursCh
	timeOff := <-timeOffCh

	if head.err != nil {
		return nil, fmt.Errorf("analytics: plantilla: %w", head.err)
	}
	if hours.err != nil {
		return nil, fmt.Errorf("analytics: horas programadas: %w", hours.err)
	}
	if timeOff.err != nil {
		return nil, fmt.Errorf("analytics: ausencias: %w", timeOff.err)
	}

	headcount := make([]dto.DepartmentHeadcountDTO, 0, len(head.rows))
	for _, h := range head.rows {
		headcount = append(headcount, dto.DepartmentHeadcountDTO{Department: h.Department, Total: h.Total, Active: h.Active})
	}

	// Los siete días siempre presentes, aunque no tengan turnos.
	week := make([]dto.DayHoursDTO, 7)
	for d := range week {
		week[d] = dto.DayHoursDTO{Day: d, DayName: view.DayName(d), Hours: decimal.Zero}
	}
	total := decimal.Zero
	for _, h := range hours.rows {
		if h.Day < 0 || h.Day > 6 {
			continue
		}
		week[h.Day].Shifts = h.Shifts
		week[h.Day].Hours = h.Hours.Round(2)
		total = total.Add(h.Hours)
	}

	return &dto.AnalyticsSummaryResponse{
		Headcount:         headcount,
		ScheduledHours:    week,
		TotalHours:        total.Round(2),
		TimeOffByStatus:   timeOff.byStatus,
		PredictedStaffing: predictedStaffing(week),
		LaborCost:         laborCost(),
	}, nil
}

// predictedStaffing serie estática: lo programado contra una demanda fija por día.
func predictedStaffing(week []dto.DayHoursDTO) []dto.StaffingForecastDTO {
	demand := [7]int{6, 9, 9, 10, 11, 14, 12}
	out := make([]dto.StaffingForecastDTO, 0, 7)
	for d, w := range week {
		out = append(out, dto.StaffingForecastDTO{DayName: w.DayName, Scheduled: w.Shifts, Predicted: demand[d]})
	}
	return out
}

func laborCost() []dto.LaborCostDTO {
	series := []struct {
		week         string
		cost, budget string
	}{
		{"W1", "12450.00", "13000.00"},
		{"W2", "12980.50", "13000.00"},
		{"W3", "13420.75", "13000.00"},
		{"W4", "12760.25", "13000.00"},
	}
	out := make([]dto.LaborCostDTO, 0, len(series))
	for _, s := range series {
		out = append(out, dto.LaborCostDTO{
			Week:   s.week,
			Cost:   decimal.RequireFromString(s.cost),
			Budget: decimal.RequireFromString(s.budget),
		})
	}
	return out
}
