package view

import (
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// TimeOffRow solicitud lista para mostrar.
type TimeOffRow struct {
	ID           string               `json:"id"`
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Type         string               `json:"type"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	Days         int                  `json:"days"`
	Reason       string               `json:"reason"`
	Status       entity.TimeOffStatus `json:"status"`
}

// FilterTimeOffByTab tab: all | pending | approved | denied. Vacío o desconocido = todas.
func FilterTimeOffByTab(list []entity.TimeOffRequest, tab string) []entity.TimeOffRequest {
	status := entity.TimeOffStatus(tab)
	if !status.Valid() {
		return list
	}
	out := make([]entity.TimeOffRequest, 0, len(list))
	for _, r := range list {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// TimeOffRows une el nombre del empleado y formatea fechas.
func TimeOffRows(list []entity.TimeOffRequest, dir Directory) []TimeOffRow {
	rows := make([]TimeOffRow, 0, len(list))
	for i := range list {
		r := list[i]
		reason := ""
		if r.Reason != nil {
			reason = *r.Reason
		}
		rows = append(rows, TimeOffRow{
			ID:           r.ID,
			EmployeeID:   r.EmployeeID,
			EmployeeName: dir.Name(r.EmployeeID),
			Type:         r.Type,
			StartDate:    r.StartDate.Format("Jan 2, 2006"),
			EndDate:      r.EndDate.Format("Jan 2, 2006"),
			Days:         r.Days(),
			Reason:       reason,
			Status:       r.Status,
		})
	}
	return rows
}

// CountPending predicado-conteo de solicitudes pendientes.
func CountPending(list []entity.TimeOffRequest) int {
	n := 0
	for _, r := range list {
		if r.Status == entity.TimeOffPending {
			n++
		}
	}
	return n
}
