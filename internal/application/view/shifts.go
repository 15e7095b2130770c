package view

import (
	"sort"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// ShiftRow turno listo para el tablero semanal.
type ShiftRow struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Position     string `json:"position"`
	Type         string `json:"type"`
	Day          int    `json:"day"`
	DayName      string `json:"day_name"`
	StartLabel   string `json:"start_label"`
	EndLabel     string `json:"end_label"`
	StartTime    string `json:"start_time"`
}

// ShiftRows une empleado y formatos de hora; orden por día y hora de inicio.
func ShiftRows(shifts []entity.Shift, dir Directory) []ShiftRow {
	rows := make([]ShiftRow, 0, len(shifts))
	for _, s := range shifts {
		e := dir[s.EmployeeID]
		rows = append(rows, ShiftRow{
			ID:           s.ID,
			EmployeeID:   s.EmployeeID,
			EmployeeName: dir.Name(s.EmployeeID),
			Position:     e.Position,
			Type:         s.Type,
			Day:          s.Day,
			DayName:      DayName(s.Day),
			StartLabel:   FormatTime12h(s.StartTime),
			EndLabel:     FormatOptionalTime12h(s.EndTime),
			StartTime:    s.StartTime,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Day != rows[j].Day {
			return rows[i].Day < rows[j].Day
		}
		return rows[i].StartTime < rows[j].StartTime
	})
	return rows
}

// GroupByDay agrupa filas por día de la semana (índices 0..6).
func GroupByDay(rows []ShiftRow) [7][]ShiftRow {
	var week [7][]ShiftRow
	for _, r := range rows {
		if r.Day >= 0 && r.Day <= 6 {
			week[r.Day] = append(week[r.Day], r)
		}
	}
	return week
}
