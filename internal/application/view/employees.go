package view

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// Pestañas del directorio de personal.
const (
	TabAll      = "all"
	TabActive   = "active"
	TabOnLeave  = "on-leave"
	TabInactive = "inactive"
)

// SearchEmployees filtra por subcadena sin distinguir mayúsculas en nombre, apellido,
// email o departamento. Una consulta vacía devuelve la lista tal cual, en el mismo orden.
func SearchEmployees(list []entity.Employee, query string) []entity.Employee {
	q := strings.TrimSpace(query)
	if q == "" {
		return list
	}
	fold := cases.Fold()
	needle := fold.String(q)
	out := make([]entity.Employee, 0, len(list))
	for _, e := range list {
		for _, field := range []string{e.FirstName, e.LastName, e.Email, e.Department} {
			if strings.Contains(fold.String(field), needle) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// FilterEmployeesByTab aplica la pestaña de estado. Pestaña vacía o desconocida = todos.
func FilterEmployeesByTab(list []entity.Employee, tab string) []entity.Employee {
	var status string
	switch tab {
	case TabActive:
		status = entity.EmployeeActive
	case TabOnLeave:
		status = entity.EmployeeOnLeave
	case TabInactive:
		status = entity.EmployeeInactive
	default:
		return list
	}
	out := make([]entity.Employee, 0, len(list))
	for _, e := range list {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

// Directory índice id → empleado para las uniones de las proyecciones.
type Directory map[string]entity.Employee

// NewDirectory construye el índice.
func NewDirectory(list []entity.Employee) Directory {
	d := make(Directory, len(list))
	for _, e := range list {
		d[e.ID] = e
	}
	return d
}

// Name nombre completo o "Unknown" si el empleado no está en el directorio.
func (d Directory) Name(id string) string {
	if e, ok := d[id]; ok {
		return e.FullName()
	}
	return "Unknown"
}
