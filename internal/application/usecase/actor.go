package usecase

import (
	"strings"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// Actor usuario autenticado que invoca un caso de uso (viene del JWT).
type Actor struct {
	UserID     string
	EmployeeID string
	Roles      []string
}

// IsManager admin o manager.
func (a Actor) IsManager() bool {
	return entity.HasRole(a.Roles, entity.RoleAdmin, entity.RoleManager)
}

// canSeeEmployee managers ven a todos; el resto solo su propia ficha.
func (a Actor) canSeeEmployee(employeeID string) bool {
	return a.IsManager() || (a.EmployeeID != "" && a.EmployeeID == employeeID)
}

const dateLayout = "2006-01-02"

// parseDate fecha YYYY-MM-DD en UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.ErrInvalidInput
	}
	return t, nil
}
