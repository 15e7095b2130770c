package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Turnos-api/internal/domain"
)

func TestCanTransition_Reticulado(t *testing.T) {
	all := []TimeOffStatus{TimeOffPending, TimeOffApproved, TimeOffDenied}
	for _, from := range all {
		for _, to := range all {
			want := from == TimeOffPending && to != TimeOffPending
			assert.Equal(t, want, CanTransition(from, to), "%s → %s", from, to)
		}
	}
}

func TestTransition_FijaDecision(t *testing.T) {
	r := TimeOffRequest{Status: TimeOffPending}
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Transition(TimeOffDenied, "u-jefa", at))
	assert.Equal(t, TimeOffDenied, r.Status)
	require.NotNil(t, r.DecidedBy)
	assert.Equal(t, "u-jefa", *r.DecidedBy)
	assert.Equal(t, at, *r.DecidedAt)

	assert.ErrorIs(t, r.Transition(TimeOffApproved, "u-jefa", at), domain.ErrInvalidTransition)
	assert.ErrorIs(t, r.Transition("cancelled", "u-jefa", at), domain.ErrInvalidInput)
	assert.Equal(t, TimeOffDenied, r.Status)
}

func TestTimeOffRequest_ValidateYDias(t *testing.T) {
	d := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	r := TimeOffRequest{EmployeeID: "e", UserID: "u", Type: TimeOffVacation, StartDate: d, EndDate: d.AddDate(0, 0, 4)}
	require.NoError(t, r.Validate())
	assert.Equal(t, 5, r.Days())

	r.EndDate = d.AddDate(0, 0, -1)
	assert.ErrorIs(t, r.Validate(), domain.ErrInvalidDateRange)
}

func TestIsClockTime(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "23:59:59", "12:00:00"} {
		assert.True(t, IsClockTime(ok), ok)
	}
	for _, bad := range []string{"", "9:30", "24:00", "12:60", "12:00:60", "ab:cd", "12", "12:00:00:00"} {
		assert.False(t, IsClockTime(bad), bad)
	}
}

func TestShift_ValidateYMoveTo(t *testing.T) {
	end := "17:00"
	s := Shift{EmployeeID: "e", Type: ShiftRegular, Day: 3, StartTime: "09:00", EndTime: &end}
	require.NoError(t, s.Validate())

	assert.ErrorIs(t, s.MoveTo(7), domain.ErrInvalidDay)
	assert.ErrorIs(t, s.MoveTo(-1), domain.ErrInvalidDay)
	assert.Equal(t, 3, s.Day)
	require.NoError(t, s.MoveTo(0))
	assert.Equal(t, 0, s.Day)

	s.Type = "night"
	assert.ErrorIs(t, s.Validate(), domain.ErrInvalidInput)
}

func TestHasRoleYNombre(t *testing.T) {
	assert.True(t, HasRole([]string{RoleEmployee, RoleManager}, RoleAdmin, RoleManager))
	assert.False(t, HasRole(nil, RoleAdmin))
	assert.False(t, IsValidRole("root"))

	assert.Equal(t, "Ana Ruiz", Employee{FirstName: "Ana", LastName: "Ruiz"}.FullName())
	assert.Equal(t, "Ruiz", Employee{LastName: "Ruiz"}.FullName())
}
