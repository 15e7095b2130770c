package entity

import (
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain"
)

// Tipos de ausencia.
const (
	TimeOffVacation    = "vacation"
	TimeOffSick        = "sick"
	TimeOffPersonal    = "personal"
	TimeOffBereavement = "bereavement"
	TimeOffOther       = "other"
)

// TimeOffStatus estado de una solicitud. Solo existe la transición pending → approved | denied.
type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDenied   TimeOffStatus = "denied"
)

// Valid informa si el estado es conocido.
func (s TimeOffStatus) Valid() bool {
	return s == TimeOffPending || s == TimeOffApproved || s == TimeOffDenied
}

// Decided informa si la solicitud ya fue resuelta (estado terminal).
func (s TimeOffStatus) Decided() bool {
	return s == TimeOffApproved || s == TimeOffDenied
}

// CanTransition reporta si from → to está permitido.
func CanTransition(from, to TimeOffStatus) bool {
	return from == TimeOffPending && to.Decided()
}

// TimeOffRequest solicitud de ausencia de un empleado.
type TimeOffRequest struct {
	ID          string
	EmployeeID  string
	UserID      string // quien la envió
	Type        string
	StartDate   time.Time
	EndDate     time.Time
	Reason      *string
	Status      TimeOffStatus
	SubmittedAt time.Time
	DecidedAt   *time.Time
	DecidedBy   *string
}

// RecordID identificador usado por el estado local sincronizado.
func (r TimeOffRequest) RecordID() string { return r.ID }

// Transition aplica el cambio de estado respetando el orden pending → decidido.
func (r *TimeOffRequest) Transition(to TimeOffStatus, by string, at time.Time) error {
	if !to.Valid() {
		return domain.ErrInvalidInput
	}
	if !CanTransition(r.Status, to) {
		return domain.ErrInvalidTransition
	}
	r.Status = to
	r.DecidedAt = &at
	if by != "" {
		r.DecidedBy = &by
	}
	return nil
}

// Validate comprueba tipo y rango de fechas.
func (r *TimeOffRequest) Validate() error {
	if r.EmployeeID == "" || r.UserID == "" {
		return domain.ErrInvalidInput
	}
	if !IsValidTimeOffType(r.Type) {
		return domain.ErrInvalidInput
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return domain.ErrInvalidInput
	}
	if r.EndDate.Before(r.StartDate) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

// Days duración inclusiva en días calendario.
func (r *TimeOffRequest) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// IsValidTimeOffType informa si t es un tipo conocido.
func IsValidTimeOffType(t string) bool {
	switch t {
	case TimeOffVacation, TimeOffSick, TimeOffPersonal, TimeOffBereavement, TimeOffOther:
		return true
	}
	return false
}
