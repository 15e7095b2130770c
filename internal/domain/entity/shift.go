package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain"
)

// Tipos de turno (deben coincidir con el CHECK de shifts.shift_type).
const (
	ShiftRegular  = "regular"
	ShiftTimeOff  = "time-off"
	ShiftTraining = "training"
)

// Shift turno semanal asignado a un empleado. Day: 0 = domingo … 6 = sábado.
type Shift struct {
	ID         string
	EmployeeID string
	CreatedBy  string
	Type       string
	Day        int
	StartTime  string  // HH:MM o HH:MM:SS
	EndTime    *string // nil = turno abierto
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecordID identificador usado por el estado local sincronizado.
func (s Shift) RecordID() string { return s.ID }

// MoveTo cambia el día del turno validando el rango [0,6].
func (s *Shift) MoveTo(day int) error {
	if err := ValidateDay(day); err != nil {
		return err
	}
	s.Day = day
	return nil
}

// Validate comprueba tipo, día y horas.
func (s *Shift) Validate() error {
	if s.EmployeeID == "" {
		return domain.ErrInvalidInput
	}
	if !IsValidShiftType(s.Type) {
		return domain.ErrInvalidInput
	}
	if err := ValidateDay(s.Day); err != nil {
		return err
	}
	if !IsClockTime(s.StartTime) {
		return domain.ErrInvalidTime
	}
	if s.EndTime != nil && !IsClockTime(*s.EndTime) {
		return domain.ErrInvalidTime
	}
	return nil
}

// ValidateDay día de la semana en [0,6].
func ValidateDay(day int) error {
	if day < 0 || day > 6 {
		return domain.ErrInvalidDay
	}
	return nil
}

// IsValidShiftType informa si t es un tipo conocido.
func IsValidShiftType(t string) bool {
	return t == ShiftRegular || t == ShiftTimeOff || t == ShiftTraining
}

// IsClockTime valida "HH:MM" o "HH:MM:SS" en 24 horas.
func IsClockTime(v string) bool {
	parts := strings.Split(v, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return false
	}
	limits := []int{23, 59, 59}
	for i, p := range parts {
		if len(p) != 2 {
			return false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return false
		}
	}
	return true
}
