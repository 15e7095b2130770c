package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeOffBalance saldo de días por empleado (una fila por empleado).
// Lo modifica un proceso externo; la app solo lo observa.
type TimeOffBalance struct {
	EmployeeID   string
	VacationDays decimal.Decimal
	SickDays     decimal.Decimal
	PersonalDays decimal.Decimal
	UpdatedAt    time.Time
}

// RecordID la clave del saldo es el empleado.
func (b TimeOffBalance) RecordID() string { return b.EmployeeID }
