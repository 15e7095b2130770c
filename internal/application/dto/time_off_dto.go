package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTimeOffRequest solicitud de ausencia; fechas YYYY-MM-DD.
// EmployeeID solo lo usan managers/admin para solicitar en nombre de otro.
type CreateTimeOffRequest struct {
	EmployeeID string  `json:"employee_id,omitempty"`
	Type       string  `json:"type" validate:"required,oneof=vacation sick personal bereavement other"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date" validate:"required"`
	Reason     *string `json:"reason,omitempty"`
}

// TimeOffResponse solicitud cruda.
type TimeOffResponse struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	UserID      string     `json:"user_id"`
	Type        string     `json:"type"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Days        int        `json:"days"`
	Reason      *string    `json:"reason,omitempty"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	DecidedBy   *string    `json:"decided_by,omitempty"`
}

// BalanceResponse saldos de ausencia.
type BalanceResponse struct {
	EmployeeID   string          `json:"employee_id"`
	VacationDays decimal.Decimal `json:"vacation_days"`
	SickDays     decimal.Decimal `json:"sick_days"`
	PersonalDays decimal.Decimal `json:"personal_days"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
