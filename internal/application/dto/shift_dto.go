package dto

import "time"

// CreateShiftRequest alta de turno. Day: 0 = domingo … 6 = sábado.
type CreateShiftRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required,uuid"`
	Type       string  `json:"type" validate:"omitempty,oneof=regular time-off training"`
	Day        *int    `json:"day" validate:"required,min=0,max=6"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    *string `json:"end_time,omitempty"`
}

// MoveShiftRequest cambio de día.
type MoveShiftRequest struct {
	Day *int `json:"day" validate:"required,min=0,max=6"`
}

// ShiftResponse turno crudo.
type ShiftResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	CreatedBy  string    `json:"created_by,omitempty"`
	Type       string    `json:"type"`
	Day        int       `json:"day"`
	StartTime  string    `json:"start_time"`
	EndTime    *string   `json:"end_time,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
