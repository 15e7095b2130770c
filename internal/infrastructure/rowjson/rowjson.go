// Package rowjson codifica y decodifica filas en el formato JSON del canal de cambios
// (to_jsonb de Postgres: columnas snake_case, DATE "2006-01-02", TIMESTAMPTZ RFC 3339, TIME "15:04:05").
package rowjson

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

type pgDate struct{ time.Time }

func (d pgDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *pgDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("fecha %q: %w", s, err)
	}
	d.Time = t
	return nil
}

type employeeRow struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Status     string    `json:"status"`
	HireDate   pgDate    `json:"hire_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DecodeEmployee fila de employees.
func DecodeEmployee(raw json.RawMessage) (entity.Employee, error) {
	var r employeeRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return entity.Employee{}, fmt.Errorf("decode employee: %w", err)
	}
	return entity.Employee{
		ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Email: r.Email,
		Department: r.Department, Position: r.Position, Status: r.Status,
		HireDate: r.HireDate.Time, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

type shiftRow struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	CreatedBy  *string   `json:"created_by"`
	ShiftType  string    `json:"shift_type"`
	Day        int       `json:"day"`
	StartTime  string    `json:"start_time"`
	EndTime    *string   `json:"end_time"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DecodeShift fila de shifts.
func DecodeShift(raw json.RawMessage) (entity.Shift, error) {
	var r shiftRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return entity.Shift{}, fmt.Errorf("decode shift: %w", err)
	}
	s := entity.Shift{
		ID: r.ID, EmployeeID: r.EmployeeID, Type: r.ShiftType, Day: r.Day,
		StartTime: r.StartTime, EndTime: r.EndTime, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
	if r.CreatedBy != nil {
		s.CreatedBy = *r.CreatedBy
	}
	return s, nil
}

type timeOffRow struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	UserID      string     `json:"user_id"`
	RequestType string     `json:"request_type"`
	StartDate   pgDate     `json:"start_date"`
	EndDate     pgDate     `json:"end_date"`
	Reason      *string    `json:"reason"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	DecidedAt   *time.Time `json:"decided_at"`
	DecidedBy   *string    `json:"decided_by"`
}

// DecodeTimeOff fila de time_off_requests.
func DecodeTimeOff(raw json.RawMessage) (entity.TimeOffRequest, error) {
	var r timeOffRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return entity.TimeOffRequest{}, fmt.Errorf("decode time_off_request: %w", err)
	}
	return entity.TimeOffRequest{
		ID: r.ID, EmployeeID: r.EmployeeID, UserID: r.UserID, Type: r.RequestType,
		StartDate: r.StartDate.Time, EndDate: r.EndDate.Time, Reason: r.Reason,
		Status: entity.TimeOffStatus(r.Status), SubmittedAt: r.SubmittedAt,
		DecidedAt: r.DecidedAt, DecidedBy: r.DecidedBy,
	}, nil
}

type balanceRow struct {
	EmployeeID   string          `json:"employee_id"`
	VacationDays decimal.Decimal `json:"vacation_days"`
	SickDays     decimal.Decimal `json:"sick_days"`
	PersonalDays decimal.Decimal `json:"personal_days"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DecodeBalance fila de time_off_balances.
func DecodeBalance(raw json.RawMessage) (entity.TimeOffBalance, error) {
	var r balanceRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return entity.TimeOffBalance{}, fmt.Errorf("decode time_off_balance: %w", err)
	}
	return entity.TimeOffBalance{
		EmployeeID: r.EmployeeID, VacationDays: r.VacationDays, SickDays: r.SickDays,
		PersonalDays: r.PersonalDays, UpdatedAt: r.UpdatedAt,
	}, nil
}

type messageRow struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"sender_id"`
	RecipientID string     `json:"recipient_id"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at"`
}

// DecodeMessage fila de messages.
func DecodeMessage(raw json.RawMessage) (entity.Message, error) {
	var r messageRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return entity.Message{}, fmt.Errorf("decode message: %w", err)
	}
	return entity.Message{
		ID: r.ID, SenderID: r.SenderID, RecipientID: r.RecipientID, Content: r.Content,
		CreatedAt: r.CreatedAt, ReadAt: r.ReadAt,
	}, nil
}

// EncodeEmployee fila de employees.
func EncodeEmployee(e entity.Employee) (json.RawMessage, error) {
	return json.Marshal(employeeRow{
		ID: e.ID, FirstName: e.FirstName, LastName: e.LastName, Email: e.Email,
		Department: e.Department, Position: e.Position, Status: e.Status,
		HireDate: pgDate{e.HireDate}, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	})
}

// EncodeShift fila de shifts.
func EncodeShift(s entity.Shift) (json.RawMessage, error) {
	row := shiftRow{
		ID: s.ID, EmployeeID: s.EmployeeID, ShiftType: s.Type, Day: s.Day,
		StartTime: s.StartTime, EndTime: s.EndTime, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
	if s.CreatedBy != "" {
		row.CreatedBy = &s.CreatedBy
	}
	return json.Marshal(row)
}

// EncodeTimeOff fila de time_off_requests.
func EncodeTimeOff(r entity.TimeOffRequest) (json.RawMessage, error) {
	return json.Marshal(timeOffRow{
		ID: r.ID, EmployeeID: r.EmployeeID, UserID: r.UserID, RequestType: r.Type,
		StartDate: pgDate{r.StartDate}, EndDate: pgDate{r.EndDate}, Reason: r.Reason,
		Status: string(r.Status), SubmittedAt: r.SubmittedAt, DecidedAt: r.DecidedAt, DecidedBy: r.DecidedBy,
	})
}

// EncodeBalance fila de time_off_balances.
func EncodeBalance(b entity.TimeOffBalance) (json.RawMessage, error) {
	return json.Marshal(balanceRow{
		EmployeeID: b.EmployeeID, VacationDays: b.VacationDays, SickDays: b.SickDays,
		PersonalDays: b.PersonalDays, UpdatedAt: b.UpdatedAt,
	})
}

// EncodeMessage fila de messages.
func EncodeMessage(m entity.Message) (json.RawMessage, error) {
	return json.Marshal(messageRow{
		ID: m.ID, SenderID: m.SenderID, RecipientID: m.RecipientID, Content: m.Content,
		CreatedAt: m.CreatedAt, ReadAt: m.ReadAt,
	})
}
