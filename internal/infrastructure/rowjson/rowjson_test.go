package rowjson

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

func TestDecodeTimeOff_Fechas(t *testing.T) {
	r, err := DecodeTimeOff([]byte(`{"id":"r1","employee_id":"e1","user_id":"u1","request_type":"vacation",
		"start_date":"2026-12-20","end_date":"2026-12-24","reason":null,"status":"approved",
		"submitted_at":"2026-10-01T10:00:00+00:00","decided_at":"2026-10-02T10:00:00+00:00","decided_by":"u2"}`))
	require.NoError(t, err)
	assert.Equal(t, entity.TimeOffApproved, r.Status)
	assert.Equal(t, 5, r.Days())
	require.NotNil(t, r.DecidedBy)
	assert.Equal(t, "u2", *r.DecidedBy)
}

func TestDecodeBalance_Numeric(t *testing.T) {
	b, err := DecodeBalance([]byte(`{"employee_id":"e1","vacation_days":12.5,"sick_days":3,"personal_days":0,"updated_at":"2026-10-01T10:00:00Z"}`))
	require.NoError(t, err)
	assert.True(t, b.VacationDays.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "e1", b.RecordID())
}

func TestDecodeMessage(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"id":"m1","sender_id":"a","recipient_id":"b","content":"hola","created_at":"2026-10-01T10:00:00Z","read_at":null}`))
	require.NoError(t, err)
	assert.True(t, m.UnreadFor("b"))
}

func TestEncodeShift_FormatoDeFila(t *testing.T) {
	end := "17:00:00"
	raw, err := EncodeShift(entity.Shift{ID: "s1", EmployeeID: "e1", Type: "regular", Day: 3,
		StartTime: "09:00:00", EndTime: &end, CreatedAt: time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"created_by":null`)
	assert.Contains(t, string(raw), `"shift_type":"regular"`)

	back, err := DecodeShift(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, back.Day)
	assert.Equal(t, "17:00:00", *back.EndTime)
}

func TestEncodeTimeOff_FechasSinHora(t *testing.T) {
	raw, err := EncodeTimeOff(entity.TimeOffRequest{ID: "r1", Status: entity.TimeOffPending,
		StartDate: time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 12, 21, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"start_date":"2026-12-20"`)
	assert.Contains(t, string(raw), `"decided_at":null`)
}
