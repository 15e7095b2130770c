package view_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// ── FormatTime12h ────────────────────────────────────────────────────────────

func TestFormatTime12h_TodasLasHoras(t *testing.T) {
	for h := 0; h <= 23; h++ {
		in := fmt.Sprintf("%02d:30", h)
		want := fmt.Sprintf("%d:30 AM", h)
		switch {
		case h == 0:
			want = "12:30 AM"
		case h == 12:
			want = "12:30 PM"
		case h > 12:
			want = fmt.Sprintf("%d:30 PM", h-12)
		}
		assert.Equal(t, want, view.FormatTime12h(in), "entrada %s", in)
	}
}

func TestFormatTime12h_ConSegundos(t *testing.T) {
	assert.Equal(t, "9:05 AM", view.FormatTime12h("09:05:00"))
	assert.Equal(t, "11:59 PM", view.FormatTime12h("23:59:59"))
}

func TestFormatTime12h_MalFormado(t *testing.T) {
	for _, in := range []string{"", "ab:cd", "xx:00", ":30", "9", "-1:00", "09:"} {
		assert.Equal(t, "", view.FormatTime12h(in), "entrada %q", in)
	}
}

func TestFormatOptionalTime12h_Nil(t *testing.T) {
	assert.Equal(t, "", view.FormatOptionalTime12h(nil))
	end := "17:00"
	assert.Equal(t, "5:00 PM", view.FormatOptionalTime12h(&end))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", view.RelativeTime(now.Add(-30*time.Second), now))
	assert.Equal(t, "1 minute ago", view.RelativeTime(now.Add(-time.Minute), now))
	assert.Equal(t, "5 minutes ago", view.RelativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3 hours ago", view.RelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", view.RelativeTime(now.Add(-48*time.Hour), now))
	assert.Equal(t, "Apr 1", view.RelativeTime(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Dec 31, 2023", view.RelativeTime(time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC), now))
}

// ── Búsqueda de empleados ────────────────────────────────────────────────────

func staff() []entity.Employee {
	return []entity.Employee{
		{ID: "1", FirstName: "Ana", LastName: "Gómez", Email: "ana@acme.co", Department: "Cocina", Position: "Chef", Status: entity.EmployeeActive},
		{ID: "2", FirstName: "Luis", LastName: "Pérez", Email: "luis@acme.co", Department: "Sala", Position: "Mesero", Status: entity.EmployeeOnLeave},
		{ID: "3", FirstName: "Marta", LastName: "Ruiz", Email: "marta@acme.co", Department: "Cocina", Position: "Ayudante", Status: entity.EmployeeInactive},
	}
}

func ids(list []entity.Employee) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestSearchEmployees_VacioDevuelveTodoEnOrden(t *testing.T) {
	list := staff()
	assert.Equal(t, list, view.SearchEmployees(list, ""))
	assert.Equal(t, list, view.SearchEmployees(list, "   "))
}

func TestSearchEmployees_SinDistinguirMayusculas(t *testing.T) {
	list := staff()
	assert.Equal(t, []string{"1", "3"}, ids(view.SearchEmployees(list, "COCINA")))
	assert.Equal(t, []string{"2"}, ids(view.SearchEmployees(list, "pÉrez")))
	assert.Equal(t, []string{"3"}, ids(view.SearchEmployees(list, "marta@")))
	assert.Empty(t, view.SearchEmployees(list, "zzz"))
}

func TestSearchEmployees_NoBuscaEnPuesto(t *testing.T) {
	assert.Empty(t, view.SearchEmployees(staff(), "mesero"))
}

// La propiedad: el resultado es exactamente el subconjunto que contiene la consulta en algún campo.
func TestSearchEmployees_EsSubconjuntoExacto(t *testing.T) {
	list := staff()
	for _, q := range []string{"a", "an", "co", "ruiz", "sala", "@"} {
		got := view.SearchEmployees(list, q)
		var want []string
		for _, e := range list {
			if containsFold(e.FirstName, q) || containsFold(e.LastName, q) ||
				containsFold(e.Email, q) || containsFold(e.Department, q) {
				want = append(want, e.ID)
			}
		}
		assert.Equal(t, want, ids(got), "consulta %q", q)
	}
}

func containsFold(s, sub string) bool {
	return len(view.SearchEmployees([]entity.Employee{{FirstName: s}}, sub)) == 1
}

func TestFilterEmployeesByTab(t *testing.T) {
	list := staff()
	assert.Equal(t, []string{"1"}, ids(view.FilterEmployeesByTab(list, view.TabActive)))
	assert.Equal(t, []string{"2"}, ids(view.FilterEmployeesByTab(list, view.TabOnLeave)))
	assert.Equal(t, []string{"3"}, ids(view.FilterEmployeesByTab(list, view.TabInactive)))
	assert.Len(t, view.FilterEmployeesByTab(list, view.TabAll), 3)
	assert.Len(t, view.FilterEmployeesByTab(list, ""), 3)
}

// ── Turnos ───────────────────────────────────────────────────────────────────

func TestShiftRows_UneEmpleadoYOrdena(t *testing.T) {
	end := "17:00:00"
	shifts := []entity.Shift{
		{ID: "s2", EmployeeID: "2", Type: entity.ShiftRegular, Day: 3, StartTime: "14:00:00"},
		{ID: "s1", EmployeeID: "1", Type: entity.ShiftTraining, Day: 1, StartTime: "09:00:00", EndTime: &end},
		{ID: "s3", EmployeeID: "x", Type: entity.ShiftRegular, Day: 1, StartTime: "07:30:00"},
	}
	rows := view.ShiftRows(shifts, view.NewDirectory(staff()))
	require.Len(t, rows, 3)

	assert.Equal(t, "s3", rows[0].ID)
	assert.Equal(t, "Unknown", rows[0].EmployeeName)

	assert.Equal(t, "s1", rows[1].ID)
	assert.Equal(t, "Ana Gómez", rows[1].EmployeeName)
	assert.Equal(t, "Chef", rows[1].Position)
	assert.Equal(t, "Monday", rows[1].DayName)
	assert.Equal(t, "9:00 AM", rows[1].StartLabel)
	assert.Equal(t, "5:00 PM", rows[1].EndLabel)

	assert.Equal(t, "", rows[2].EndLabel, "turno abierto sin hora de fin")

	week := view.GroupByDay(rows)
	assert.Len(t, week[1], 2)
	assert.Len(t, week[3], 1)
	assert.Empty(t, week[0])
}

// ── Ausencias ────────────────────────────────────────────────────────────────

func TestTimeOffTabsYFilas(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 7, day, 0, 0, 0, 0, time.UTC) }
	reason := "boda"
	list := []entity.TimeOffRequest{
		{ID: "a", EmployeeID: "1", Type: entity.TimeOffVacation, StartDate: d(1), EndDate: d(5), Status: entity.TimeOffPending, Reason: &reason},
		{ID: "b", EmployeeID: "2", Type: entity.TimeOffSick, StartDate: d(3), EndDate: d(3), Status: entity.TimeOffApproved},
		{ID: "c", EmployeeID: "3", Type: entity.TimeOffOther, StartDate: d(8), EndDate: d(9), Status: entity.TimeOffDenied},
	}

	assert.Len(t, view.FilterTimeOffByTab(list, "all"), 3)
	assert.Len(t, view.FilterTimeOffByTab(list, "pending"), 1)
	assert.Len(t, view.FilterTimeOffByTab(list, "approved"), 1)
	assert.Equal(t, 1, view.CountPending(list))

	rows := view.TimeOffRows(list, view.NewDirectory(staff()))
	require.Len(t, rows, 3)
	assert.Equal(t, 5, rows[0].Days)
	assert.Equal(t, "boda", rows[0].Reason)
	assert.Equal(t, "Jul 1, 2024", rows[0].StartDate)
	assert.Equal(t, 1, rows[1].Days)
}

// ── Conversaciones ───────────────────────────────────────────────────────────

func TestAggregateConversations_UltimoMensajeYNoLeidos(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)
	msgs := []entity.Message{
		{ID: "m1", SenderID: "A", RecipientID: "B", CreatedAt: t1},
		{ID: "m2", SenderID: "B", RecipientID: "A", CreatedAt: t2},
		{ID: "m3", SenderID: "A", RecipientID: "B", CreatedAt: t3},
	}

	convs := view.AggregateConversations(msgs, "A")
	require.Len(t, convs, 1)
	assert.Equal(t, "B", convs[0].OtherID)
	assert.Equal(t, "m3", convs[0].LatestMessage.ID)
	assert.Equal(t, 1, convs[0].UnreadCount, "solo cuenta B→A sin leer")
}

func TestAggregateConversations_LeidosNoCuentan(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	read := t1.Add(time.Hour)
	msgs := []entity.Message{
		{ID: "m1", SenderID: "B", RecipientID: "A", CreatedAt: t1, ReadAt: &read},
		{ID: "m2", SenderID: "B", RecipientID: "A", CreatedAt: t1.Add(time.Minute)},
		{ID: "m3", SenderID: "A", RecipientID: "B", CreatedAt: t1.Add(2 * time.Minute)},
	}
	convs := view.AggregateConversations(msgs, "A")
	require.Len(t, convs, 1)
	assert.Equal(t, 1, convs[0].UnreadCount)
}

func TestAggregateConversations_ExcluyeAutoMensajesYAjenos(t *testing.T) {
	now := time.Now()
	msgs := []entity.Message{
		{ID: "self", SenderID: "A", RecipientID: "A", CreatedAt: now},
		{ID: "ajeno", SenderID: "B", RecipientID: "C", CreatedAt: now},
	}
	assert.Empty(t, view.AggregateConversations(msgs, "A"))
}

func TestAggregateConversations_EmpateGanaElUltimoEnOrden(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	msgs := []entity.Message{
		{ID: "primero", SenderID: "A", RecipientID: "B", CreatedAt: ts},
		{ID: "segundo", SenderID: "B", RecipientID: "A", CreatedAt: ts},
	}
	convs := view.AggregateConversations(msgs, "A")
	require.Len(t, convs, 1)
	assert.Equal(t, "segundo", convs[0].LatestMessage.ID)
}

func TestAggregateConversations_OrdenPorReciente(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	msgs := []entity.Message{
		{ID: "m1", SenderID: "A", RecipientID: "B", CreatedAt: ts},
		{ID: "m2", SenderID: "C", RecipientID: "A", CreatedAt: ts.Add(time.Hour)},
	}
	convs := view.NameConversations(view.AggregateConversations(msgs, "A"), func(id string) string { return "user-" + id })
	require.Len(t, convs, 2)
	assert.Equal(t, "C", convs[0].OtherID)
	assert.Equal(t, "user-C", convs[0].OtherName)
	assert.Equal(t, "B", convs[1].OtherID)
	assert.Equal(t, 1, view.CountUnread(msgs, "A"))
}

func TestMessageRows(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msgs := []entity.Message{{ID: "m1", SenderID: "A", RecipientID: "B", Content: "hola", CreatedAt: now.Add(-2 * time.Hour)}}
	rows := view.MessageRows(msgs, "A", now)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Mine)
	assert.False(t, rows[0].Read)
	assert.Equal(t, "2 hours ago", rows[0].Relative)
}
