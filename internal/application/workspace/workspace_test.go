package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Turnos-api/internal/application/livesync"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/realtime"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

const wait = 2 * time.Second

type fixture struct {
	store *memory.Store
	hub   *realtime.Hub
	rec   *livesync.Recorder
}

func ptr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	hub := realtime.NewHub(64, logger.Nop())
	t.Cleanup(hub.Close)
	s := memory.NewStore(hub)

	for _, u := range []struct{ user, emp, first, last string }{
		{"u-ana", "e-ana", "Ana", "Ruiz"},
		{"u-beto", "e-beto", "Beto", "Paz"},
		{"u-jefa", "e-jefa", "Carla", "Mora"},
	} {
		require.NoError(t, s.Users().Create(ctx, &entity.User{ID: u.user, Email: u.user + "@x.co", Status: entity.UserStatusActive}))
		require.NoError(t, s.Employees().Create(ctx, &entity.Employee{
			ID: u.emp, FirstName: u.first, LastName: u.last, Email: u.emp + "@x.co", Status: entity.EmployeeActive,
		}))
		require.NoError(t, s.Profiles().Upsert(ctx, &entity.UserProfile{UserID: u.user, EmployeeID: ptr(u.emp)}))
	}
	require.NoError(t, s.Roles().ReplaceForUser(ctx, "u-jefa", []string{entity.RoleManager}))

	require.NoError(t, s.Shifts().Create(ctx, &entity.Shift{ID: "s-ana", EmployeeID: "e-ana", Type: entity.ShiftRegular, Day: 2, StartTime: "09:00", EndTime: ptr("17:00")}))
	require.NoError(t, s.Shifts().Create(ctx, &entity.Shift{ID: "s-beto", EmployeeID: "e-beto", Type: entity.ShiftTraining, Day: 1, StartTime: "13:30"}))

	return &fixture{store: s, hub: hub, rec: &livesync.Recorder{}}
}

func (f *fixture) open(t *testing.T, session Session) *Workspace {
	t.Helper()
	w, err := Open(context.Background(), Deps{
		Employees: f.store.Employees(),
		Shifts:    f.store.Shifts(),
		TimeOff:   f.store.TimeOff(),
		Balances:  f.store.Balances(),
		Messages:  f.store.Messages(),
		Profiles:  f.store.Profiles(),
		Feed:      f.hub,
		Notifier:  f.rec,
		Log:       logger.Nop(),
	}, session)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

var (
	ana  = Session{UserID: "u-ana", EmployeeID: "e-ana", Roles: []string{entity.RoleEmployee}}
	jefa = Session{UserID: "u-jefa", EmployeeID: "e-jefa", Roles: []string{entity.RoleManager}}
)

func dayOf(t *testing.T, s *Schedule, id string) int {
	t.Helper()
	for _, r := range s.Rows() {
		if r.ID == id {
			return r.Day
		}
	}
	t.Fatalf("turno %s no está en el tablero", id)
	return -1
}

func TestOpen_SinUsuario(t *testing.T) {
	f := newFixture(t)
	_, err := Open(context.Background(), Deps{Feed: f.hub}, Session{})
	assert.Error(t, err)
}

func TestSchedule_FilasConNombreYHora12h(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	s, err := w.Schedule(context.Background())
	require.NoError(t, err)

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Beto Paz", rows[0].EmployeeName)
	assert.Equal(t, "1:30 PM", rows[0].StartLabel)
	assert.Equal(t, "Ana Ruiz", rows[1].EmployeeName)
	assert.Equal(t, "9:00 AM", rows[1].StartLabel)
}

func TestSchedule_MoverTurnoFallaYRevierte(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	s, err := w.Schedule(context.Background())
	require.NoError(t, err)

	f.store.FailNext("shifts.UpdateDay", errors.New("timeout"))
	err = s.MoveShift(context.Background(), "s-ana", 5)

	require.Error(t, err)
	assert.Equal(t, 2, dayOf(t, s, "s-ana"))
	assert.Equal(t, livesync.Clean, s.Status("s-ana"))
	assert.Equal(t, 1, f.rec.Count(livesync.LevelError))
	stored, _ := f.store.Shifts().GetByID(context.Background(), "s-ana")
	assert.Equal(t, 2, stored.Day)
}

func TestSchedule_MoverTurnoExitoso(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	s, err := w.Schedule(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.MoveShift(context.Background(), "s-ana", 5))
	assert.Equal(t, 5, dayOf(t, s, "s-ana"))
	assert.Zero(t, f.rec.Count(livesync.LevelError))

	stored, _ := f.store.Shifts().GetByID(context.Background(), "s-ana")
	assert.Equal(t, 5, stored.Day)
}

func TestSchedule_EmpleadoNoMueveTurnoAjeno(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	s, err := w.Schedule(context.Background())
	require.NoError(t, err)

	err = s.MoveShift(context.Background(), "s-beto", 4)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 1, dayOf(t, s, "s-beto"))
	assert.Zero(t, f.store.Calls("shifts.UpdateDay"))
	assert.Equal(t, 1, f.rec.Count(livesync.LevelError))
}

func TestSchedule_ManagerEliminaTurno(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, jefa)
	s, err := w.Schedule(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.DeleteShift(context.Background(), "s-beto"))
	assert.Len(t, s.Rows(), 1)
	got, _ := f.store.Shifts().GetByID(context.Background(), "s-beto")
	assert.Nil(t, got)
}

func TestSchedule_CambiosRemotosLleganPorElCanal(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	s, err := w.Schedule(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.store.Shifts().Create(ctx, &entity.Shift{ID: "s-new", EmployeeID: "e-beto", Type: entity.ShiftRegular, Day: 6, StartTime: "07:00"}))
	require.Eventually(t, func() bool { return len(s.Rows()) == 3 }, wait, 10*time.Millisecond)

	require.NoError(t, f.store.Shifts().UpdateDay(ctx, "s-beto", 3))
	require.Eventually(t, func() bool { return dayOf(t, s, "s-beto") == 3 }, wait, 10*time.Millisecond)

	require.NoError(t, f.store.Shifts().Delete(ctx, "s-new"))
	require.Eventually(t, func() bool { return len(s.Rows()) == 2 }, wait, 10*time.Millisecond)
}

func TestSchedule_NombreNuevoEmpleadoPorDirectorioEnVivo(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, jefa)
	s, err := w.Schedule(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.store.Employees().Create(ctx, &entity.Employee{ID: "e-dani", FirstName: "Dani", LastName: "Sol", Email: "dani@x.co", Status: entity.EmployeeActive}))
	require.NoError(t, f.store.Shifts().Create(ctx, &entity.Shift{ID: "s-dani", EmployeeID: "e-dani", Type: entity.ShiftRegular, Day: 0, StartTime: "08:00"}))

	require.Eventually(t, func() bool {
		for _, r := range s.Rows() {
			if r.ID == "s-dani" && r.EmployeeName == "Dani Sol" {
				return true
			}
		}
		return false
	}, wait, 10*time.Millisecond)
	assert.Len(t, w.Employees("dani", "all"), 1)
}

func seedRequest(t *testing.T, f *fixture, id, employee, user string) {
	t.Helper()
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.TimeOff().Create(context.Background(), &entity.TimeOffRequest{
		ID: id, EmployeeID: employee, UserID: user, Type: entity.TimeOffVacation, StartDate: day, EndDate: day.AddDate(0, 0, 2),
	}))
}

func TestTimeOff_EmpleadoSoloVeLasSuyas(t *testing.T) {
	f := newFixture(t)
	seedRequest(t, f, "r-ana", "e-ana", "u-ana")
	seedRequest(t, f, "r-beto", "e-beto", "u-beto")

	w := f.open(t, ana)
	v, err := w.TimeOff(context.Background())
	require.NoError(t, err)
	rows := v.Rows("all")
	require.Len(t, rows, 1)
	assert.Equal(t, "r-ana", rows[0].ID)

	seedRequest(t, f, "r-beto-2", "e-beto", "u-beto")
	seedRequest(t, f, "r-ana-2", "e-ana", "u-ana")
	require.Eventually(t, func() bool { return len(v.Rows("pending")) == 2 }, wait, 10*time.Millisecond)
	for _, r := range v.Rows("all") {
		assert.Equal(t, "e-ana", r.EmployeeID)
	}
}

func TestTimeOff_AprobarYNoVolverADecidir(t *testing.T) {
	f := newFixture(t)
	seedRequest(t, f, "r-ana", "e-ana", "u-ana")
	w := f.open(t, jefa)
	v, err := w.TimeOff(context.Background())
	require.NoError(t, err)

	require.NoError(t, v.Approve(context.Background(), "r-ana"))
	assert.Len(t, v.Rows("approved"), 1)
	assert.Zero(t, v.Pending())

	err = v.Deny(context.Background(), "r-ana")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	stored, _ := f.store.TimeOff().GetByID(context.Background(), "r-ana")
	assert.Equal(t, entity.TimeOffApproved, stored.Status)
	assert.Equal(t, 1, f.store.Calls("time_off.Decide"))
}

func TestTimeOff_DecididaEnOtroClienteRevierte(t *testing.T) {
	f := newFixture(t)
	seedRequest(t, f, "r-ana", "e-ana", "u-ana")
	w := f.open(t, jefa)
	v, err := w.TimeOff(context.Background())
	require.NoError(t, err)

	f.store.FailNext("time_off.Decide", domain.ErrInvalidTransition)
	err = v.Deny(context.Background(), "r-ana")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, v.Rows("pending"), 1)
	assert.Equal(t, 1, f.rec.Count(livesync.LevelError))
}

func TestTimeOff_EmpleadoNoDecide(t *testing.T) {
	f := newFixture(t)
	seedRequest(t, f, "r-ana", "e-ana", "u-ana")
	w := f.open(t, ana)
	v, err := w.TimeOff(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, v.Approve(context.Background(), "r-ana"), domain.ErrForbidden)
	assert.Zero(t, f.store.Calls("time_off.Decide"))
}

func TestBalances_ActualizacionEnVivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Balances().Upsert(ctx, &entity.TimeOffBalance{EmployeeID: "e-ana", VacationDays: decimal.NewFromInt(10)}))
	require.NoError(t, f.store.Balances().Upsert(ctx, &entity.TimeOffBalance{EmployeeID: "e-beto", VacationDays: decimal.NewFromInt(3)}))

	w := f.open(t, ana)
	b, err := w.Balances(ctx)
	require.NoError(t, err)
	require.Len(t, b.List(), 1)

	require.NoError(t, f.store.Balances().Upsert(ctx, &entity.TimeOffBalance{EmployeeID: "e-ana", VacationDays: decimal.RequireFromString("7.5")}))
	require.Eventually(t, func() bool {
		got, ok := b.Get("e-ana")
		return ok && got.VacationDays.Equal(decimal.RequireFromString("7.5"))
	}, wait, 10*time.Millisecond)
	_, ok := b.Get("e-beto")
	assert.False(t, ok)
}

func TestInbox_ConversacionesYNoLeidosEnVivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Messages().Create(ctx, &entity.Message{ID: "m1", SenderID: "u-beto", RecipientID: "u-ana", Content: "hola", CreatedAt: base}))
	require.NoError(t, f.store.Messages().Create(ctx, &entity.Message{ID: "m2", SenderID: "u-ana", RecipientID: "u-jefa", Content: "turno?", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, f.store.Messages().Create(ctx, &entity.Message{ID: "m3", SenderID: "u-beto", RecipientID: "u-jefa", Content: "ajeno", CreatedAt: base.Add(2 * time.Minute)}))

	w := f.open(t, ana)
	in, err := w.Inbox(ctx)
	require.NoError(t, err)

	conv := in.Conversations()
	require.Len(t, conv, 2)
	assert.Equal(t, "u-jefa", conv[0].OtherID)
	assert.Equal(t, "Carla Mora", conv[0].OtherName)
	assert.Equal(t, "u-beto", conv[1].OtherID)
	assert.Equal(t, 1, in.UnreadCount())

	require.NoError(t, f.store.Messages().Create(ctx, &entity.Message{ID: "m4", SenderID: "u-beto", RecipientID: "u-ana", Content: "¿sigues?", CreatedAt: base.Add(3 * time.Minute)}))
	require.Eventually(t, func() bool { return in.UnreadCount() == 2 }, wait, 10*time.Millisecond)
	assert.Equal(t, "u-beto", in.Conversations()[0].OtherID)
}

func TestInbox_NombreDeUsuarioVinculadoTrasAbrir(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.open(t, ana)
	in, err := w.Inbox(ctx)
	require.NoError(t, err)

	require.NoError(t, f.store.Users().Create(ctx, &entity.User{ID: "u-dora", Email: "dora@x.co", Status: entity.UserStatusActive}))
	require.NoError(t, f.store.Messages().Create(ctx, &entity.Message{ID: "m1", SenderID: "u-dora", RecipientID: "u-ana", Content: "soy nueva", CreatedAt: time.Now()}))
	require.Eventually(t, func() bool { return len(in.Conversations()) == 1 }, wait, 10*time.Millisecond)
	assert.Empty(t, in.Conversations()[0].OtherName)

	require.NoError(t, f.store.Employees().Create(ctx, &entity.Employee{
		ID: "e-dora", FirstName: "Dora", LastName: "Vega", Email: "e-dora@x.co", Status: entity.EmployeeActive,
	}))
	require.NoError(t, f.store.Profiles().Upsert(ctx, &entity.UserProfile{UserID: "u-dora", EmployeeID: ptr("e-dora")}))
	require.Eventually(t, func() bool { return in.Conversations()[0].OtherName == "Dora Vega" }, wait, 10*time.Millisecond)
}

func TestChat_EnviarYMarcarLeido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Messages().Create(ctx, &entity.Message{ID: "m1", SenderID: "u-beto", RecipientID: "u-ana", Content: "hola"}))
	require.NoError(t, f.store.Messages().Create(ctx, &entity.Message{ID: "m2", SenderID: "u-jefa", RecipientID: "u-ana", Content: "otro hilo"}))

	w := f.open(t, ana)
	c, err := w.Chat(ctx, "u-beto")
	require.NoError(t, err)
	require.Len(t, c.Messages(), 1)
	assert.Equal(t, 1, c.Unread())

	require.NoError(t, c.MarkAllRead(ctx))
	assert.Zero(t, c.Unread())
	n, _ := f.store.Messages().CountUnread(ctx, "u-ana")
	assert.Equal(t, 1, n)

	sent, err := c.Send(ctx, "  nos vemos  ")
	require.NoError(t, err)
	assert.Equal(t, "nos vemos", sent.Content)
	rows := c.Messages()
	require.Len(t, rows, 2)
	assert.True(t, rows[1].Mine)
}

func TestChat_Validaciones(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	_, err := w.Chat(context.Background(), "u-ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := w.Chat(context.Background(), "u-beto")
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChat_EnvioFallidoNotificaUnaVez(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	c, err := w.Chat(context.Background(), "u-beto")
	require.NoError(t, err)

	f.store.FailNext("messages.Create", errors.New("sin red"))
	_, err = c.Send(context.Background(), "hola")
	require.Error(t, err)
	assert.Empty(t, c.Messages())
	assert.Equal(t, 1, f.rec.Count(livesync.LevelError))
}

func TestClose_CierraVistasYSuscripciones(t *testing.T) {
	f := newFixture(t)
	w := f.open(t, ana)
	ctx := context.Background()
	s, err := w.Schedule(ctx)
	require.NoError(t, err)
	_, err = w.Inbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, f.hub.Len())

	require.NoError(t, s.Close())
	assert.Equal(t, 2, f.hub.Len())

	require.NoError(t, w.Close())
	assert.True(t, w.Closed())
	assert.Zero(t, f.hub.Len())

	_, err = w.TimeOff(ctx)
	assert.ErrorIs(t, err, livesync.ErrScopeClosed)
}
