//go:build integration

package postgres

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/realtime"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/rowjson"
	"github.com/jhoicas/Turnos-api/pkg/config"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("turnos_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("connection string: %v", err)
	}
	testPool, err = NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	if err != nil {
		log.Fatalf("pool: %v", err)
	}
	if _, err := Migrate(ctx, testPool, "record_changes", logger.Nop()); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	code := m.Run()
	testPool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func seedUser(t *testing.T, ctx context.Context) *entity.User {
	t.Helper()
	now := time.Now().UTC()
	u := &entity.User{ID: uuid.NewString(), Email: uuid.NewString() + "@turnos.test", PasswordHash: "x",
		Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewUserRepository(testPool).Create(ctx, u))
	return u
}

func seedEmployee(t *testing.T, ctx context.Context) *entity.Employee {
	t.Helper()
	now := time.Now().UTC()
	e := &entity.Employee{ID: uuid.NewString(), FirstName: "Ana", LastName: "Ruiz",
		Email: uuid.NewString() + "@turnos.test", Department: "Cocina", Position: "Chef",
		Status: entity.EmployeeActive, HireDate: now.Truncate(24 * time.Hour), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewEmployeeRepository(testPool).Create(ctx, e))
	return e
}

func TestMigrate_Idempotente(t *testing.T) {
	applied, err := Migrate(context.Background(), testPool, "record_changes", logger.Nop())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestShiftRepo_MoverYBorrar(t *testing.T) {
	ctx := context.Background()
	emp := seedEmployee(t, ctx)
	repo := NewShiftRepository(testPool)
	end := "17:00"
	s := &entity.Shift{ID: uuid.NewString(), EmployeeID: emp.ID, Type: entity.ShiftRegular, Day: 2,
		StartTime: "09:00", EndTime: &end, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, s))

	require.NoError(t, repo.UpdateDay(ctx, s.ID, 5))
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Day)
	assert.Equal(t, "09:00:00", got.StartTime)

	assert.ErrorIs(t, repo.UpdateDay(ctx, s.ID, 7), domain.ErrInvalidDay)
	require.NoError(t, repo.Delete(ctx, s.ID))
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateDay(ctx, uuid.NewString(), 1), domain.ErrNotFound)
}

func TestTimeOffRepo_TransicionUnica(t *testing.T) {
	ctx := context.Background()
	emp := seedEmployee(t, ctx)
	user := seedUser(t, ctx)
	repo := NewTimeOffRepository(testPool)
	start := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	req := &entity.TimeOffRequest{ID: uuid.NewString(), EmployeeID: emp.ID, UserID: user.ID,
		Type: entity.TimeOffVacation, StartDate: start, EndDate: start.AddDate(0, 0, 3),
		Status: entity.TimeOffPending, SubmittedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, req))

	require.NoError(t, repo.Decide(ctx, req.ID, entity.TimeOffApproved, user.ID, time.Now()))
	assert.ErrorIs(t, repo.Decide(ctx, req.ID, entity.TimeOffDenied, user.ID, time.Now()), domain.ErrInvalidTransition)
	assert.ErrorIs(t, repo.Decide(ctx, uuid.NewString(), entity.TimeOffDenied, user.ID, time.Now()), domain.ErrNotFound)

	_, err := testPool.Exec(ctx, `UPDATE time_off_requests SET status = 'pending' WHERE id = $1`, req.ID)
	assert.Error(t, err)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TimeOffApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
}

func TestRoleRepo_ReemplazoTransaccional(t *testing.T) {
	ctx := context.Background()
	user := seedUser(t, ctx)
	runner := NewTxRunner(testPool)

	require.NoError(t, runner.RunRoles(ctx, func(roles repository.RoleRepository) error {
		return roles.ReplaceForUser(ctx, user.ID, []string{entity.RoleEmployee, entity.RoleManager})
	}))
	roles, err := NewRoleRepository(testPool).ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"employee", "manager"}, roles)

	err = runner.RunRoles(ctx, func(roles repository.RoleRepository) error {
		if err := roles.ReplaceForUser(ctx, user.ID, []string{entity.RoleAdmin}); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	roles, err = NewRoleRepository(testPool).ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"employee", "manager"}, roles)
}

func TestListener_PublicaCambios(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub(16, logger.Nop())
	listener := NewListener(testPool, "record_changes", hub, logger.Nop())
	go func() { _ = listener.Run(ctx) }()
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, listener.WaitReady(waitCtx))

	emp := seedEmployee(t, ctx)
	sub, err := hub.Subscribe(ctx, repository.Topic{Table: repository.TableShifts, Filter: repository.Eq("employee_id", emp.ID)})
	require.NoError(t, err)

	s := &entity.Shift{ID: uuid.NewString(), EmployeeID: emp.ID, Type: entity.ShiftTraining, Day: 1,
		StartTime: "08:30", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, NewShiftRepository(testPool).Create(ctx, s))

	select {
	case ev := <-sub.Events():
		assert.Equal(t, repository.ChangeInsert, ev.Type)
		got, err := rowjson.DecodeShift(ev.Record)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, "08:30:00", got.StartTime)
	case <-time.After(5 * time.Second):
		t.Fatal("no llegó la notificación")
	}
}
