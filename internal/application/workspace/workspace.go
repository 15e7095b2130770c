// Package workspace contexto de aplicación por sesión: directorio de personal en vivo y
// vistas (horario, ausencias, saldos, bandeja, chat) con estado local, mutaciones optimistas
// y suscripción al canal de cambios. Cerrar el workspace (cerrar sesión) cierra todas las vistas.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Turnos-api/internal/application/livesync"
	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/rowjson"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

// Deps puertos que necesita el workspace.
type Deps struct {
	Employees repository.EmployeeRepository
	Shifts    repository.ShiftRepository
	TimeOff   repository.TimeOffRepository
	Balances  repository.BalanceRepository
	Messages  repository.MessageRepository
	Profiles  repository.ProfileRepository
	Feed      repository.ChangeFeed
	Notifier  livesync.Notifier
	Log       *logger.Logger
}

// Session usuario autenticado que abre el workspace.
type Session struct {
	UserID     string
	EmployeeID string
	Roles      []string
}

// IsManager admin o manager.
func (s Session) IsManager() bool {
	return entity.HasRole(s.Roles, entity.RoleAdmin, entity.RoleManager)
}

// Workspace contexto de una sesión abierta.
type Workspace struct {
	deps      Deps
	session   Session
	scope     *livesync.Scope
	directory *livesync.LocalState[entity.Employee]
	mu        sync.Mutex
	userToEmp map[string]string
	now       func() time.Time
}

// Open carga el directorio de personal, se suscribe a sus cambios y devuelve el workspace.
func Open(ctx context.Context, deps Deps, session Session) (*Workspace, error) {
	if session.UserID == "" {
		return nil, errors.New("workspace: sesión sin usuario")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Notifier == nil {
		deps.Notifier = livesync.NotifierFunc(func(livesync.Notice) {})
	}

	w := &Workspace{
		deps:      deps,
		session:   session,
		scope:     livesync.NewScope(),
		directory: livesync.NewLocalState[entity.Employee](nil),
		userToEmp: map[string]string{},
		now:       time.Now,
	}

	profiles, err := deps.Profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("workspace: perfiles: %w", err)
	}
	for _, p := range profiles {
		if p.EmployeeID != nil {
			w.userToEmp[p.UserID] = *p.EmployeeID
		}
	}

	fetch := func(ctx context.Context) ([]entity.Employee, error) { return deps.Employees.List(ctx) }
	err = livesync.Subscribe(w.scope.Context(), livesync.SubscribeOptions[entity.Employee]{
		Feed:   deps.Feed,
		Topic:  repository.Topic{Table: repository.TableEmployees},
		State:  w.directory,
		Decode: rowjson.DecodeEmployee,
		Fetch:  fetch,
		Scope:  w.scope,
		Log:    deps.Log,
		Notify: deps.Notifier,
	})
	if err != nil {
		_ = w.scope.Close()
		return nil, err
	}
	list, err := fetch(ctx)
	if err != nil {
		_ = w.scope.Close()
		return nil, fmt.Errorf("workspace: directorio: %w", err)
	}
	w.directory.Replace(list)

	deps.Log.Debug().Str("user_id", session.UserID).Int("employees", len(list)).Msg("workspace abierto")
	return w, nil
}

// Session devuelve la sesión del workspace.
func (w *Workspace) Session() Session { return w.session }

// Directory índice id → empleado del directorio en vivo.
func (w *Workspace) Directory() view.Directory { return view.NewDirectory(w.directory.Snapshot()) }

// Employees lista en vivo filtrada por búsqueda y pestaña.
func (w *Workspace) Employees(query, tab string) []entity.Employee {
	return view.SearchEmployees(view.FilterEmployeesByTab(w.directory.Snapshot(), tab), query)
}

// Close cierra el workspace y todas sus vistas.
func (w *Workspace) Close() error { return w.scope.Close() }

// Closed informa si ya se cerró.
func (w *Workspace) Closed() bool { return w.scope.Closed() }

// userName nombre visible de un usuario, vía su ficha de empleado. Un usuario que no estaba
// vinculado al abrir se busca en perfiles; los que siguen sin ficha no se guardan.
func (w *Workspace) userName(userID string) string {
	w.mu.Lock()
	emp, ok := w.userToEmp[userID]
	w.mu.Unlock()
	if !ok {
		p, err := w.deps.Profiles.GetByUserID(w.scope.Context(), userID)
		if err != nil {
			w.deps.Log.Warn().Err(err).Str("user_id", userID).Msg("perfil no disponible")
			return ""
		}
		if p == nil || p.EmployeeID == nil {
			return ""
		}
		emp = *p.EmployeeID
		w.mu.Lock()
		w.userToEmp[userID] = emp
		w.mu.Unlock()
	}
	return w.Directory().Name(emp)
}

// live estado local, mutador y suscripción de una vista.
type live[T livesync.Record] struct {
	scope *livesync.Scope
	state *livesync.LocalState[T]
	mut   *livesync.Mutator[T]
}

// openLive se suscribe primero y después carga, igual que la resincronización.
func openLive[T livesync.Record](ctx context.Context, w *Workspace, name string, topic repository.Topic,
	fetch livesync.Fetcher[T], decode livesync.Decoder[T]) (*live[T], error) {
	scope, err := w.scope.Child()
	if err != nil {
		return nil, err
	}
	log := w.deps.Log.Component(name)
	l := &live[T]{scope: scope, state: livesync.NewLocalState[T](nil)}
	l.mut = livesync.NewMutator(l.state, fetch, w.deps.Notifier, scope, log)

	err = livesync.Subscribe(scope.Context(), livesync.SubscribeOptions[T]{
		Feed:   w.deps.Feed,
		Topic:  topic,
		State:  l.state,
		Decode: decode,
		Fetch:  fetch,
		Scope:  scope,
		Log:    log,
		Notify: w.deps.Notifier,
	})
	if err != nil {
		_ = scope.Close()
		return nil, err
	}
	rows, err := fetch(ctx)
	if err != nil {
		_ = scope.Close()
		return nil, fmt.Errorf("%s: carga inicial: %w", name, err)
	}
	l.state.Replace(rows)
	return l, nil
}

// OnChange registra fn para cada cambio del estado local.
func (l *live[T]) OnChange(fn func()) { l.state.OnChange(fn) }

// Status estado de sincronización de un registro.
func (l *live[T]) Status(id string) livesync.SyncState { return l.state.Status(id) }

// Close cierra la vista; las respuestas tardías se ignoran.
func (l *live[T]) Close() error { return l.scope.Close() }
