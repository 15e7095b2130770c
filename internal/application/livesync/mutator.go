package livesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

var errNotLocal = fmt.Errorf("livesync: registro no presente en el estado local: %w", domain.ErrNotFound)

// Fetcher lee el estado autoritativo completo de una vista.
type Fetcher[T Record] func(ctx context.Context) ([]T, error)

// Mutation intención del usuario sobre un registro.
// Apply calcula el nuevo valor local (keep=false lo elimina); Write hace la escritura remota.
type Mutation[T Record] struct {
	Action string // nombre para logs y avisos, ej. "mover turno"
	ID     string
	Apply  func(current T) (next T, keep bool, err error)
	Write  func(ctx context.Context) error
}

// Mutator aplica mutaciones optimistas sobre un LocalState.
// Un solo intento por acción: si la escritura falla se repone el valor previo, se avisa una vez y se recarga.
type Mutator[T Record] struct {
	state  *LocalState[T]
	fetch  Fetcher[T]
	notify Notifier
	scope  *Scope
	log    *logger.Logger
	now    func() time.Time
}

// NewMutator construye el mutador de una vista.
func NewMutator[T Record](state *LocalState[T], fetch Fetcher[T], notify Notifier, scope *Scope, log *logger.Logger) *Mutator[T] {
	return &Mutator[T]{state: state, fetch: fetch, notify: notify, scope: scope, log: log, now: time.Now}
}

// Apply ejecuta la mutación. El cambio local es síncrono; la escritura remota bloquea
// hasta resolverse. Si el scope se cerró mientras tanto, el resultado no toca el estado.
func (m *Mutator[T]) Apply(ctx context.Context, mut Mutation[T]) error {
	undo, err := m.state.applyOptimistic(mut.ID, mut.Apply)
	if err != nil {
		m.fail(mut, err)
		return fmt.Errorf("%s: %w", mut.Action, err)
	}

	err = mut.Write(ctx)
	if m.scope.Closed() {
		return err
	}
	if err == nil {
		m.state.setStatus(mut.ID, Clean)
		return nil
	}

	undo()
	m.state.setStatus(mut.ID, Reconciling)
	m.fail(mut, err)
	m.reconcile(ctx, mut)
	return fmt.Errorf("%s: %w", mut.Action, err)
}

// reconcile recarga el estado autoritativo. Si la recarga falla queda el valor previo
// a la mutación; el aviso al usuario ya se emitió.
func (m *Mutator[T]) reconcile(ctx context.Context, mut Mutation[T]) {
	rows, err := m.fetch(ctx)
	if m.scope.Closed() {
		return
	}
	if err != nil {
		m.log.Error().Err(err).Str("action", mut.Action).Str("id", mut.ID).Msg("no se pudo recargar el estado tras el fallo")
		m.state.setStatus(mut.ID, Clean)
		return
	}
	m.state.Replace(rows)
}

func (m *Mutator[T]) fail(mut Mutation[T], err error) {
	m.log.Error().Err(err).Str("action", mut.Action).Str("id", mut.ID).Msg("mutación fallida")
	m.notify.Notify(Notice{
		Level:   LevelError,
		Title:   "No se pudo " + mut.Action,
		Message: userMessage(err),
		At:      m.now(),
	})
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "el registro ya no existe"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "la solicitud ya fue resuelta"
	case errors.Is(err, domain.ErrForbidden):
		return "no tiene permisos para esta acción"
	case errors.Is(err, domain.ErrInvalidDay), errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	}
	return "inténtelo de nuevo"
}
