package livesync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

// Decoder convierte una fila JSON del canal de cambios en un registro.
type Decoder[T Record] func(raw json.RawMessage) (T, error)

const (
	defaultRetryBackoff = time.Second
	maxRetryBackoff     = 30 * time.Second
)

// SubscribeOptions dependencias de una suscripción.
type SubscribeOptions[T Record] struct {
	Feed   repository.ChangeFeed
	Topic  repository.Topic
	State  *LocalState[T]
	Decode Decoder[T]
	Fetch  Fetcher[T] // recarga tras un descarte del feed
	Scope  *Scope
	Log    *logger.Logger
	Notify Notifier // opcional; un aviso por racha de resincronizaciones fallidas

	RetryBackoff time.Duration // primer reintento; se duplica hasta maxRetryBackoff
}

// Subscribe abre el canal push, lo registra en el Scope y aplica cada evento al estado local
// en orden de entrega. La suscripción vive hasta que se cierra el Scope.
func Subscribe[T Record](ctx context.Context, opts SubscribeOptions[T]) error {
	sub, err := opts.Feed.Subscribe(ctx, opts.Topic)
	if err != nil {
		return fmt.Errorf("suscribir %s: %w", opts.Topic.Table, err)
	}
	if err := opts.Scope.Track(sub); err != nil {
		return err
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	c := &consumer[T]{opts: opts, sub: sub, backoff: opts.RetryBackoff}
	go c.run()
	return nil
}

// consumer lee una suscripción y, si el feed la descarta, se vuelve a suscribir y recarga
// con reintentos hasta lograrlo o hasta que el Scope se cierre.
type consumer[T Record] struct {
	opts     SubscribeOptions[T]
	sub      repository.Subscription // nil mientras no hay suscripción activa
	retry    <-chan time.Time
	backoff  time.Duration
	notified bool
}

func (c *consumer[T]) run() {
	for {
		var events <-chan repository.ChangeEvent
		if c.sub != nil {
			events = c.sub.Events()
		}
		select {
		case <-c.opts.Scope.Done():
			return
		case <-c.retry:
			c.resync()
		case ev, ok := <-events:
			if c.opts.Scope.Closed() {
				return
			}
			if !ok {
				if c.sub.Err() == nil {
					return
				}
				c.opts.Log.Warn().Err(c.sub.Err()).Str("table", c.opts.Topic.Table).Msg("suscripción descartada, resincronizando")
				c.opts.Scope.untrack(c.sub)
				c.sub = nil
				c.resync()
				continue
			}
			if err := ApplyChange(c.opts.State, ev, c.opts.Decode); err != nil {
				c.opts.Log.Warn().Err(err).Str("table", ev.Table).Str("type", string(ev.Type)).Msg("evento descartado")
			}
		}
	}
}

// resync vuelve a suscribirse (si hace falta) y después recarga, para no perder cambios entre
// ambos pasos. Si algo falla programa otro intento.
func (c *consumer[T]) resync() {
	c.retry = nil
	err := c.refresh()
	if c.opts.Scope.Closed() {
		return
	}
	if err == nil {
		c.backoff = c.opts.RetryBackoff
		c.notified = false
		return
	}
	c.opts.Log.Error().Err(err).Str("table", c.opts.Topic.Table).Dur("retry_in", c.backoff).Msg("resincronización fallida")
	if !c.notified && c.opts.Notify != nil {
		c.opts.Notify.Notify(Notice{
			Level:   LevelError,
			Title:   "Sin actualizaciones de " + c.opts.Topic.Table,
			Message: "reintentando la conexión",
			At:      time.Now(),
		})
		c.notified = true
	}
	c.retry = time.After(c.backoff)
	c.backoff = min(2*c.backoff, maxRetryBackoff)
}

func (c *consumer[T]) refresh() error {
	ctx := c.opts.Scope.Context()
	if c.sub == nil {
		sub, err := c.opts.Feed.Subscribe(ctx, c.opts.Topic)
		if err != nil {
			return err
		}
		if err := c.opts.Scope.Track(sub); err != nil {
			return err
		}
		c.sub = sub
	}
	rows, err := c.opts.Fetch(ctx)
	if err != nil {
		return err
	}
	if !c.opts.Scope.Closed() {
		c.opts.State.Replace(rows)
	}
	return nil
}

// ApplyChange traduce un evento: INSERT → merge, UPDATE → patch por id, DELETE → remove por id.
func ApplyChange[T Record](state *LocalState[T], ev repository.ChangeEvent, decode Decoder[T]) error {
	switch ev.Type {
	case repository.ChangeInsert:
		item, err := decode(ev.Record)
		if err != nil {
			return err
		}
		state.Merge(item)
	case repository.ChangeUpdate:
		item, err := decode(ev.Record)
		if err != nil {
			return err
		}
		state.Patch(item)
	case repository.ChangeDelete:
		item, err := decode(ev.OldRecord)
		if err != nil {
			return err
		}
		state.Remove(item.RecordID())
	default:
		return fmt.Errorf("tipo de evento desconocido %q", ev.Type)
	}
	return nil
}
