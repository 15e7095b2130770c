package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

// Publisher destino de los eventos leídos (realtime.Hub).
type Publisher interface {
	Publish(ev repository.ChangeEvent)
}

// notifyPayload forma del JSON que emite notify_record_change().
type notifyPayload struct {
	Table     string                `json:"table"`
	Type      repository.ChangeType `json:"type"`
	Truncated bool                  `json:"truncated"`
	Record    json.RawMessage       `json:"record"`
	OldRecord json.RawMessage       `json:"old_record"`
}

// keyColumn clave primaria por tabla publicada.
var keyColumn = map[string]string{
	repository.TableEmployees:       "id",
	repository.TableShifts:          "id",
	repository.TableTimeOffRequests: "id",
	repository.TableTimeOffBalances: "employee_id",
	repository.TableMessages:        "id",
}

// Listener mantiene una conexión dedicada con LISTEN y publica cada notificación.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	out     Publisher
	log     *logger.Logger
	backoff time.Duration

	ready     chan struct{}
	readyOnce sync.Once
}

// NewListener construye el listener del canal dado.
func NewListener(pool *pgxpool.Pool, channel string, out Publisher, log *logger.Logger) *Listener {
	return &Listener{pool: pool, channel: channel, out: out, log: log, backoff: time.Second, ready: make(chan struct{})}
}

// Ready se cierra cuando el primer LISTEN queda activo.
func (l *Listener) Ready() <-chan struct{} { return l.ready }

// WaitReady bloquea hasta que el LISTEN esté activo o ctx termine.
func (l *Listener) WaitReady(ctx context.Context) error {
	select {
	case <-l.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("listener %s no quedó activo: %w", l.channel, ctx.Err())
	}
}

// Run escucha hasta que ctx se cancela. Si la conexión cae, espera y vuelve a escuchar.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Error().Err(err).Str("channel", l.channel).Dur("retry_in", l.backoff).Msg("listener caído")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.log.Info().Str("channel", l.channel).Msg("escuchando cambios")
	l.readyOnce.Do(func() { close(l.ready) })

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			// La conexión puede quedar a mitad de protocolo: no se devuelve al pool.
			_ = conn.Conn().Close(context.Background())
			return err
		}
		ev, err := l.decode(ctx, n)
		if err != nil {
			l.log.Warn().Err(err).Str("payload", truncate(n.Payload, 200)).Msg("notificación descartada")
			continue
		}
		l.out.Publish(ev)
	}
}

func (l *Listener) decode(ctx context.Context, n *pgconn.Notification) (repository.ChangeEvent, error) {
	ev, truncated, err := DecodeNotification([]byte(n.Payload))
	if err != nil {
		return ev, err
	}
	if truncated && ev.Type != repository.ChangeDelete {
		full, err := l.reload(ctx, ev.Table, ev.Record)
		if err != nil {
			return ev, err
		}
		ev.Record = full
	}
	return ev, nil
}

// reload relee la fila completa cuando el payload llegó sin columnas de texto libre.
func (l *Listener) reload(ctx context.Context, table string, partial json.RawMessage) (json.RawMessage, error) {
	key := keyColumn[table]
	var row map[string]any
	if err := json.Unmarshal(partial, &row); err != nil {
		return nil, err
	}
	id, _ := row[key].(string)
	if id == "" {
		return nil, errors.New("fila truncada sin clave")
	}
	query := fmt.Sprintf(`SELECT to_jsonb(t) FROM %s t WHERE %s = $1`,
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{key}.Sanitize())
	var full []byte
	if err := l.pool.QueryRow(ctx, query, id).Scan(&full); err != nil {
		return nil, fmt.Errorf("releer %s %s: %w", table, id, err)
	}
	return json.RawMessage(full), nil
}

// DecodeNotification convierte el payload de notify_record_change() en un ChangeEvent.
// truncated indica que Record llegó sin columnas de texto libre.
func DecodeNotification(payload []byte) (ev repository.ChangeEvent, truncated bool, err error) {
	var p notifyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ev, false, fmt.Errorf("payload inválido: %w", err)
	}
	if _, ok := keyColumn[p.Table]; !ok {
		return ev, false, fmt.Errorf("tabla no publicada %q", p.Table)
	}
	switch p.Type {
	case repository.ChangeInsert, repository.ChangeUpdate, repository.ChangeDelete:
	default:
		return ev, false, fmt.Errorf("tipo de evento desconocido %q", p.Type)
	}
	return repository.ChangeEvent{
		Table:      p.Table,
		Type:       p.Type,
		Record:     nullToEmpty(p.Record),
		OldRecord:  nullToEmpty(p.OldRecord),
		ReceivedAt: time.Now(),
	}, p.Truncated, nil
}

func nullToEmpty(raw json.RawMessage) json.RawMessage {
	if string(raw) == "null" {
		return nil
	}
	return raw
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
