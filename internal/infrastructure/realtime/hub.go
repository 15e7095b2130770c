// Package realtime reparte los cambios de filas entre suscripciones en memoria.
// La fuente de eventos (LISTEN/NOTIFY de Postgres) llama a Publish; los consumidores
// (vistas del workspace, flujo SSE) se suscriben con un Topic.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

var (
	// ErrSlowSubscriber el buffer de la suscripción se llenó y se descartó.
	ErrSlowSubscriber = errors.New("realtime: suscriptor lento, suscripción descartada")
	// ErrHubClosed el hub se cerró.
	ErrHubClosed = errors.New("realtime: hub cerrado")
)

var _ repository.ChangeFeed = (*Hub)(nil)

// Hub implementa repository.ChangeFeed sobre canales con buffer.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*subscription
	buffer int
	closed bool
	log    *logger.Logger

	published atomic.Int64
	dropped   atomic.Int64
}

// NewHub crea el hub; buffer es la capacidad de cada suscripción.
func NewHub(buffer int, log *logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{subs: make(map[string]*subscription), buffer: buffer, log: log}
}

// Subscribe registra una suscripción. Se cierra sola al cancelarse ctx.
func (h *Hub) Subscribe(ctx context.Context, topic repository.Topic) (repository.Subscription, error) {
	s := &subscription{
		id:    uuid.NewString(),
		topic: topic,
		ch:    make(chan repository.ChangeEvent, h.buffer),
		hub:   h,
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.subs[s.id] = s
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

// Publish entrega ev a cada suscripción cuyo Topic coincide. Nunca bloquea:
// si el buffer de una suscripción está lleno, esa suscripción se descarta.
func (h *Hub) Publish(ev repository.ChangeEvent) {
	h.published.Add(1)
	var row map[string]any
	if raw := ev.Row(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &row); err != nil {
			h.log.Warn().Err(err).Str("table", ev.Table).Msg("fila de evento inválida")
			return
		}
	}

	var lagging []*subscription
	h.mu.RLock()
	for _, s := range h.subs {
		if s.topic.Table != ev.Table || !s.topic.Filter.Matches(row) {
			continue
		}
		if !s.offer(ev) {
			lagging = append(lagging, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range lagging {
		h.dropped.Add(1)
		h.log.Warn().Str("subscription", s.id).Str("table", s.topic.Table).Msg("suscriptor lento descartado")
		s.closeWith(ErrSlowSubscriber)
	}
}

// Len suscripciones activas.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats contadores de eventos publicados y suscripciones descartadas.
func (h *Hub) Stats() (published, dropped int64) {
	return h.published.Load(), h.dropped.Load()
}

// Close cierra todas las suscripciones con ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.closeWith(ErrHubClosed)
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

type subscription struct {
	id    string
	topic repository.Topic
	ch    chan repository.ChangeEvent
	hub   *Hub

	mu     sync.Mutex
	closed bool
	err    error
	done   chan struct{}
}

func (s *subscription) Events() <-chan repository.ChangeEvent { return s.ch }

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Close() error {
	s.closeWith(nil)
	return nil
}

// offer envía sin bloquear; false si el buffer está lleno.
func (s *subscription) offer(ev repository.ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *subscription) closeWith(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
	close(s.done)
	s.mu.Unlock()
	s.hub.remove(s.id)
}
