package livesync

import (
	"context"
	"errors"
	"sync"
)

// ErrScopeClosed el scope ya fue cerrado; no admite nuevos recursos.
var ErrScopeClosed = errors.New("livesync: scope cerrado")

// Handle recurso con cierre explícito (suscripciones, vistas, scopes hijos).
type Handle interface {
	Close() error
}

// Scope agrupa los handles abiertos durante la vida de una vista o sesión.
// Close los cierra todos en orden inverso. Context se cancela al cerrar, lo que permite
// descartar respuestas que lleguen después.
type Scope struct {
	mu      sync.Mutex
	handles []Handle
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
	onClose func()
}

// NewScope crea un scope raíz.
func NewScope() *Scope {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scope{ctx: ctx, cancel: cancel}
}

// Child crea un scope que se cierra junto con s. Cerrar el hijo lo retira de s.
func (s *Scope) Child() (*Scope, error) {
	c := NewScope()
	if err := s.Track(c); err != nil {
		return nil, err
	}
	c.onClose = func() { s.untrack(c) }
	return c, nil
}

// Track registra h. Si el scope ya está cerrado, cierra h y devuelve ErrScopeClosed.
func (s *Scope) Track(h Handle) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = h.Close()
		return ErrScopeClosed
	}
	s.handles = append(s.handles, h)
	s.mu.Unlock()
	return nil
}

func (s *Scope) untrack(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.handles {
		if s.handles[i] == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return
		}
	}
}

// Closed informa si Close ya fue llamado.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Context se cancela cuando el scope se cierra.
func (s *Scope) Context() context.Context { return s.ctx }

// Done atajo de Context().Done().
func (s *Scope) Done() <-chan struct{} { return s.ctx.Done() }

// Len handles vivos.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Close cierra todos los handles (último abierto, primero cerrado). Es idempotente.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	handles := s.handles
	s.handles = nil
	onClose := s.onClose
	s.mu.Unlock()

	s.cancel()
	var errs []error
	for i := len(handles) - 1; i >= 0; i-- {
		if err := handles[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if onClose != nil {
		onClose()
	}
	return errors.Join(errs...)
}
