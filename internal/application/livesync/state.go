// Package livesync implementa la sincronización de registros en vivo:
// estado local por vista, mutaciones optimistas con reconciliación por recarga
// y suscripciones al canal de cambios ligadas a la vida de un Scope.
package livesync

import (
	"sync"
)

// Record fila identificable por id.
type Record interface {
	RecordID() string
}

// SyncState estado de sincronización de un registro local.
//
//	clean ──apply──▶ pending-write ──ok──▶ clean
//	                       │
//	                     fallo
//	                       ▼
//	                  reconciling ──recarga──▶ clean
type SyncState string

const (
	Clean        SyncState = "clean"
	PendingWrite SyncState = "pending-write"
	Reconciling  SyncState = "reconciling"
)

// LocalState lista ordenada de registros propiedad de una sola vista.
// Es segura para uso concurrente: el canal push y las mutaciones corren en goroutines distintas.
type LocalState[T Record] struct {
	mu       sync.RWMutex
	items    []T
	status   map[string]SyncState
	watchers []func()
}

// NewLocalState crea el estado con una copia de items.
func NewLocalState[T Record](items []T) *LocalState[T] {
	s := &LocalState[T]{status: make(map[string]SyncState)}
	s.items = append(s.items, items...)
	return s
}

// OnChange registra fn para cada modificación. fn corre fuera del lock.
func (s *LocalState[T]) OnChange(fn func()) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// Snapshot copia de los registros en su orden actual.
func (s *LocalState[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len cantidad de registros.
func (s *LocalState[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get busca por id.
func (s *LocalState[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Status estado de sincronización; Clean para ids desconocidos.
func (s *LocalState[T]) Status(id string) SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.status[id]; ok {
		return st
	}
	return Clean
}

// Replace sustituye todo por el estado autoritativo; todos quedan clean.
func (s *LocalState[T]) Replace(items []T) {
	s.mu.Lock()
	s.items = append(make([]T, 0, len(items)), items...)
	s.status = make(map[string]SyncState)
	s.mu.Unlock()
	s.changed()
}

// Merge inserta o, si ya existe el id, reemplaza en su posición.
func (s *LocalState[T]) Merge(item T) {
	s.mu.Lock()
	if i := s.indexOf(item.RecordID()); i >= 0 {
		s.items[i] = item
	} else {
		s.items = append(s.items, item)
	}
	s.mu.Unlock()
	s.changed()
}

// Patch reemplaza por id. Si no existe no hace nada y devuelve false.
func (s *LocalState[T]) Patch(item T) bool {
	s.mu.Lock()
	i := s.indexOf(item.RecordID())
	if i >= 0 {
		s.items[i] = item
	}
	s.mu.Unlock()
	if i < 0 {
		return false
	}
	s.changed()
	return true
}

// Remove elimina por id.
func (s *LocalState[T]) Remove(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		delete(s.status, id)
	}
	s.mu.Unlock()
	if i < 0 {
		return false
	}
	s.changed()
	return true
}

// applyOptimistic aplica fn al registro id y lo marca pending-write.
// keep=false elimina el registro. Devuelve errNotLocal si el id no está.
// undo repone el valor previo en su posición.
func (s *LocalState[T]) applyOptimistic(id string, fn func(T) (T, bool, error)) (undo func(), err error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, errNotLocal
	}
	prev := s.items[i]
	next, keep, err := fn(prev)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if keep {
		s.items[i] = next
		s.status[id] = PendingWrite
	} else {
		s.items = append(s.items[:i], s.items[i+1:]...)
		delete(s.status, id)
	}
	s.mu.Unlock()
	s.changed()
	return func() { s.restore(i, prev) }, nil
}

// restore deja prev en la posición i (o en la actual si otro cambio lo movió) y limpia su estado.
func (s *LocalState[T]) restore(i int, prev T) {
	id := prev.RecordID()
	s.mu.Lock()
	if j := s.indexOf(id); j >= 0 {
		s.items[j] = prev
	} else {
		if i > len(s.items) {
			i = len(s.items)
		}
		s.items = append(s.items, prev)
		copy(s.items[i+1:], s.items[i:])
		s.items[i] = prev
	}
	delete(s.status, id)
	s.mu.Unlock()
	s.changed()
}

// setStatus cambia el estado solo si el registro sigue presente.
func (s *LocalState[T]) setStatus(id string, st SyncState) {
	s.mu.Lock()
	if s.indexOf(id) >= 0 {
		if st == Clean {
			delete(s.status, id)
		} else {
			s.status[id] = st
		}
	}
	s.mu.Unlock()
}

func (s *LocalState[T]) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].RecordID() == id {
			return i
		}
	}
	return -1
}

func (s *LocalState[T]) changed() {
	s.mu.RLock()
	watchers := append([]func(){}, s.watchers...)
	s.mu.RUnlock()
	for _, fn := range watchers {
		fn()
	}
}
