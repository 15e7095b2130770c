package livesync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

type item struct {
	ID  string `json:"id"`
	Day int    `json:"day"`
}

func (i item) RecordID() string { return i.ID }

func decodeItem(raw json.RawMessage) (item, error) {
	var it item
	err := json.Unmarshal(raw, &it)
	return it, err
}

func moveTo(day int) func(item) (item, bool, error) {
	return func(cur item) (item, bool, error) {
		if day < 0 || day > 6 {
			return cur, true, domain.ErrInvalidDay
		}
		cur.Day = day
		return cur, true, nil
	}
}

func TestMutator_MoverTurnoFallaYRevierte(t *testing.T) {
	state := NewLocalState([]item{{ID: "s1", Day: 2}})
	scope := NewScope()
	defer scope.Close()
	rec := &Recorder{}
	remote := []item{{ID: "s1", Day: 2}}
	m := NewMutator(state, func(context.Context) ([]item, error) { return remote, nil }, rec, scope, logger.Nop())

	var seenDuringWrite item
	err := m.Apply(context.Background(), Mutation[item]{
		Action: "mover turno",
		ID:     "s1",
		Apply:  moveTo(5),
		Write: func(context.Context) error {
			seenDuringWrite, _ = state.Get("s1")
			assert.Equal(t, PendingWrite, state.Status("s1"))
			return errors.New("timeout")
		},
	})

	require.Error(t, err)
	assert.Equal(t, 5, seenDuringWrite.Day)
	got, ok := state.Get("s1")
	require.True(t, ok)
	assert.Equal(t, 2, got.Day)
	assert.Equal(t, Clean, state.Status("s1"))
	assert.Equal(t, 1, rec.Count(LevelError))
}

func TestMutator_FallaEscrituraYRecarga(t *testing.T) {
	state := NewLocalState([]item{{ID: "s0", Day: 1}, {ID: "s1", Day: 2}})
	scope := NewScope()
	defer scope.Close()
	rec := &Recorder{}
	fetches := 0
	m := NewMutator(state, func(context.Context) ([]item, error) {
		fetches++
		return nil, errors.New("sin conexión")
	}, rec, scope, logger.Nop())

	err := m.Apply(context.Background(), Mutation[item]{
		Action: "mover turno", ID: "s1", Apply: moveTo(5),
		Write: func(context.Context) error { return errors.New("timeout") },
	})

	require.Error(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, []item{{ID: "s0", Day: 1}, {ID: "s1", Day: 2}}, state.Snapshot())
	assert.Equal(t, Clean, state.Status("s1"))
	assert.Equal(t, 1, rec.Count(LevelError))
}

func TestMutator_EliminarFallaYRestaura(t *testing.T) {
	state := NewLocalState([]item{{ID: "s0"}, {ID: "s1", Day: 3}, {ID: "s2"}})
	scope := NewScope()
	defer scope.Close()
	m := NewMutator(state, func(context.Context) ([]item, error) {
		return nil, errors.New("sin conexión")
	}, &Recorder{}, scope, logger.Nop())

	err := m.Apply(context.Background(), Mutation[item]{
		Action: "eliminar turno", ID: "s1",
		Apply: func(cur item) (item, bool, error) { return cur, false, nil },
		Write: func(context.Context) error {
			assert.Equal(t, 2, state.Len())
			return errors.New("timeout")
		},
	})

	require.Error(t, err)
	assert.Equal(t, []item{{ID: "s0"}, {ID: "s1", Day: 3}, {ID: "s2"}}, state.Snapshot())
}

func TestMutator_MoverTurnoExitoso(t *testing.T) {
	state := NewLocalState([]item{{ID: "s1", Day: 2}})
	scope := NewScope()
	defer scope.Close()
	rec := &Recorder{}
	fetched := false
	m := NewMutator(state, func(context.Context) ([]item, error) { fetched = true; return nil, nil }, rec, scope, logger.Nop())

	err := m.Apply(context.Background(), Mutation[item]{
		Action: "mover turno", ID: "s1", Apply: moveTo(5),
		Write: func(context.Context) error { return nil },
	})

	require.NoError(t, err)
	got, _ := state.Get("s1")
	assert.Equal(t, 5, got.Day)
	assert.Equal(t, Clean, state.Status("s1"))
	assert.False(t, fetched)
	assert.Empty(t, rec.Notices())
}

func TestMutator_ValidacionNoEscribe(t *testing.T) {
	state := NewLocalState([]item{{ID: "s1", Day: 2}})
	scope := NewScope()
	defer scope.Close()
	rec := &Recorder{}
	wrote := false
	m := NewMutator(state, func(context.Context) ([]item, error) { return nil, nil }, rec, scope, logger.Nop())

	err := m.Apply(context.Background(), Mutation[item]{
		Action: "mover turno", ID: "s1", Apply: moveTo(9),
		Write: func(context.Context) error { wrote = true; return nil },
	})

	require.ErrorIs(t, err, domain.ErrInvalidDay)
	assert.False(t, wrote)
	got, _ := state.Get("s1")
	assert.Equal(t, 2, got.Day)
	assert.Equal(t, 1, rec.Count(LevelError))
}

func TestMutator_RegistroAusente(t *testing.T) {
	state := NewLocalState[item](nil)
	scope := NewScope()
	defer scope.Close()
	m := NewMutator(state, func(context.Context) ([]item, error) { return nil, nil }, &Recorder{}, scope, logger.Nop())

	err := m.Apply(context.Background(), Mutation[item]{ID: "x", Apply: moveTo(1), Write: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutator_EliminarOptimista(t *testing.T) {
	state := NewLocalState([]item{{ID: "s1"}, {ID: "s2"}})
	scope := NewScope()
	defer scope.Close()
	m := NewMutator(state, func(context.Context) ([]item, error) { return nil, nil }, &Recorder{}, scope, logger.Nop())

	err := m.Apply(context.Background(), Mutation[item]{
		Action: "eliminar turno", ID: "s1",
		Apply: func(cur item) (item, bool, error) { return cur, false, nil },
		Write: func(context.Context) error { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, 1, state.Len())
	_, ok := state.Get("s1")
	assert.False(t, ok)
}

func TestMutator_RespuestaTardiaTrasCerrarScope(t *testing.T) {
	state := NewLocalState([]item{{ID: "s1", Day: 2}})
	scope := NewScope()
	rec := &Recorder{}
	fetched := false
	m := NewMutator(state, func(context.Context) ([]item, error) { fetched = true; return nil, nil }, rec, scope, logger.Nop())

	err := m.Apply(context.Background(), Mutation[item]{
		Action: "mover turno", ID: "s1", Apply: moveTo(4),
		Write: func(context.Context) error {
			_ = scope.Close()
			return errors.New("tarde")
		},
	})
	require.Error(t, err)
	assert.False(t, fetched)
	assert.Empty(t, rec.Notices())
	got, _ := state.Get("s1")
	assert.Equal(t, 4, got.Day)
}

type closer struct {
	name  string
	order *[]string
}

func (c closer) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestScope_CierraEnOrdenInverso(t *testing.T) {
	var order []string
	s := NewScope()
	require.NoError(t, s.Track(closer{"a", &order}))
	require.NoError(t, s.Track(closer{"b", &order}))
	child, err := s.Child()
	require.NoError(t, err)
	require.NoError(t, child.Track(closer{"c", &order}))

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.True(t, child.Closed())
	assert.Error(t, s.Context().Err())
	assert.NoError(t, s.Close())
}

func TestScope_TrackTrasCerrar(t *testing.T) {
	var order []string
	s := NewScope()
	require.NoError(t, s.Close())
	err := s.Track(closer{"tarde", &order})
	assert.ErrorIs(t, err, ErrScopeClosed)
	assert.Equal(t, []string{"tarde"}, order)
}

func TestScope_HijoSeRetiraDelPadre(t *testing.T) {
	s := NewScope()
	defer s.Close()
	child, err := s.Child()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	require.NoError(t, child.Close())
	assert.Equal(t, 0, s.Len())
}

func TestLocalState_ReplaceLimpiaEstados(t *testing.T) {
	st := NewLocalState([]item{{ID: "a"}})
	calls := 0
	st.OnChange(func() { calls++ })
	_, err := st.applyOptimistic("a", moveTo(3))
	require.NoError(t, err)
	assert.Equal(t, PendingWrite, st.Status("a"))

	st.Replace([]item{{ID: "a", Day: 1}, {ID: "b"}})
	assert.Equal(t, Clean, st.Status("a"))
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 2, calls)
	assert.False(t, st.Patch(item{ID: "zz"}))
}

type fakeSub struct {
	ch     chan repository.ChangeEvent
	err    error
	once   sync.Once
	closed chan struct{}
}

func newFakeSub() *fakeSub {
	return &fakeSub{ch: make(chan repository.ChangeEvent, 8), closed: make(chan struct{})}
}

func (s *fakeSub) Events() <-chan repository.ChangeEvent { return s.ch }
func (s *fakeSub) Err() error                            { return s.err }
func (s *fakeSub) Close() error {
	s.once.Do(func() { close(s.ch); close(s.closed) })
	return nil
}

// drop simula que el feed descarta la suscripción.
func (s *fakeSub) drop(err error) {
	s.err = err
	s.Close()
}

type fakeFeed struct {
	mu   sync.Mutex
	subs []*fakeSub
}

func (f *fakeFeed) Subscribe(_ context.Context, _ repository.Topic) (repository.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := newFakeSub()
	f.subs = append(f.subs, s)
	return s, nil
}

func (f *fakeFeed) last() *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[len(f.subs)-1]
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func event(typ repository.ChangeType, rec, old string) repository.ChangeEvent {
	ev := repository.ChangeEvent{Table: "shifts", Type: typ}
	if rec != "" {
		ev.Record = json.RawMessage(rec)
	}
	if old != "" {
		ev.OldRecord = json.RawMessage(old)
	}
	return ev
}

func TestApplyChange(t *testing.T) {
	st := NewLocalState([]item{{ID: "a", Day: 1}})

	require.NoError(t, ApplyChange(st, event(repository.ChangeInsert, `{"id":"b","day":3}`, ""), decodeItem))
	require.NoError(t, ApplyChange(st, event(repository.ChangeUpdate, `{"id":"a","day":6}`, ""), decodeItem))
	require.NoError(t, ApplyChange(st, event(repository.ChangeUpdate, `{"id":"fantasma","day":6}`, ""), decodeItem))
	require.NoError(t, ApplyChange(st, event(repository.ChangeDelete, "", `{"id":"b"}`), decodeItem))

	assert.Equal(t, []item{{ID: "a", Day: 6}}, st.Snapshot())
	assert.Error(t, ApplyChange(st, event("TRUNCATE", "", ""), decodeItem))
}

func TestSubscribe_AplicaEventosYCierraConScope(t *testing.T) {
	feed := &fakeFeed{}
	st := NewLocalState[item](nil)
	scope := NewScope()

	err := Subscribe(context.Background(), SubscribeOptions[item]{
		Feed: feed, Topic: repository.Topic{Table: "shifts"}, State: st, Decode: decodeItem,
		Fetch: func(context.Context) ([]item, error) { return nil, nil },
		Scope: scope, Log: logger.Nop(),
	})
	require.NoError(t, err)

	sub := feed.last()
	sub.ch <- event(repository.ChangeInsert, `{"id":"x","day":1}`, "")
	require.Eventually(t, func() bool { return st.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, scope.Close())
	select {
	case <-sub.closed:
	case <-time.After(time.Second):
		t.Fatal("la suscripción sigue abierta tras cerrar el scope")
	}
}

func TestSubscribe_ResincronizaAlDescartar(t *testing.T) {
	feed := &fakeFeed{}
	st := NewLocalState([]item{{ID: "viejo"}})
	scope := NewScope()
	defer scope.Close()

	err := Subscribe(context.Background(), SubscribeOptions[item]{
		Feed: feed, Topic: repository.Topic{Table: "shifts"}, State: st, Decode: decodeItem,
		Fetch: func(context.Context) ([]item, error) { return []item{{ID: "fresco", Day: 4}}, nil },
		Scope: scope, Log: logger.Nop(),
	})
	require.NoError(t, err)

	feed.last().drop(errors.New("suscriptor lento"))
	require.Eventually(t, func() bool {
		_, ok := st.Get("fresco")
		return ok && feed.count() == 2
	}, time.Second, 5*time.Millisecond)

	feed.last().ch <- event(repository.ChangeUpdate, `{"id":"fresco","day":0}`, "")
	require.Eventually(t, func() bool {
		it, _ := st.Get("fresco")
		return it.Day == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribe_RecargaFallidaSigueAplicandoEventos(t *testing.T) {
	feed := &fakeFeed{}
	st := NewLocalState([]item{{ID: "a", Day: 1}})
	scope := NewScope()
	defer scope.Close()
	rec := &Recorder{}
	var fetches atomic.Int32

	err := Subscribe(context.Background(), SubscribeOptions[item]{
		Feed: feed, Topic: repository.Topic{Table: "shifts"}, State: st, Decode: decodeItem,
		Fetch: func(context.Context) ([]item, error) {
			fetches.Add(1)
			return nil, errors.New("sin conexión")
		},
		Scope: scope, Log: logger.Nop(), Notify: rec, RetryBackoff: time.Hour,
	})
	require.NoError(t, err)

	feed.last().drop(errors.New("suscriptor lento"))
	require.Eventually(t, func() bool { return fetches.Load() == 1 && feed.count() == 2 }, time.Second, 5*time.Millisecond)

	feed.last().ch <- event(repository.ChangeUpdate, `{"id":"a","day":6}`, "")
	require.Eventually(t, func() bool {
		it, _ := st.Get("a")
		return it.Day == 6
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, rec.Count(LevelError))
	assert.Equal(t, 1, scope.Len())
}

func TestSubscribe_ReintentaRecargaConBackoff(t *testing.T) {
	feed := &fakeFeed{}
	st := NewLocalState([]item{{ID: "viejo"}})
	scope := NewScope()
	defer scope.Close()
	rec := &Recorder{}
	var fetches atomic.Int32

	err := Subscribe(context.Background(), SubscribeOptions[item]{
		Feed: feed, Topic: repository.Topic{Table: "shifts"}, State: st, Decode: decodeItem,
		Fetch: func(context.Context) ([]item, error) {
			if fetches.Add(1) < 3 {
				return nil, errors.New("sin conexión")
			}
			return []item{{ID: "fresco", Day: 2}}, nil
		},
		Scope: scope, Log: logger.Nop(), Notify: rec, RetryBackoff: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		feed.last().drop(errors.New("suscriptor lento"))
		require.Eventually(t, func() bool { return feed.count() == i+2 }, time.Second, 5*time.Millisecond)
		if i == 0 {
			require.Eventually(t, func() bool {
				_, ok := st.Get("fresco")
				return ok
			}, time.Second, 5*time.Millisecond)
		}
	}

	require.Eventually(t, func() bool { return fetches.Load() == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rec.Count(LevelError))
	assert.Equal(t, 1, scope.Len())
}
