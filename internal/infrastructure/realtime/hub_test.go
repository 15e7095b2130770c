package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

func shiftEvent(id, employeeID string) repository.ChangeEvent {
	return repository.ChangeEvent{
		Table:  repository.TableShifts,
		Type:   repository.ChangeInsert,
		Record: []byte(`{"id":"` + id + `","employee_id":"` + employeeID + `"}`),
	}
}

func recv(t *testing.T, sub repository.Subscription) repository.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "canal cerrado")
		return ev
	case <-time.After(time.Second):
		t.Fatal("sin evento")
	}
	return repository.ChangeEvent{}
}

func TestHub_FiltraPorTablaYColumna(t *testing.T) {
	h := NewHub(8, nil)
	ctx := context.Background()

	mine, err := h.Subscribe(ctx, repository.Topic{Table: repository.TableShifts, Filter: repository.Eq("employee_id", "e1")})
	require.NoError(t, err)
	all, err := h.Subscribe(ctx, repository.Topic{Table: repository.TableShifts})
	require.NoError(t, err)
	msgs, err := h.Subscribe(ctx, repository.Topic{Table: repository.TableMessages})
	require.NoError(t, err)

	h.Publish(shiftEvent("s1", "e2"))
	h.Publish(shiftEvent("s2", "e1"))

	assert.Contains(t, string(recv(t, mine).Record), `"s2"`)
	assert.Contains(t, string(recv(t, all).Record), `"s1"`)
	assert.Contains(t, string(recv(t, all).Record), `"s2"`)
	assert.Empty(t, msgs.Events())
}

func TestHub_DeleteFiltraPorFilaAnterior(t *testing.T) {
	h := NewHub(8, nil)
	sub, err := h.Subscribe(context.Background(), repository.Topic{Table: repository.TableShifts, Filter: repository.Eq("employee_id", "e1")})
	require.NoError(t, err)

	h.Publish(repository.ChangeEvent{
		Table: repository.TableShifts, Type: repository.ChangeDelete,
		OldRecord: []byte(`{"id":"s1","employee_id":"e1"}`),
	})
	assert.Equal(t, repository.ChangeDelete, recv(t, sub).Type)
}

func TestHub_DescartaSuscriptorLento(t *testing.T) {
	h := NewHub(1, nil)
	slow, err := h.Subscribe(context.Background(), repository.Topic{Table: repository.TableShifts})
	require.NoError(t, err)

	h.Publish(shiftEvent("s1", "e1"))
	h.Publish(shiftEvent("s2", "e1"))

	recv(t, slow)
	_, ok := <-slow.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, slow.Err(), ErrSlowSubscriber)
	assert.Equal(t, 0, h.Len())
	_, dropped := h.Stats()
	assert.Equal(t, int64(1), dropped)
}

func TestHub_CancelarContextoCierra(t *testing.T) {
	h := NewHub(4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.Subscribe(ctx, repository.Topic{Table: repository.TableShifts})
	require.NoError(t, err)

	cancel()
	require.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.NoError(t, sub.Err())
}

func TestHub_Close(t *testing.T) {
	h := NewHub(4, nil)
	sub, err := h.Subscribe(context.Background(), repository.Topic{Table: repository.TableShifts})
	require.NoError(t, err)

	h.Close()
	assert.ErrorIs(t, sub.Err(), ErrHubClosed)
	_, err = h.Subscribe(context.Background(), repository.Topic{Table: repository.TableShifts})
	assert.ErrorIs(t, err, ErrHubClosed)
}
