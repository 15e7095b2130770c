package workspace

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Turnos-api/internal/application/livesync"
	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/rowjson"
)

// ── Horario ───────────────────────────────────────────────────────────────────

// Schedule tablero semanal de turnos.
type Schedule struct {
	*live[entity.Shift]
	w *Workspace
}

// Schedule abre el tablero con todos los turnos.
func (w *Workspace) Schedule(ctx context.Context) (*Schedule, error) {
	fetch := func(ctx context.Context) ([]entity.Shift, error) {
		return w.deps.Shifts.List(ctx, repository.ShiftFilter{})
	}
	l, err := openLive(ctx, w, "schedule", repository.Topic{Table: repository.TableShifts}, fetch, rowjson.DecodeShift)
	if err != nil {
		return nil, err
	}
	return &Schedule{live: l, w: w}, nil
}

// Rows filas proyectadas, ordenadas por día y hora.
func (s *Schedule) Rows() []view.ShiftRow {
	return view.ShiftRows(s.state.Snapshot(), s.w.Directory())
}

// Week filas agrupadas de domingo a sábado.
func (s *Schedule) Week() [7][]view.ShiftRow { return view.GroupByDay(s.Rows()) }

// MoveShift mueve un turno de día. Un empleado solo mueve los suyos.
func (s *Schedule) MoveShift(ctx context.Context, id string, day int) error {
	session := s.w.session
	return s.mut.Apply(ctx, livesync.Mutation[entity.Shift]{
		Action: "mover turno",
		ID:     id,
		Apply: func(cur entity.Shift) (entity.Shift, bool, error) {
			if !session.IsManager() && cur.EmployeeID != session.EmployeeID {
				return cur, true, domain.ErrForbidden
			}
			if err := cur.MoveTo(day); err != nil {
				return cur, true, err
			}
			return cur, true, nil
		},
		Write: func(ctx context.Context) error { return s.w.deps.Shifts.UpdateDay(ctx, id, day) },
	})
}

// DeleteShift borra un turno (admin o manager).
func (s *Schedule) DeleteShift(ctx context.Context, id string) error {
	session := s.w.session
	return s.mut.Apply(ctx, livesync.Mutation[entity.Shift]{
		Action: "eliminar turno",
		ID:     id,
		Apply: func(cur entity.Shift) (entity.Shift, bool, error) {
			if !session.IsManager() {
				return cur, true, domain.ErrForbidden
			}
			return cur, false, nil
		},
		Write: func(ctx context.Context) error { return s.w.deps.Shifts.Delete(ctx, id) },
	})
}

// ── Ausencias ─────────────────────────────────────────────────────────────────

// TimeOff solicitudes de ausencia visibles para la sesión.
type TimeOff struct {
	*live[entity.TimeOffRequest]
	w *Workspace
}

// TimeOff abre la vista. Un empleado solo ve las suyas.
func (w *Workspace) TimeOff(ctx context.Context) (*TimeOff, error) {
	topic := repository.Topic{Table: repository.TableTimeOffRequests}
	var f repository.TimeOffFilter
	if !w.session.IsManager() {
		f.EmployeeID = w.session.EmployeeID
		topic.Filter = repository.Eq("employee_id", w.session.EmployeeID)
	}
	fetch := func(ctx context.Context) ([]entity.TimeOffRequest, error) { return w.deps.TimeOff.List(ctx, f) }
	l, err := openLive(ctx, w, "time_off", topic, fetch, rowjson.DecodeTimeOff)
	if err != nil {
		return nil, err
	}
	return &TimeOff{live: l, w: w}, nil
}

// Rows filas de la pestaña (all, pending, approved, denied).
func (t *TimeOff) Rows(tab string) []view.TimeOffRow {
	return view.TimeOffRows(view.FilterTimeOffByTab(t.state.Snapshot(), tab), t.w.Directory())
}

// Pending solicitudes pendientes.
func (t *TimeOff) Pending() int { return view.CountPending(t.state.Snapshot()) }

// Approve aprueba una solicitud pendiente.
func (t *TimeOff) Approve(ctx context.Context, id string) error {
	return t.decide(ctx, id, entity.TimeOffApproved, "aprobar solicitud")
}

// Deny rechaza una solicitud pendiente.
func (t *TimeOff) Deny(ctx context.Context, id string) error {
	return t.decide(ctx, id, entity.TimeOffDenied, "rechazar solicitud")
}

func (t *TimeOff) decide(ctx context.Context, id string, status entity.TimeOffStatus, action string) error {
	session := t.w.session
	at := t.w.now()
	return t.mut.Apply(ctx, livesync.Mutation[entity.TimeOffRequest]{
		Action: action,
		ID:     id,
		Apply: func(cur entity.TimeOffRequest) (entity.TimeOffRequest, bool, error) {
			if !session.IsManager() {
				return cur, true, domain.ErrForbidden
			}
			if err := cur.Transition(status, session.UserID, at); err != nil {
				return cur, true, err
			}
			return cur, true, nil
		},
		Write: func(ctx context.Context) error {
			return t.w.deps.TimeOff.Decide(ctx, id, status, session.UserID, at)
		},
	})
}

// ── Saldos ────────────────────────────────────────────────────────────────────

// Balances saldos de ausencia; solo lectura, actualizados en vivo.
type Balances struct {
	*live[entity.TimeOffBalance]
}

// Balances abre la vista. Un empleado solo ve su saldo.
func (w *Workspace) Balances(ctx context.Context) (*Balances, error) {
	topic := repository.Topic{Table: repository.TableTimeOffBalances}
	manager := w.session.IsManager()
	if !manager {
		topic.Filter = repository.Eq("employee_id", w.session.EmployeeID)
	}
	fetch := func(ctx context.Context) ([]entity.TimeOffBalance, error) {
		if manager {
			return w.deps.Balances.List(ctx)
		}
		b, err := w.deps.Balances.GetByEmployee(ctx, w.session.EmployeeID)
		if err != nil || b == nil {
			return nil, err
		}
		return []entity.TimeOffBalance{*b}, nil
	}
	l, err := openLive(ctx, w, "balances", topic, fetch, rowjson.DecodeBalance)
	if err != nil {
		return nil, err
	}
	return &Balances{live: l}, nil
}

// Get saldo de un empleado.
func (b *Balances) Get(employeeID string) (entity.TimeOffBalance, bool) { return b.state.Get(employeeID) }

// List todos los saldos visibles.
func (b *Balances) List() []entity.TimeOffBalance { return b.state.Snapshot() }

// ── Mensajes ──────────────────────────────────────────────────────────────────

func (w *Workspace) messageTopic() repository.Topic {
	me := w.session.UserID
	return repository.Topic{
		Table:  repository.TableMessages,
		Filter: repository.Eq("recipient_id", me).Or(repository.Eq("sender_id", me)),
	}
}

// Inbox conversaciones del usuario.
type Inbox struct {
	*live[entity.Message]
	w *Workspace
}

// Inbox abre la bandeja con todos los mensajes donde participa la sesión.
func (w *Workspace) Inbox(ctx context.Context) (*Inbox, error) {
	fetch := func(ctx context.Context) ([]entity.Message, error) {
		return w.deps.Messages.ListForUser(ctx, w.session.UserID)
	}
	l, err := openLive(ctx, w, "inbox", w.messageTopic(), fetch, rowjson.DecodeMessage)
	if err != nil {
		return nil, err
	}
	return &Inbox{live: l, w: w}, nil
}

// Conversations una por interlocutor, la más reciente primero.
func (i *Inbox) Conversations() []view.Conversation {
	list := view.AggregateConversations(i.state.Snapshot(), i.w.session.UserID)
	return view.NameConversations(list, i.w.userName)
}

// UnreadCount mensajes recibidos sin leer.
func (i *Inbox) UnreadCount() int { return view.CountUnread(i.state.Snapshot(), i.w.session.UserID) }

// Chat conversación con otro usuario.
type Chat struct {
	*live[entity.Message]
	w     *Workspace
	other string
}

// Chat abre la conversación con other.
func (w *Workspace) Chat(ctx context.Context, other string) (*Chat, error) {
	if other == "" || other == w.session.UserID {
		return nil, domain.ErrInvalidInput
	}
	fetch := func(ctx context.Context) ([]entity.Message, error) {
		return w.deps.Messages.ListBetween(ctx, w.session.UserID, other)
	}
	l, err := openLive(ctx, w, "chat", w.messageTopic(), fetch, rowjson.DecodeMessage)
	if err != nil {
		return nil, err
	}
	return &Chat{live: l, w: w, other: other}, nil
}

// Other interlocutor.
func (c *Chat) Other() string { return c.other }

// thread el feed entrega todos los mensajes de la sesión; aquí se quedan los de este par.
func (c *Chat) thread() []entity.Message {
	me := c.w.session.UserID
	all := c.state.Snapshot()
	out := make([]entity.Message, 0, len(all))
	for _, m := range all {
		if (m.SenderID == me && m.RecipientID == c.other) || (m.SenderID == c.other && m.RecipientID == me) {
			out = append(out, m)
		}
	}
	return out
}

// Messages filas del hilo en orden cronológico.
func (c *Chat) Messages() []view.MessageRow {
	return view.MessageRows(c.thread(), c.w.session.UserID, c.w.now())
}

// Unread mensajes recibidos sin leer en este hilo.
func (c *Chat) Unread() int { return view.CountUnread(c.thread(), c.w.session.UserID) }

// Send envía un mensaje. No es optimista: el mensaje aparece al confirmarse la escritura.
func (c *Chat) Send(ctx context.Context, content string) (entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return entity.Message{}, domain.ErrInvalidInput
	}
	m := entity.Message{
		ID:          uuid.New().String(),
		SenderID:    c.w.session.UserID,
		RecipientID: c.other,
		Content:     content,
		CreatedAt:   c.w.now(),
	}
	if err := c.w.deps.Messages.Create(ctx, &m); err != nil {
		if !c.scope.Closed() {
			c.w.deps.Log.Error().Err(err).Str("recipient_id", c.other).Msg("envío de mensaje fallido")
			c.w.deps.Notifier.Notify(livesync.Notice{
				Level: livesync.LevelError, Title: "No se pudo enviar el mensaje", Message: "inténtelo de nuevo", At: c.w.now(),
			})
		}
		return entity.Message{}, err
	}
	if !c.scope.Closed() {
		c.state.Merge(m)
	}
	return m, nil
}

// MarkRead marca como leído un mensaje recibido.
func (c *Chat) MarkRead(ctx context.Context, id string) error {
	me := c.w.session.UserID
	at := c.w.now()
	return c.mut.Apply(ctx, livesync.Mutation[entity.Message]{
		Action: "marcar como leído",
		ID:     id,
		Apply: func(cur entity.Message) (entity.Message, bool, error) {
			if cur.RecipientID != me {
				return cur, true, domain.ErrForbidden
			}
			if cur.ReadAt == nil {
				read := at
				cur.ReadAt = &read
			}
			return cur, true, nil
		},
		Write: func(ctx context.Context) error { return c.w.deps.Messages.MarkRead(ctx, id, me, at) },
	})
}

// MarkAllRead marca todo lo recibido en el hilo; se detiene en el primer fallo.
func (c *Chat) MarkAllRead(ctx context.Context) error {
	for _, m := range c.thread() {
		if m.UnreadFor(c.w.session.UserID) {
			if err := c.MarkRead(ctx, m.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

