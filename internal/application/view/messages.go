package view

import (
	"sort"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// Conversation resumen por interlocutor.
type Conversation struct {
	OtherID       string         `json:"other_id"`
	OtherName     string         `json:"other_name,omitempty"`
	LatestMessage entity.Message `json:"latest_message"`
	UnreadCount   int            `json:"unread_count"`
}

// AggregateConversations agrupa los mensajes del viewer por el otro participante.
//
// Por grupo conserva el mensaje más reciente; con marcas de tiempo iguales gana el que
// aparece después en el orden de entrada. UnreadCount cuenta mensajes recibidos por el
// viewer sin read_at. Se excluyen los mensajes a uno mismo y los que no involucran al viewer.
// El resultado va del más reciente al más antiguo.
func AggregateConversations(messages []entity.Message, viewerID string) []Conversation {
	byOther := make(map[string]*Conversation)
	order := make([]string, 0)
	for _, m := range messages {
		if m.IsSelf() || !m.Involves(viewerID) {
			continue
		}
		other := m.OtherParty(viewerID)
		c, ok := byOther[other]
		if !ok {
			c = &Conversation{OtherID: other, LatestMessage: m}
			byOther[other] = c
			order = append(order, other)
		} else if !m.CreatedAt.Before(c.LatestMessage.CreatedAt) {
			c.LatestMessage = m
		}
		if m.UnreadFor(viewerID) {
			c.UnreadCount++
		}
	}
	out := make([]Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byOther[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LatestMessage.CreatedAt.After(out[j].LatestMessage.CreatedAt)
	})
	return out
}

// NameConversations rellena OtherName con resolve.
func NameConversations(list []Conversation, resolve func(userID string) string) []Conversation {
	for i := range list {
		list[i].OtherName = resolve(list[i].OtherID)
	}
	return list
}

// CountUnread predicado-conteo sobre la lista completa.
func CountUnread(messages []entity.Message, viewerID string) int {
	n := 0
	for _, m := range messages {
		if m.UnreadFor(viewerID) {
			n++
		}
	}
	return n
}

// MessageRow mensaje listo para el chat.
type MessageRow struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Mine     bool   `json:"mine"`
	Read     bool   `json:"read"`
	Relative string `json:"relative"`
}

// MessageRows proyecta el hilo desde el punto de vista de viewerID.
func MessageRows(messages []entity.Message, viewerID string, now time.Time) []MessageRow {
	rows := make([]MessageRow, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, MessageRow{
			ID:       m.ID,
			Content:  m.Content,
			Mine:     m.SenderID == viewerID,
			Read:     m.ReadAt != nil,
			Relative: RelativeTime(m.CreatedAt, now),
		})
	}
	return rows
}
