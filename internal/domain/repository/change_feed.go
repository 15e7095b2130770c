package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Tablas publicadas en el canal de cambios.
const (
	TableEmployees       = "employees"
	TableShifts          = "shifts"
	TableTimeOffRequests = "time_off_requests"
	TableTimeOffBalances = "time_off_balances"
	TableMessages        = "messages"
)

// ChangeType tipo de evento del canal push.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent cambio de una fila. Record es la fila nueva (vacío en DELETE);
// OldRecord la anterior (vacío en INSERT). Ambas en JSON con columnas snake_case.
type ChangeEvent struct {
	Table      string          `json:"table"`
	Type       ChangeType      `json:"type"`
	Record     json.RawMessage `json:"record,omitempty"`
	OldRecord  json.RawMessage `json:"old_record,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Row devuelve la fila relevante para filtrar: la nueva o, en DELETE, la anterior.
func (e ChangeEvent) Row() json.RawMessage {
	if e.Type == ChangeDelete || len(e.Record) == 0 || string(e.Record) == "null" {
		return e.OldRecord
	}
	return e.Record
}

// Match igualdad columna = valor.
type Match struct {
	Column string
	Value  string
}

// Filter disyunción de igualdades. Sin Any el filtro acepta todo.
type Filter struct {
	Any []Match
}

// Eq atajo para un filtro de una sola igualdad.
func Eq(column, value string) Filter {
	return Filter{Any: []Match{{Column: column, Value: value}}}
}

// Or une dos filtros.
func (f Filter) Or(other Filter) Filter {
	return Filter{Any: append(append([]Match{}, f.Any...), other.Any...)}
}

// Matches evalúa el filtro sobre una fila ya decodificada.
func (f Filter) Matches(row map[string]any) bool {
	if len(f.Any) == 0 {
		return true
	}
	for _, m := range f.Any {
		v, ok := row[m.Column]
		if !ok || v == nil {
			continue
		}
		if fmt.Sprint(v) == m.Value {
			return true
		}
	}
	return false
}

// Topic par (tabla, filtro) de una suscripción.
type Topic struct {
	Table  string
	Filter Filter
}

// Subscription canal push abierto. Events se cierra al llamar Close o si el feed
// descarta la suscripción; en ese caso Err indica el motivo.
type Subscription interface {
	Events() <-chan ChangeEvent
	Err() error
	Close() error
}

// ChangeFeed abre canales push filtrados por tabla y predicado.
type ChangeFeed interface {
	Subscribe(ctx context.Context, topic Topic) (Subscription, error)
}
