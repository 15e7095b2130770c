package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// MessageRepository define el puerto de persistencia para Message (DIP).
type MessageRepository interface {
	Create(ctx context.Context, m *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)
	// ListForUser mensajes donde el usuario es emisor o destinatario, más recientes al final.
	ListForUser(ctx context.Context, userID string) ([]entity.Message, error)
	// ListBetween conversación entre dos usuarios, orden cronológico.
	ListBetween(ctx context.Context, userID, otherID string) ([]entity.Message, error)
	// MarkRead fija read_at solo si el destinatario es userID y aún no estaba leído.
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	CountUnread(ctx context.Context, userID string) (int, error)
}
