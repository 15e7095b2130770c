package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

const messageSelect = `SELECT id, sender_id, recipient_id, content, created_at, read_at FROM messages`

// MessageRepo implementación de MessageRepository sobre PostgreSQL.
type MessageRepo struct {
	q Querier
}

// NewMessageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMessageRepository(q Querier) *MessageRepo {
	return &MessageRepo{q: q}
}

// Create persiste un mensaje.
func (r *MessageRepo) Create(ctx context.Context, m *entity.Message) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.SenderID, m.RecipientID, m.Content, m.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// GetByID mensaje por id; nil si no existe.
func (r *MessageRepo) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	m, err := scanMessage(r.q.QueryRow(ctx, messageSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// ListForUser mensajes enviados o recibidos por el usuario.
func (r *MessageRepo) ListForUser(ctx context.Context, userID string) ([]entity.Message, error) {
	return r.list(ctx, messageSelect+` WHERE sender_id = $1 OR recipient_id = $1 ORDER BY created_at`, userID)
}

// ListBetween hilo entre dos usuarios.
func (r *MessageRepo) ListBetween(ctx context.Context, userID, otherID string) ([]entity.Message, error) {
	return r.list(ctx, messageSelect+`
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at`, userID, otherID)
}

// MarkRead fija read_at una sola vez y solo para el destinatario.
func (r *MessageRepo) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE messages SET read_at = $3
		WHERE id = $1 AND recipient_id = $2 AND read_at IS NULL`, id, userID, at)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark message read: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case m == nil:
		return domain.ErrNotFound
	case m.RecipientID != userID:
		return domain.ErrForbidden
	}
	return nil // ya estaba leído
}

// CountUnread mensajes recibidos sin leer.
func (r *MessageRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read_at IS NULL AND sender_id <> recipient_id`, userID,
	).Scan(&n)
	if err != nil {
		if isInvalidText(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (r *MessageRepo) list(ctx context.Context, query string, args ...any) ([]entity.Message, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	var list []entity.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

func scanMessage(row pgxScanner) (*entity.Message, error) {
	var m entity.Message
	if err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt, &m.ReadAt); err != nil {
		return nil, err
	}
	return &m, nil
}
