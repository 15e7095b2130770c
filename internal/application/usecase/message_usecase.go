package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/view"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
)

// MessageUseCase mensajería directa entre usuarios.
type MessageUseCase struct {
	messages  repository.MessageRepository
	profiles  repository.ProfileRepository
	employees repository.EmployeeRepository
}

// NewMessageUseCase construye el caso de uso.
func NewMessageUseCase(messages repository.MessageRepository, profiles repository.ProfileRepository, employees repository.EmployeeRepository) *MessageUseCase {
	return &MessageUseCase{messages: messages, profiles: profiles, employees: employees}
}

// Conversations bandeja agrupada por interlocutor, con nombres resueltos.
func (uc *MessageUseCase) Conversations(ctx context.Context, actor Actor) ([]view.Conversation, error) {
	list, err := uc.messages.ListForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	names, err := UserNames(ctx, uc.profiles, uc.employees)
	if err != nil {
		return nil, err
	}
	return view.NameConversations(view.AggregateConversations(list, actor.UserID), names), nil
}

// Thread hilo con otro usuario en orden cronológico.
func (uc *MessageUseCase) Thread(ctx context.Context, actor Actor, otherID string) ([]dto.MessageResponse, error) {
	list, err := uc.messages.ListBetween(ctx, actor.UserID, otherID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MessageResponse, 0, len(list))
	for i := range list {
		out = append(out, *toMessageResponse(&list[i]))
	}
	return out, nil
}

// Send envía un mensaje. No se permiten mensajes a uno mismo.
func (uc *MessageUseCase) Send(ctx context.Context, actor Actor, in dto.SendMessageRequest) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || in.RecipientID == "" || in.RecipientID == actor.UserID {
		return nil, domain.ErrInvalidInput
	}
	m := &entity.Message{
		ID:          uuid.New().String(),
		SenderID:    actor.UserID,
		RecipientID: in.RecipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return toMessageResponse(m), nil
}

// MarkRead marca como leído un mensaje recibido.
func (uc *MessageUseCase) MarkRead(ctx context.Context, actor Actor, id string) error {
	return uc.messages.MarkRead(ctx, id, actor.UserID, time.Now().UTC())
}

// UnreadCount mensajes recibidos sin leer.
func (uc *MessageUseCase) UnreadCount(ctx context.Context, actor Actor) (int, error) {
	return uc.messages.CountUnread(ctx, actor.UserID)
}

// UserNames resolvedor user id → nombre del empleado vinculado ("Unknown" si no tiene ficha).
func UserNames(ctx context.Context, profiles repository.ProfileRepository, employees repository.EmployeeRepository) (func(string) string, error) {
	links, err := profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := employees.List(ctx)
	if err != nil {
		return nil, err
	}
	dir := view.NewDirectory(staff)
	byUser := make(map[string]string, len(links))
	for _, p := range links {
		if p.EmployeeID != nil {
			byUser[p.UserID] = *p.EmployeeID
		}
	}
	return func(userID string) string {
		return dir.Name(byUser[userID])
	}, nil
}
