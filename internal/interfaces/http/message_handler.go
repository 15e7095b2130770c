package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/usecase"
)

// MessageHandler mensajería directa.
type MessageHandler struct {
	uc *usecase.MessageUseCase
}

// NewMessageHandler construye el handler.
func NewMessageHandler(uc *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

// Conversations godoc
// @Summary      Bandeja agrupada por interlocutor
// @Tags         messages
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  view.Conversation
// @Router       /api/messages/conversations [get]
func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	out, err := h.uc.Conversations(c.Context(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Thread godoc
// @Summary      Hilo con otro usuario
// @Tags         messages
// @Security     Bearer
// @Produce      json
// @Param        user_id  path  string  true  "interlocutor"
// @Success      200  {array}  dto.MessageResponse
// @Router       /api/messages/with/{user_id} [get]
func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	out, err := h.uc.Thread(c.Context(), actor(c), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Send godoc
// @Summary      Enviar mensaje
// @Tags         messages
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendMessageRequest  true  "Mensaje"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/messages [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var in dto.SendMessageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Send(c.Context(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MarkRead godoc
// @Summary      Marcar como leído (solo el destinatario)
// @Tags         messages
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.uc.MarkRead(c.Context(), actor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnreadCount godoc
// @Summary      Mensajes sin leer
// @Tags         messages
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CountResponse
// @Router       /api/messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.uc.UnreadCount(c.Context(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CountResponse{Count: n})
}
