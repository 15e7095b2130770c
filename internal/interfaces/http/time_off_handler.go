package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/usecase"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
)

// TimeOffHandler solicitudes de ausencia y saldos.
type TimeOffHandler struct {
	uc *usecase.TimeOffUseCase
}

// NewTimeOffHandler construye el handler.
func NewTimeOffHandler(uc *usecase.TimeOffUseCase) *TimeOffHandler {
	return &TimeOffHandler{uc: uc}
}

// List godoc
// @Summary      Solicitudes de ausencia
// @Description  Managers ven todas; el resto solo las propias.
// @Tags         time-off
// @Security     Bearer
// @Produce      json
// @Param        tab  query  string  false  "all | pending | approved | denied"
// @Success      200  {array}  view.TimeOffRow
// @Router       /api/time-off [get]
func (h *TimeOffHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), actor(c), c.Query("tab"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Solicitar ausencia
// @Tags         time-off
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTimeOffRequest  true  "Solicitud"
// @Success      201   {object}  dto.TimeOffResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/time-off [post]
func (h *TimeOffHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTimeOffRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Approve godoc
// @Summary      Aprobar solicitud pendiente (admin/manager)
// @Tags         time-off
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TimeOffResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/time-off/{id}/approve [post]
func (h *TimeOffHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, entity.TimeOffApproved)
}

// Deny godoc
// @Summary      Rechazar solicitud pendiente (admin/manager)
// @Tags         time-off
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TimeOffResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/time-off/{id}/deny [post]
func (h *TimeOffHandler) Deny(c *fiber.Ctx) error {
	return h.decide(c, entity.TimeOffDenied)
}

func (h *TimeOffHandler) decide(c *fiber.Ctx, status entity.TimeOffStatus) error {
	out, err := h.uc.Decide(c.Context(), actor(c), c.Params("id"), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Balances godoc
// @Summary      Saldos de ausencia visibles
// @Tags         time-off
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/time-off/balances [get]
func (h *TimeOffHandler) Balances(c *fiber.Ctx) error {
	out, err := h.uc.Balances(c.Context(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Balance godoc
// @Summary      Saldo de un empleado
// @Tags         time-off
// @Security     Bearer
// @Produce      json
// @Param        employee_id  path  string  true  "ID del empleado"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/time-off/balances/{employee_id} [get]
func (h *TimeOffHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.Balance(c.Context(), actor(c), c.Params("employee_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
