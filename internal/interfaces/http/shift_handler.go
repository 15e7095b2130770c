package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/usecase"
)

// ShiftHandler calendario de turnos.
type ShiftHandler struct {
	uc *usecase.ShiftUseCase
}

// NewShiftHandler construye el handler.
func NewShiftHandler(uc *usecase.ShiftUseCase) *ShiftHandler {
	return &ShiftHandler{uc: uc}
}

// List godoc
// @Summary      Turnos
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        employee_id  query  string  false  "filtrar por empleado"
// @Success      200  {array}  dto.ShiftResponse
// @Router       /api/shifts [get]
func (h *ShiftHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), c.Query("employee_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Board godoc
// @Summary      Tablero semanal (filas con nombre y hora de 12h)
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  view.ShiftRow
// @Router       /api/shifts/board [get]
func (h *ShiftHandler) Board(c *fiber.Ctx) error {
	out, err := h.uc.Board(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Alta de turno (admin/manager)
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateShiftRequest  true  "Turno"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/shifts [post]
func (h *ShiftHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MoveDay godoc
// @Summary      Mover turno a otro día
// @Description  Un empleado solo puede mover sus propios turnos.
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID"
// @Param        body  body  dto.MoveShiftRequest  true  "día 0-6 (0 = domingo)"
// @Success      200   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/day [patch]
func (h *ShiftHandler) MoveDay(c *fiber.Ctx) error {
	var in dto.MoveShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Day == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "day es requerido"})
	}
	out, err := h.uc.MoveDay(c.Context(), actor(c), c.Params("id"), *in.Day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar turno (admin/manager)
// @Tags         shifts
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id} [delete]
func (h *ShiftHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportPDF godoc
// @Summary      Horario semanal en PDF
// @Tags         shifts
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/shifts/export.pdf [get]
func (h *ShiftHandler) ExportPDF(c *fiber.Ctx) error {
	pdf, err := h.uc.ExportPDF(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="horario.pdf"`)
	return c.Send(pdf)
}
