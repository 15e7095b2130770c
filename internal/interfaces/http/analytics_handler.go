package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Turnos-api/internal/application/analytics"
	"github.com/jhoicas/Turnos-api/internal/application/dto"
)

// AnalyticsHandler pantalla de analítica.
type AnalyticsHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.DashboardUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen de analítica
// @Description  Plantilla por departamento, horas programadas por día (0 = domingo), ausencias por estado
// @Description  y las series estáticas de personal previsto y costo laboral.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AnalyticsSummaryResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
	return c.JSON(summary)
}
