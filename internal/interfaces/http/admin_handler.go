package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Turnos-api/internal/application/dto"
	"github.com/jhoicas/Turnos-api/internal/application/usecase"
	"github.com/jhoicas/Turnos-api/internal/domain"
	"github.com/jhoicas/Turnos-api/pkg/jwt"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

const (
	actionGetSystemStats = "getSystemStats"
	actionAssignRoles    = "assignRoles"
)

// AdminFunctionHandler función /functions/admin-dashboard. Responde siempre {"error": msg} en fallos,
// sin el envoltorio dto.ErrorResponse del resto de la API.
type AdminFunctionHandler struct {
	uc        *usecase.AdminUseCase
	jwtSecret string
	log       *logger.Logger
}

// NewAdminFunctionHandler construye el handler.
func NewAdminFunctionHandler(uc *usecase.AdminUseCase, jwtSecret string, log *logger.Logger) *AdminFunctionHandler {
	return &AdminFunctionHandler{uc: uc, jwtSecret: jwtSecret, log: log.Component("admin-dashboard")}
}

func setAdminCORS(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "authorization, x-client-info, apikey, content-type")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
}

func fnError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// Preflight responde el OPTIONS de CORS con cuerpo vacío.
func (h *AdminFunctionHandler) Preflight(c *fiber.Ctx) error {
	setAdminCORS(c)
	return c.Status(fiber.StatusOK).Send(nil)
}

// Handle godoc
// @Summary      Función de administración
// @Description  Acciones: getSystemStats (sin parámetros) y assignRoles {userId, roles[]}.
// @Description  El rol admin se comprueba contra user_roles, no contra el token.
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdminRequest  true  "action y parámetros"
// @Success      200   {object}  dto.SystemStatsResponse
// @Success      200   {object}  dto.AssignRolesResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /functions/admin-dashboard [post]
func (h *AdminFunctionHandler) Handle(c *fiber.Ctx) error {
	setAdminCORS(c)

	token, _, msg := bearerToken(c)
	if token == "" {
		return fnError(c, fiber.StatusUnauthorized, msg)
	}
	id, err := jwt.Parse(h.jwtSecret, token)
	if err != nil {
		return fnError(c, fiber.StatusUnauthorized, "token inválido o expirado")
	}

	ok, err := h.uc.IsAdmin(c.Context(), id.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", id.UserID).Msg("no se pudo verificar el rol admin")
		return fnError(c, fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		h.log.Warn().Str("user_id", id.UserID).Msg("acceso denegado a la función de administración")
		return fnError(c, fiber.StatusForbidden, "se requiere rol admin")
	}

	var in dto.AdminRequest
	if err := c.BodyParser(&in); err != nil {
		return fnError(c, fiber.StatusBadRequest, "cuerpo JSON inválido")
	}

	switch in.Action {
	case actionGetSystemStats:
		stats, err := h.uc.SystemStats(c.Context())
		if err != nil {
			h.log.Error().Err(err).Msg("getSystemStats")
			return fnError(c, fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)

	case actionAssignRoles:
		if in.UserID == "" || in.Roles == nil {
			return fnError(c, fiber.StatusBadRequest, "userId y roles son requeridos")
		}
		out, err := h.uc.AssignRoles(c.Context(), id.UserID, in.UserID, *in.Roles)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUserNotFound) {
				return fnError(c, fiber.StatusBadRequest, err.Error())
			}
			h.log.Error().Err(err).Str("target", in.UserID).Msg("assignRoles")
			return fnError(c, fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(out)

	case "":
		return fnError(c, fiber.StatusBadRequest, "action es requerido")
	default:
		return fnError(c, fiber.StatusBadRequest, "acción desconocida: "+in.Action)
	}
}
