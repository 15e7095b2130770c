package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	appanalytics "github.com/jhoicas/Turnos-api/internal/application/analytics"
	"github.com/jhoicas/Turnos-api/internal/application/auth"
	"github.com/jhoicas/Turnos-api/internal/application/usecase"
	"github.com/jhoicas/Turnos-api/internal/domain/entity"
	"github.com/jhoicas/Turnos-api/internal/domain/repository"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ProfileUC    *usecase.ProfileUseCase
	EmployeeUC   *usecase.EmployeeUseCase
	ShiftUC      *usecase.ShiftUseCase
	TimeOffUC    *usecase.TimeOffUseCase
	MessageUC    *usecase.MessageUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	AdminUC      *usecase.AdminUseCase
	Feed         repository.ChangeFeed
	JWTSecret    string
	AllowOrigins string
	Log          *logger.Logger
}

// Router registra las rutas de la API y la función de administración.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	// Función de administración: CORS y auth propios
	adminFn := NewAdminFunctionHandler(deps.AdminUC, deps.JWTSecret, log)
	app.Options("/functions/admin-dashboard", adminFn.Preflight)
	app.Post("/functions/admin-dashboard", adminFn.Handle)

	origins := deps.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Authorization, Content-Type",
	}))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.ProfileUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)

	protected.Get("/me", authHandler.Me)

	employees := protected.Group("/employees")
	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	employees.Get("/", employeeHandler.List)
	employees.Get("/:id", employeeHandler.GetByID)
	employees.Post("/", managers, employeeHandler.Create)
	employees.Put("/:id", managers, employeeHandler.Update)

	shifts := protected.Group("/shifts")
	shiftHandler := NewShiftHandler(deps.ShiftUC)
	shifts.Get("/", shiftHandler.List)
	shifts.Get("/board", shiftHandler.Board)
	shifts.Get("/export.pdf", shiftHandler.ExportPDF)
	shifts.Post("/", managers, shiftHandler.Create)
	shifts.Patch("/:id/day", shiftHandler.MoveDay)
	shifts.Delete("/:id", managers, shiftHandler.Delete)

	timeOff := protected.Group("/time-off")
	timeOffHandler := NewTimeOffHandler(deps.TimeOffUC)
	timeOff.Get("/", timeOffHandler.List)
	timeOff.Post("/", timeOffHandler.Create)
	timeOff.Get("/balances", timeOffHandler.Balances)
	timeOff.Get("/balances/:employee_id", timeOffHandler.Balance)
	timeOff.Post("/:id/approve", managers, timeOffHandler.Approve)
	timeOff.Post("/:id/deny", managers, timeOffHandler.Deny)

	messages := protected.Group("/messages")
	messageHandler := NewMessageHandler(deps.MessageUC)
	messages.Get("/conversations", messageHandler.Conversations)
	messages.Get("/unread-count", messageHandler.UnreadCount)
	messages.Get("/with/:user_id", messageHandler.Thread)
	messages.Post("/", messageHandler.Send)
	messages.Post("/:id/read", messageHandler.MarkRead)

	analyticsHandler := NewAnalyticsHandler(deps.DashboardUC)
	protected.Get("/analytics/summary", analyticsHandler.GetSummary)

	if deps.Feed != nil {
		realtimeHandler := NewRealtimeHandler(deps.Feed, log)
		protected.Get("/realtime/:table", realtimeHandler.Stream)
	}
}
