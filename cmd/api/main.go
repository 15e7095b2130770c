package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/Turnos-api/internal/application/analytics"
	"github.com/jhoicas/Turnos-api/internal/application/auth"
	"github.com/jhoicas/Turnos-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/Turnos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Turnos-api/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/Turnos-api/internal/interfaces/http"
	"github.com/jhoicas/Turnos-api/pkg/config"
	"github.com/jhoicas/Turnos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Sin credencial de servicio la función de administración no puede operar
	if err := cfg.RequireServiceKey(); err != nil {
		log.Fatal().Err(err).Msg("configuración incompleta")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	servicePool, err := postgres.NewPool(ctx, cfg.DB.WithCredentials(cfg.Service.User, cfg.Service.Key))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión privilegiada a PostgreSQL")
	}
	defer servicePool.Close()

	if cfg.App.Env == "development" {
		applied, err := postgres.Migrate(ctx, pool, cfg.Realtime.Channel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		if len(applied) > 0 {
			log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
		}
	}

	// Canal de cambios: LISTEN en una conexión dedicada → hub → suscriptores SSE
	hub := realtime.NewHub(cfg.Realtime.Buffer, log.Component("hub"))
	defer hub.Close()
	listener := postgres.NewListener(pool, cfg.Realtime.Channel, hub, log.Component("listener"))
	go func() {
		if err := listener.Run(ctx); err != nil {
			log.Error().Err(err).Msg("listener finalizado")
		}
	}()

	userRepo := postgres.NewUserRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	shiftRepo := postgres.NewShiftRepository(pool)
	timeOffRepo := postgres.NewTimeOffRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, profileRepo, roleRepo, employeeRepo, txRunner, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	profileUC := usecase.NewProfileUseCase(userRepo, profileRepo, roleRepo, employeeRepo)
	employeeUC := usecase.NewEmployeeUseCase(employeeRepo)
	shiftUC := usecase.NewShiftUseCase(shiftRepo, employeeRepo, infrapdf.NewMarotoScheduleGenerator())
	timeOffUC := usecase.NewTimeOffUseCase(timeOffRepo, balanceRepo, employeeRepo)
	messageUC := usecase.NewMessageUseCase(messageRepo, profileRepo, employeeRepo)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo)

	// La función de administración lee y escribe user_roles con la credencial de servicio
	adminUC := usecase.NewAdminUseCase(
		postgres.NewUserRepository(servicePool),
		postgres.NewRoleRepository(servicePool),
		postgres.NewTxRunner(servicePool),
		postgres.NewAnalyticsRepository(servicePool),
		log.Component("admin"),
	)

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
		// sin WriteTimeout: los streams SSE son de larga duración
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Turnos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "subscribers": hub.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProfileUC:    profileUC,
		EmployeeUC:   employeeUC,
		ShiftUC:      shiftUC,
		TimeOffUC:    timeOffUC,
		MessageUC:    messageUC,
		DashboardUC:  dashboardUC,
		AdminUC:      adminUC,
		Feed:         hub,
		JWTSecret:    cfg.JWT.Secret,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		Log:          log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
