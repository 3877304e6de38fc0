package server

import (
	"context"
	"strings"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/bootstrap"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/config"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const moduleName = "Axiom Logic Core"

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    25 * 1024 * 1024, // uploads are capped at 20MB by the controller
		ErrorHandler: serverutils.NewErrorHandler(container.Logger),
	})

	app.Use(cors.New(corsConfig(cfg.App.CorsAllowedOrigins)))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

// corsConfig allows credentials only for an explicit origin list; fiber
// refuses to start with credentials on a wildcard origin.
func corsConfig(origins string) cors.Config {
	wildcard := strings.TrimSpace(origins) == ""
	for _, origin := range strings.Split(origins, ",") {
		if strings.TrimSpace(origin) == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = "*"
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: !wildcard,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("server", "Server is running", map[string]interface{}{
		"port": s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(dto.HealthResponse{
			Status:        "online",
			Module:        moduleName,
			InferenceMode: cfg.Ai.LLMProvider,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")

	c.VerifyController.RegisterRoutes(api)
	c.DocumentController.RegisterRoutes(api)
	c.InferenceController.RegisterRoutes(api)
}
