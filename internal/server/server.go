package server

import (
	"context"
	"strconv"
	"time"

	"math-agent-be/internal/bootstrap"
	"math-agent-be/internal/config"
	"math-agent-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // local models can take minutes to answer
		ErrorHandler: serverutils.ErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	if cfg.App.OtelEnabled {
		app.Use(otelfiber.Middleware())
	}

	app.Use(requestMetrics(container))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("SERVER", "Server is running", map[string]interface{}{
		"url": "http://localhost:" + s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "up"}))
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	c.AgentController.RegisterRoutes(api)
	c.KnowledgeController.RegisterRoutes(api)

	app.Use(func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})
}

func requestMetrics(c *bootstrap.Container) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			// the error handler has not run yet
			status = serverutils.StatusOf(err)
		}

		// route pattern keeps label cardinality bounded
		c.Metrics.ObserveRequest(ctx.Method(), ctx.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
