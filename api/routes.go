package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pixelready/express-jobly/auth"
)

// Handlers holds all the handlers the router needs.
type Handlers struct {
	Companies *CompanyHandler
	Jobs      *JobHandler
	Health    *HealthHandler
}

// RouterConfig holds the configuration the router's middleware needs.
type RouterConfig struct {
	SecretKey string
	Logger    *slog.Logger
}

// NewApp builds the fiber application with request ids, request logging,
// token verification and every route registered.
func NewApp(h *Handlers, cfg RouterConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "jobly",
		ErrorHandler:          fiberErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(auth.RequestID())
	app.Use(requestLogger(cfg.Logger))
	RegisterRoutes(app, h, cfg)
	return app
}

// RegisterRoutes is the single entry point for setting up routes.
func RegisterRoutes(app *fiber.App, h *Handlers, cfg RouterConfig) {
	app.Use(auth.Authenticate([]byte(cfg.SecretKey)))
	// Mutations need a caller, and that caller must be an admin.
	loggedIn, admin := auth.EnsureLoggedIn(), auth.EnsureAdmin()

	if h.Health != nil {
		app.Get("/health", h.Health.Check)
	}

	companies := app.Group("/companies")
	companies.Post("/", loggedIn, admin, h.Companies.Create)
	companies.Get("/", h.Companies.List)
	companies.Get("/:handle", h.Companies.Get)
	companies.Patch("/:handle", loggedIn, admin, h.Companies.Update)
	companies.Delete("/:handle", loggedIn, admin, h.Companies.Remove)

	jobs := app.Group("/jobs")
	jobs.Post("/", loggedIn, admin, h.Jobs.Create)
	jobs.Get("/", h.Jobs.List)
	jobs.Get("/:id", h.Jobs.Get)
	jobs.Patch("/:id", loggedIn, admin, h.Jobs.Update)
	jobs.Delete("/:id", loggedIn, admin, h.Jobs.Remove)
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		logger.InfoContext(c.UserContext(), "jobly/api: request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", auth.GetRequestID(c)),
		)
		return err
	}
}
