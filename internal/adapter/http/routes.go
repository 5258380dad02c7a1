package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionTTL = 24 * time.Hour

type AppConfig struct {
	BodyLimitMB int
	// SessionSecret, when set, encrypts the session cookie.
	SessionSecret string
}

// NewSessionStore keeps sessions in storage, or in process memory when
// storage is nil.
func NewSessionStore(storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Storage:        storage,
		Expiration:     sessionTTL,
		KeyLookup:      "cookie:session_id",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// NewApp builds the fiber app with its middleware chain and every route.
func NewApp(h *Handler, cfg AppConfig, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.BodyLimitMB
	if limit <= 0 {
		limit = 16
	}
	app := fiber.New(fiber.Config{
		AppName:               "resume-matcher",
		BodyLimit:             limit * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// outermost so recovered panics are logged and counted
	app.Use(RequestLogger(logger))
	app.Use(recover.New())
	if cfg.SessionSecret != "" {
		app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.SessionSecret}))
	}

	Register(app, h)
	return app
}

// Register mounts the routes on app.
func Register(app *fiber.App, h *Handler) {
	app.Get("/healthz", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", h.RegisterForm)
	app.Post("/register", h.Register)
	app.Get("/login", h.LoginForm)
	app.Post("/login", h.Login)
	app.Get("/logout", h.Logout)
	app.Post("/logout", h.Logout)

	app.Get("/apply/:link", h.PublicJob)
	app.Post("/apply/:link", h.Apply)
	app.Get("/uploads/:filename", h.Upload)

	app.Get("/dashboard", h.RequireLogin, h.Dashboard)
	app.Get("/create-job", h.RequireLogin, h.CreateJobForm)
	app.Post("/create-job", h.RequireLogin, h.CreateJob)
	app.Get("/job/:id/applicants", h.RequireLogin, h.Applicants)
	app.Post("/job/:id/delete", h.RequireLogin, h.DeleteJob)
	app.Get("/applicant/:id", h.RequireLogin, h.Applicant)
	app.Post("/applicant/:id/delete", h.RequireLogin, h.DeleteApplicant)
}

func errorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(fiber.Map{"message": ferr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
}
