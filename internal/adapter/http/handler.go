package http

import (
	"errors"
	"strings"

	"resume-matcher/internal/domain"
	"resume-matcher/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// FileServer resolves stored upload names to paths on disk.
type FileServer interface {
	Path(name string) (string, error)
}

type Handler struct {
	accounts   *usecase.Accounts
	recruiting *usecase.Recruiting
	files      FileServer
	sessions   *session.Store
	publicURL  string
	logger     *zap.Logger
}

func NewHandler(accounts *usecase.Accounts, recruiting *usecase.Recruiting, files FileServer, sessions *session.Store, publicURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		accounts:   accounts,
		recruiting: recruiting,
		files:      files,
		sessions:   sessions,
		publicURL:  strings.TrimRight(publicURL, "/"),
		logger:     logger,
	}
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// fail maps domain errors onto HTTP statuses. Anything unexpected is logged
// and reported as a 500 without details.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return message(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrForbidden):
		return message(c, fiber.StatusForbidden, "Forbidden")
	}
	h.logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return message(c, fiber.StatusInternalServerError, "Internal server error")
}

// lookupFailed reports a missing entity with msg and defers to fail for
// everything else.
func (h *Handler) lookupFailed(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return message(c, fiber.StatusNotFound, msg)
	}
	return h.fail(c, err)
}

// idParam parses a positive numeric route parameter. Malformed ids are
// reported like unknown ones.
func idParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
