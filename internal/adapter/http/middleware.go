package http

import (
	"strconv"
	"time"

	"resume-matcher/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"
	localsUserID    = "user_id"
)

// RequestLogger logs every request and records the HTTP metrics. Routes
// are labelled by their pattern so ids do not explode label cardinality.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler pick the status before it is recorded
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Warn("request", fields...)
		} else {
			logger.Debug("request", fields...)
		}
		return err
	}
}

// RequireLogin rejects requests without a logged-in session and exposes
// the user id to handlers through c.Locals.
func (h *Handler) RequireLogin(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, ok := sess.Get(sessionUserID).(int64)
	if !ok || id <= 0 {
		return message(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	c.Locals(localsUserID, id)
	return c.Next()
}

func currentUser(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localsUserID).(int64)
	return id
}
