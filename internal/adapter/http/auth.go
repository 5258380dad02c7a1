package http

import (
	"encoding/json"
	"errors"

	"resume-matcher/internal/domain"
	"resume-matcher/internal/model"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) RegisterForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"form":   "register",
		"action": "/register",
		"fields": []string{"username", "password"},
	})
}

func (h *Handler) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"form":   "login",
		"action": "/login",
		"fields": []string{"username", "password"},
	})
}

// readCredentials validates and decodes the JSON credentials body.
func readCredentials(c *fiber.Ctx) (model.Credentials, bool) {
	var creds model.Credentials
	if err := model.Validate(model.SchemaCredentials, c.Body()); err != nil {
		return creds, false
	}
	if err := json.Unmarshal(c.Body(), &creds); err != nil {
		return creds, false
	}
	return creds, true
}

func (h *Handler) Register(c *fiber.Ctx) error {
	creds, ok := readCredentials(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Username and password are required!")
	}
	u, err := h.accounts.Register(c.UserContext(), creds.Username, creds.Password)
	if errors.Is(err, domain.ErrUsernameTaken) {
		return message(c, fiber.StatusBadRequest, "Username already exists!")
	}
	// bcrypt only hashes the first 72 bytes
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return message(c, fiber.StatusBadRequest, "Password is too long!")
	}
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return message(c, fiber.StatusCreated, "User created successfully!")
}

func (h *Handler) Login(c *fiber.Ctx) error {
	creds, ok := readCredentials(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Invalid credentials!")
	}
	u, err := h.accounts.Authenticate(c.UserContext(), creds.Username, creds.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return message(c, fiber.StatusUnauthorized, "Invalid credentials!")
	}
	if err != nil {
		return h.fail(c, err)
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := sess.Regenerate(); err != nil {
		return h.fail(c, err)
	}
	sess.Set(sessionUserID, u.ID)
	sess.Set(sessionUsername, u.Username)
	if err := sess.Save(); err != nil {
		return h.fail(c, err)
	}
	return message(c, fiber.StatusOK, "Login successful!")
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := sess.Destroy(); err != nil {
		return h.fail(c, err)
	}
	return message(c, fiber.StatusOK, "Logged out")
}
