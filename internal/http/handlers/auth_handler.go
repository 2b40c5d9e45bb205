package handlers

import (
	"github.com/gofiber/fiber/v2"

	"barter/internal/domain"
	applog "barter/internal/log"
	"barter/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// POST /api/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.Registration
	if err := c.BodyParser(&in); err != nil {
		return domain.NewValidationError("", "malformed request body")
	}
	u, tok, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "auth.register", map[string]any{"username": u.Username})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  userView{ID: u.ID, Username: u.Username, Email: u.Email},
		"token": tok,
	})
}

type loginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginForm
	if err := c.BodyParser(&in); err != nil {
		return domain.NewValidationError("", "malformed request body")
	}
	if in.Username == "" || in.Password == "" {
		return domain.NewValidationError("", "username and password are required")
	}
	u, tok, err := h.Auth.Login(c.UserContext(), in.Username, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"username": in.Username})
		return err
	}
	applog.Audit(c, "auth.login.success", map[string]any{"username": u.Username})
	return c.JSON(fiber.Map{"token": tok})
}
