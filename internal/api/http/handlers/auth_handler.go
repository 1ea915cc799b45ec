package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/azlan18/iDEA/internal/api/dto"
	"github.com/azlan18/iDEA/internal/service"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

// AuthHandler exposes agent login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/agents/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AgentLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AgentID) == "" || req.Password == "" {
		return apperrors.NewValidationError("agent_id and password required", nil)
	}

	agent, token, exp, err := h.authService.Login(c.UserContext(), strings.TrimSpace(req.AgentID), req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"agent": dto.NewAgentResponse(agent),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
