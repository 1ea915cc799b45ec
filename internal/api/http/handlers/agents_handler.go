package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azlan18/iDEA/internal/api/dto"
	"github.com/azlan18/iDEA/internal/service"
)

// AgentsHandler serves roster views.
type AgentsHandler struct {
	service *service.AssignmentService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(assignments *service.AssignmentService) *AgentsHandler {
	return &AgentsHandler{service: assignments}
}

// ListAgents GET /agents.
func (h *AgentsHandler) ListAgents(c *fiber.Ctx) error {
	agents := h.service.ListAgents()
	items := make([]dto.AgentResponse, 0, len(agents))
	for _, a := range agents {
		items = append(items, dto.NewAgentResponse(a))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAgent GET /agents/:id.
func (h *AgentsHandler) GetAgent(c *fiber.Ctx) error {
	agent, err := h.service.GetAgent(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentResponse(agent)})
}

// Statistics GET /agents/:id/statistics.
func (h *AgentsHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.AgentStatistics(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
