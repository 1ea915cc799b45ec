package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/azlan18/iDEA/internal/api/dto"
	"github.com/azlan18/iDEA/internal/priority"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

// PriorityHandler exposes the scorer to the ingress pipeline.
type PriorityHandler struct {
	now func() time.Time
}

// NewPriorityHandler constructs handler.
func NewPriorityHandler() *PriorityHandler {
	return &PriorityHandler{now: time.Now}
}

// Score POST /priority/score.
func (h *PriorityHandler) Score(c *fiber.Ctx) error {
	var req dto.PriorityScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	breakdown := priority.Explain(req.Attributes(), h.now())
	return c.JSON(fiber.Map{"data": dto.PriorityScoreResponse{
		Score:     breakdown.Total,
		Bucket:    priority.Bucket(breakdown.Total),
		Breakdown: breakdown,
	}})
}
