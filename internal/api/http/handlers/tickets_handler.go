package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/azlan18/iDEA/internal/api/dto"
	"github.com/azlan18/iDEA/internal/auth"
	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/priority"
	"github.com/azlan18/iDEA/internal/repository"
	"github.com/azlan18/iDEA/internal/service"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TicketsHandler exposes the assignment engine.
type TicketsHandler struct {
	service *service.AssignmentService
	now     func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(assignments *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{service: assignments, now: time.Now}
}

// SubmitTicket POST /tickets.
func (h *TicketsHandler) SubmitTicket(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var score int
	switch {
	case req.PriorityScore != nil:
		score = *req.PriorityScore
	case req.Customer != nil:
		score = priority.Score(req.Customer.Attributes(), h.now())
	default:
		return apperrors.NewValidationError("priority_score or customer required", nil)
	}

	ticket, err := h.service.SubmitTicket(c.UserContext(), service.SubmitInput{
		Domain:        req.Domain,
		Description:   req.IssueDescription,
		PriorityScore: score,
		CustomerID:    req.CustomerID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CompleteTicket POST /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	var req dto.CompleteTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.service.CompleteTicket(c.UserContext(), c.Params("id"), req.SummaryOfWork, req.CustomerFeedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// HoldTicket POST /tickets/:id/hold.
func (h *TicketsHandler) HoldTicket(c *fiber.Ctx) error {
	var req dto.HoldTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.service.HoldTicket(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ResumeTicket POST /tickets/:id/resume.
func (h *TicketsHandler) ResumeTicket(c *fiber.Ctx) error {
	var req dto.ResumeTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	agentID, err := actingAgent(c, req.AgentID)
	if err != nil {
		return err
	}
	ticket, err := h.service.ResumeTicket(c.UserContext(), c.Params("id"), agentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AddWorkUpdate POST /tickets/:id/work-updates.
func (h *TicketsHandler) AddWorkUpdate(c *fiber.Ctx) error {
	var req dto.WorkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agentID, err := actingAgent(c, req.AgentID)
	if err != nil {
		return err
	}
	ticket, err := h.service.AddWorkUpdate(c.UserContext(), c.Params("id"), agentID, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// actingAgent resolves the agent an action is performed as: the requested one when the
// caller may act for it, otherwise the caller.
func actingAgent(c *fiber.Ctx, requested string) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("agent required")
	}
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return principal.Agent.ID, nil
	}
	if !principal.CanActFor(requested) {
		return "", apperrors.NewForbidden("may only act for yourself")
	}
	return requested, nil
}

func parseTicketFilter(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{}

	for _, part := range splitList(c.Query("status")) {
		status, ok := domain.ParseTicketStatus(part)
		if !ok {
			return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": part})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, part := range splitList(c.Query("domain")) {
		d, ok := domain.ParseDomain(part)
		if !ok {
			return filter, apperrors.NewInvalidDomain(part)
		}
		filter.Domains = append(filter.Domains, d)
	}
	if v := strings.TrimSpace(c.Query("handled_by")); v != "" {
		filter.HandledBy = &v
	}
	if v := strings.TrimSpace(c.Query("customer_id")); v != "" {
		filter.CustomerID = &v
	}

	var err error
	if filter.CreatedFrom, err = parseTime("created_from", c.Query("created_from")); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = parseTime("created_to", c.Query("created_to")); err != nil {
		return filter, err
	}

	sortKey, ok := repository.ParseSortKey(c.Query("sort"))
	if !ok {
		return filter, apperrors.NewValidationError("unknown sort key", map[string]any{"sort": c.Query("sort")})
	}
	filter.SortBy = sortKey
	filter.Descending = strings.EqualFold(c.Query("order"), "desc")

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTime(field, val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, apperrors.NewValidationError("timestamps must be RFC3339", map[string]any{field: val})
	}
	return &t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
