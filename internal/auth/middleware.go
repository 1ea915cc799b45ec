package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/azlan18/iDEA/internal/domain"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated agent.
type Principal struct {
	Agent domain.Agent
	Role  domain.AgentRole
}

// CanActFor reports whether the caller may act on agentID's behalf.
func (p *Principal) CanActFor(agentID string) bool {
	if p == nil {
		return false
	}
	return p.Role == domain.AgentRoleSupervisor || p.Agent.ID == agentID
}

// AgentLookup resolves roster entries.
type AgentLookup interface {
	Get(agentID string) (domain.Agent, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	agents AgentLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, agents AgentLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, agents: agents}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	agent, err := m.agents.Get(claims.AgentID())
	if err != nil {
		return apperrors.NewUnauthorized("agent not on roster")
	}

	// The roster is authoritative for the role; a stale token cannot keep a revoked role.
	c.Locals(principalKey, &Principal{Agent: agent, Role: agent.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
