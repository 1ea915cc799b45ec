package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/azlan18/iDEA/internal/auth"
	"github.com/azlan18/iDEA/internal/config"
	"github.com/azlan18/iDEA/internal/domain"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

// AgentDirectory resolves roster entries for login.
type AgentDirectory interface {
	Get(agentID string) (domain.Agent, error)
}

// AuthService issues tokens to roster agents.
type AuthService struct {
	agents   AgentDirectory
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
	// placeholder is hashed at the configured cost so rejected logins match real ones.
	placeholder string
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	Agents       AgentDirectory
	TokenManager *auth.TokenManager
	Logger       *zap.Logger
}

// NewAuthService builds the service. A token manager is derived from cfg when none is supplied.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tm := deps.TokenManager
	if tm == nil {
		tm = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	placeholder, err := auth.PlaceholderHash(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Warn("placeholder hash unavailable", zap.Error(err))
	}
	return &AuthService{agents: deps.Agents, tokenMgr: tm, logger: logger, placeholder: placeholder}
}

// Login authenticates an agent by id and password.
func (s *AuthService) Login(ctx context.Context, agentID, password string) (domain.Agent, string, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return domain.Agent{}, "", time.Time{}, err
	}

	agent, err := s.agents.Get(agentID)
	if err != nil || agent.PasswordHash == "" {
		// Spend the same bcrypt time as a real mismatch.
		_ = auth.ComparePassword(s.placeholder, password)
		s.logger.Info("login rejected", zap.String("agent_id", agentID))
		return domain.Agent{}, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.String("agent_id", agentID))
		return domain.Agent{}, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(agent.ID, agent.Role)
	if err != nil {
		return domain.Agent{}, "", time.Time{}, apperrors.NewInternalError(err)
	}
	agent.PasswordHash = ""
	return agent, token, exp, nil
}
