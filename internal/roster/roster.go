// Package roster loads the static agent roster the registry is built from.
package roster

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/azlan18/iDEA/internal/domain"
)

// File is the on-disk YAML layout.
type File struct {
	Agents []Entry `yaml:"agents"`
}

// Entry describes one provisioned agent.
type Entry struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Role         string   `yaml:"role"`
	PasswordHash string   `yaml:"password_hash"`
	Domains      []string `yaml:"domains"`
}

// Load reads a roster file. An empty path yields the built-in roster.
func Load(path string) ([]domain.Agent, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML roster.
func Parse(data []byte) ([]domain.Agent, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if len(file.Agents) == 0 {
		return nil, errors.New("roster has no agents")
	}

	var problems []error
	seen := make(map[string]struct{}, len(file.Agents))
	agents := make([]domain.Agent, 0, len(file.Agents))
	for i, entry := range file.Agents {
		agent, errs := entry.toAgent()
		for _, e := range errs {
			problems = append(problems, fmt.Errorf("agents[%d]: %w", i, e))
		}
		if agent.ID != "" {
			if _, dup := seen[agent.ID]; dup {
				problems = append(problems, fmt.Errorf("agents[%d]: duplicate id %q", i, agent.ID))
			}
			seen[agent.ID] = struct{}{}
		}
		agents = append(agents, agent)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return agents, nil
}

func (e Entry) toAgent() (domain.Agent, []error) {
	var errs []error
	agent := domain.Agent{
		ID:           strings.TrimSpace(e.ID),
		Name:         strings.TrimSpace(e.Name),
		PasswordHash: e.PasswordHash,
		IsFree:       true,
	}
	if agent.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}

	switch domain.AgentRole(strings.ToUpper(strings.TrimSpace(e.Role))) {
	case "", domain.AgentRoleAgent:
		agent.Role = domain.AgentRoleAgent
	case domain.AgentRoleSupervisor:
		agent.Role = domain.AgentRoleSupervisor
	default:
		errs = append(errs, fmt.Errorf("unknown role %q", e.Role))
	}

	if len(e.Domains) == 0 {
		errs = append(errs, errors.New("at least one domain is required"))
	}
	for _, raw := range e.Domains {
		d, ok := domain.ParseDomain(raw)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown domain %q", raw))
			continue
		}
		if !agent.Eligible(d) {
			agent.EligibleDomains = append(agent.EligibleDomains, d)
		}
	}
	return agent, errs
}

// Default returns the four-desk roster used when no file is configured.
// Entries carry no password hash; see WithDefaultPassword.
func Default() []domain.Agent {
	tech := []domain.Domain{domain.DomainPayments, domain.DomainCompliance}
	nonTech := []domain.Domain{domain.DomainRetailBanking, domain.DomainLoanCredit, domain.DomainWealth}
	return []domain.Agent{
		{ID: "EMP001", Name: "Tech Desk 1", Role: domain.AgentRoleAgent, EligibleDomains: append([]domain.Domain(nil), tech...), IsFree: true},
		{ID: "EMP002", Name: "Service Desk 1", Role: domain.AgentRoleAgent, EligibleDomains: append([]domain.Domain(nil), nonTech...), IsFree: true},
		{ID: "EMP003", Name: "Tech Desk 2", Role: domain.AgentRoleAgent, EligibleDomains: append([]domain.Domain(nil), tech...), IsFree: true},
		{ID: "EMP004", Name: "Service Desk 2", Role: domain.AgentRoleSupervisor, EligibleDomains: append([]domain.Domain(nil), nonTech...), IsFree: true},
	}
}

// WithDefaultPassword fills hash into every agent that has none.
func WithDefaultPassword(agents []domain.Agent, hash string) []domain.Agent {
	if hash == "" {
		return agents
	}
	out := make([]domain.Agent, len(agents))
	copy(out, agents)
	for i := range out {
		if out[i].PasswordHash == "" {
			out[i].PasswordHash = hash
		}
	}
	return out
}
