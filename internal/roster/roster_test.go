package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azlan18/iDEA/internal/domain"
)

const validRoster = `
agents:
  - id: A1
    name: Alice
    role: supervisor
    password_hash: "$2a$10$abc"
    domains:
      - Payments & Clearing Department
      - "  regulatory & compliance department "
  - id: A2
    name: Bob
    domains: [Loan & Credit Department]
`

func TestParse_Valid(t *testing.T) {
	agents, err := Parse([]byte(validRoster))
	require.NoError(t, err)
	require.Len(t, agents, 2)

	assert.Equal(t, "A1", agents[0].ID)
	assert.Equal(t, domain.AgentRoleSupervisor, agents[0].Role)
	assert.Equal(t, []domain.Domain{domain.DomainPayments, domain.DomainCompliance}, agents[0].EligibleDomains)
	assert.Equal(t, "$2a$10$abc", agents[0].PasswordHash)

	assert.Equal(t, domain.AgentRoleAgent, agents[1].Role)
	assert.True(t, agents[1].IsFree)
}

func TestParse_CollectsProblems(t *testing.T) {
	bad := `
agents:
  - id: A1
    role: boss
    domains: [Space Travel]
  - id: A1
    domains: []
  - name: nameless
    domains: [Payments & Clearing Department]
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown role "boss"`)
	assert.Contains(t, msg, `unknown domain "Space Travel"`)
	assert.Contains(t, msg, `duplicate id "A1"`)
	assert.Contains(t, msg, "at least one domain is required")
	assert.Contains(t, msg, "id is required")
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("agents: []"))
	assert.Error(t, err)
}

func TestLoad_FileAndDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validRoster), 0o600))

	agents, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	defaults, err := Load("")
	require.NoError(t, err)
	require.Len(t, defaults, 4)
	assert.True(t, defaults[0].Eligible(domain.DomainPayments))
	assert.False(t, defaults[0].Eligible(domain.DomainLoanCredit))
	assert.True(t, defaults[1].Eligible(domain.DomainLoanCredit))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWithDefaultPassword(t *testing.T) {
	agents := []domain.Agent{{ID: "A"}, {ID: "B", PasswordHash: "keep"}}
	out := WithDefaultPassword(agents, "h")
	assert.Equal(t, "h", out[0].PasswordHash)
	assert.Equal(t, "keep", out[1].PasswordHash)
	assert.Empty(t, agents[0].PasswordHash)
}
