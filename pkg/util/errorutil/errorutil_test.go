package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_MergesWithoutOverwriting(t *testing.T) {
	base := NewAgentBusy("EMP001", "TKT-1")

	got := WithDetails(base, map[string]any{
		"ticket_id":         "TKT-2",
		"operation":         "resume",
		"current_ticket_id": "ignored",
	})

	de := ToDomainError(got)
	require.NotNil(t, de)
	assert.Equal(t, CodeAgentBusy, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, map[string]any{
		"agent_id":          "EMP001",
		"current_ticket_id": "TKT-1",
		"ticket_id":         "TKT-2",
		"operation":         "resume",
	}, de.Details)
	assert.ErrorIs(t, got, ErrAgentBusy)

	orig := ToDomainError(base)
	assert.NotContains(t, orig.Details, "ticket_id", "source error must stay untouched")
}

func TestWithDetails_FindsWrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewNotFound("agent", map[string]any{"agent_id": "EMP404"}))

	de := ToDomainError(WithDetails(wrapped, map[string]any{"ticket_id": "TKT-9"}))
	assert.Equal(t, CodeNotFound, de.Code)
	assert.Equal(t, "EMP404", de.Details["agent_id"])
	assert.Equal(t, "TKT-9", de.Details["ticket_id"])
}

func TestWithDetails_PassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, WithDetails(plain, map[string]any{"k": "v"}))
	assert.NoError(t, WithDetails(nil, map[string]any{"k": "v"}))
}

func TestFromStatus_MapsTransportStatuses(t *testing.T) {
	assert.Equal(t, CodeNotFound, FromStatus(http.StatusNotFound, "no route").Code)
	assert.Equal(t, CodeUnauthorized, FromStatus(http.StatusUnauthorized, "x").Code)
	assert.Equal(t, CodeInternal, FromStatus(http.StatusTeapot, "x").Code)
}
