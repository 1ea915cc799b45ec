package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidState    = "INVALID_STATE"
	CodeIneligibleAgent = "INELIGIBLE_AGENT"
	CodeAgentBusy       = "AGENT_BUSY"
	CodeInvalidDomain   = "INVALID_DOMAIN"
	CodeStorage         = "STORAGE_ERROR"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_FAILED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching. Comparison is by Code only.
var (
	ErrNotFound        = &DomainError{Code: CodeNotFound}
	ErrInvalidState    = &DomainError{Code: CodeInvalidState}
	ErrIneligibleAgent = &DomainError{Code: CodeIneligibleAgent}
	ErrAgentBusy       = &DomainError{Code: CodeAgentBusy}
	ErrInvalidDomain   = &DomainError{Code: CodeInvalidDomain}
	ErrStorage         = &DomainError{Code: CodeStorage}
	ErrConflict        = &DomainError{Code: CodeConflict}
	ErrValidation      = &DomainError{Code: CodeValidation}
	ErrUnauthorized    = &DomainError{Code: CodeUnauthorized}
	ErrForbidden       = &DomainError{Code: CodeForbidden}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewInvalidState reports an operation that is not valid for the ticket's current status.
func NewInvalidState(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidState, message, http.StatusConflict, details)
}

// NewIneligibleAgent reports a domain mismatch between agent and ticket.
func NewIneligibleAgent(agentID, domain string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["agent_id"] = agentID
	details["domain"] = domain
	return NewDomainError(CodeIneligibleAgent, "agent not eligible for ticket domain", http.StatusUnprocessableEntity, details)
}

// NewAgentBusy reports a double-book attempt on an occupied agent.
func NewAgentBusy(agentID, currentTicketID string) error {
	return NewDomainError(CodeAgentBusy, "agent already occupied", http.StatusConflict, map[string]any{
		"agent_id":          agentID,
		"current_ticket_id": currentTicketID,
	})
}

func NewInvalidDomain(domain string) error {
	return NewDomainError(CodeInvalidDomain, "unknown domain", http.StatusBadRequest, map[string]any{
		"domain": domain,
	})
}

// NewStorageError wraps a propagated backend failure.
func NewStorageError(err error, details map[string]any) error {
	return &DomainError{
		Code:       CodeStorage,
		Message:    "storage failure",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    details,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WithDetails returns a copy of a DomainError with extra merged into its details.
// Keys the error already carries win. Other errors are returned unchanged.
func WithDetails(err error, extra map[string]any) error {
	var domainErr *DomainError
	if err == nil || !errors.As(err, &domainErr) {
		return err
	}
	merged := make(map[string]any, len(domainErr.Details)+len(extra))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range domainErr.Details {
		merged[k] = v
	}
	out := *domainErr
	out.Details = merged
	return &out
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus == 0 {
			domainErr.HTTPStatus = http.StatusInternalServerError
		}
		return domainErr
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// FromStatus builds a DomainError for a bare HTTP status raised by the transport layer.
func FromStatus(status int, message string) *DomainError {
	return NewDomainError(codeForStatus(status), message, status, nil)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}
