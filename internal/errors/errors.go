package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthRequired     ErrorCode = "AUTH-001"
	ErrCodeAuthFailed       ErrorCode = "AUTH-002"
	ErrCodeAuthTokenMissing ErrorCode = "AUTH-003"
	ErrCodeAuthOTPInvalid   ErrorCode = "AUTH-004"

	// API transport errors (API-001 to API-099)
	ErrCodeAPIRequest     ErrorCode = "API-001"
	ErrCodeAPIResponse    ErrorCode = "API-002"
	ErrCodeAPIDecode      ErrorCode = "API-003"
	ErrCodeAPIRateLimited ErrorCode = "API-004"

	// Organization errors (ORG-001 to ORG-099)
	ErrCodeOrgNone        ErrorCode = "ORG-001"
	ErrCodeOrgNotFound    ErrorCode = "ORG-002"
	ErrCodeOrgNotSelected ErrorCode = "ORG-003"

	// Wallet errors (WALLET-001 to WALLET-099)
	ErrCodeWalletUnavailable ErrorCode = "WALLET-001"
	ErrCodeWalletCreate      ErrorCode = "WALLET-002"

	// Top-up errors (TOPUP-001 to TOPUP-099)
	ErrCodeTopUpAmount ErrorCode = "TOPUP-001"
	ErrCodeTopUpMethod ErrorCode = "TOPUP-002"

	// Input validation errors (INPUT-001 to INPUT-099)
	ErrCodeInputInvalid ErrorCode = "INPUT-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid     ErrorCode = "CONFIG-001"
	ErrCodeConfigEnvironment ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
	ErrCodeDirectoryFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-004"
)

const docsBase = "https://github.com/vendaa/vendaa"

// VendaaError represents an enhanced error with code, suggestions, and documentation
type VendaaError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *VendaaError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *VendaaError) Unwrap() error {
	return e.Cause
}

// New creates a new VendaaError
func New(code ErrorCode, message string) *VendaaError {
	return &VendaaError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new VendaaError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *VendaaError {
	return &VendaaError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *VendaaError) WithSuggestion(suggestion string) *VendaaError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *VendaaError) WithSuggestions(suggestions ...string) *VendaaError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *VendaaError) WithDocs(url string) *VendaaError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewAuthRequiredError is returned when a command needs a session and none is stored.
func NewAuthRequiredError() *VendaaError {
	return New(ErrCodeAuthRequired, "not logged in").
		WithSuggestion("Run 'vendaa auth login --email <email>' to authenticate").
		WithDocs(docsBase + "#authentication")
}

// NewSessionExpiredError is returned after the backend rejected the stored token.
func NewSessionExpiredError(cause error) *VendaaError {
	return Wrap(ErrCodeAuthFailed, "session rejected by the server, you have been logged out", cause).
		WithSuggestion("Run 'vendaa auth login' to start a new session")
}

// NewNoOrganizationError is returned when the account has no organization yet.
func NewNoOrganizationError() *VendaaError {
	return New(ErrCodeOrgNone, "your account does not belong to any organization").
		WithSuggestion("Run 'vendaa org create --name <name>' to create one").
		WithSuggestion("Ask an organization admin to invite you, then run 'vendaa invite accept'")
}

// NewOrganizationNotFoundError is returned when an id is not among the user's organizations.
func NewOrganizationNotFoundError(id string) *VendaaError {
	return New(ErrCodeOrgNotFound, fmt.Sprintf("organization not found: %s", id)).
		WithSuggestion("Run 'vendaa org list' to see the organizations you belong to")
}

// NewWalletUnavailableError is returned when the balance could not be determined.
func NewWalletUnavailableError(orgID string) *VendaaError {
	return New(ErrCodeWalletUnavailable, fmt.Sprintf("wallet balance unavailable for organization %s", orgID)).
		WithSuggestion("Retry with 'vendaa wallet balance'").
		WithSuggestion("Run with --log-level debug to see the underlying API error")
}

// NewTopUpAmountError creates a minimum amount violation error
func NewTopUpAmountError(amount, minimum float64) *VendaaError {
	return New(ErrCodeTopUpAmount, fmt.Sprintf("top-up amount %.2f is below the minimum of %.2f", amount, minimum)).
		WithSuggestion(fmt.Sprintf("Enter an amount of at least %.0f", minimum))
}

// NewTopUpMethodError creates an unknown payment method error
func NewTopUpMethodError(method string) *VendaaError {
	return New(ErrCodeTopUpMethod, fmt.Sprintf("unknown payment method: %q", method)).
		WithSuggestion("Use one of: bank_transfer, online_checkout")
}

// NewValidationError is returned when a request fails client-side validation.
func NewValidationError(field, message string) *VendaaError {
	return New(ErrCodeInputInvalid, fmt.Sprintf("invalid %s: %s", field, message))
}

// NewEnvironmentError creates an unknown environment error
func NewEnvironmentError(env string) *VendaaError {
	return New(ErrCodeConfigEnvironment, fmt.Sprintf("unknown environment: %q", env)).
		WithSuggestion("Use one of: local, staging, production").
		WithSuggestion("Or set VENDAA_API_URL to point at a custom backend").
		WithDocs(docsBase + "#configuration")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *VendaaError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Remove %s to start from a clean state", path))
}
