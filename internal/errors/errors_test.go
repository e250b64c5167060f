package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeOrgNotFound, "test error message")

	if err.Code != ErrCodeOrgNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeOrgNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *VendaaError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeWalletUnavailable, "no balance"),
			wantCode: "WALLET-001",
			wantMsg:  "no balance",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-001",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestionAndDocs(t *testing.T) {
	err := New(ErrCodeAuthRequired, "not logged in").
		WithSuggestion("first").
		WithSuggestions("second", "third").
		WithDocs("https://example.com/docs")

	if len(err.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(err.Suggestions))
	}

	out := err.Error()
	for _, want := range []string{"Suggestions:", "• first", "• third", "Documentation: https://example.com/docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("error string missing %q: %s", want, out)
		}
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *VendaaError
		code ErrorCode
	}{
		{"auth required", NewAuthRequiredError(), ErrCodeAuthRequired},
		{"session expired", NewSessionExpiredError(fmt.Errorf("401")), ErrCodeAuthFailed},
		{"no organization", NewNoOrganizationError(), ErrCodeOrgNone},
		{"organization not found", NewOrganizationNotFoundError("org-9"), ErrCodeOrgNotFound},
		{"wallet unavailable", NewWalletUnavailableError("org-1"), ErrCodeWalletUnavailable},
		{"top-up amount", NewTopUpAmountError(10, 1000), ErrCodeTopUpAmount},
		{"top-up method", NewTopUpMethodError("cash"), ErrCodeTopUpMethod},
		{"environment", NewEnvironmentError("qa"), ErrCodeConfigEnvironment},
		{"unmarshal", NewFileUnmarshalError("state.json", "JSON", fmt.Errorf("eof")), ErrCodeFileUnmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if len(tt.err.Suggestions) == 0 {
				t.Error("expected at least one suggestion")
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("command failed: %w", NewNoOrganizationError())

	var vErr *VendaaError
	if !errors.As(wrapped, &vErr) {
		t.Fatal("errors.As should find the VendaaError")
	}
	if vErr.Code != ErrCodeOrgNone {
		t.Errorf("code = %s, want %s", vErr.Code, ErrCodeOrgNone)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("email", "must be a valid address")
	if err.Code != ErrCodeInputInvalid {
		t.Errorf("code = %s, want %s", err.Code, ErrCodeInputInvalid)
	}
	if err.Message != "invalid email: must be a valid address" {
		t.Errorf("message = %q", err.Message)
	}
}
