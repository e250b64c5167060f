package exitcode

import (
	stderrors "errors"
	"net/http"
	"os"
	"strings"

	"github.com/vendaa/vendaa/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ValidationError indicates input rejected before or by the backend
	ValidationError = 3

	// NotFound indicates the requested organization, member or invite does not exist
	NotFound = 4

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the user cancelled with Ctrl+C
	Interrupted = 130
)

// statusCoder is implemented by backend errors carrying an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Coded errors and backend
// status errors are classified structurally; anything else falls back to
// message matching (cobra usage errors are plain strings).
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var vErr *errors.VendaaError
	if stderrors.As(err, &vErr) {
		if code, ok := fromErrorCode(vErr.Code); ok {
			return code
		}
	}

	var sc statusCoder
	if stderrors.As(err, &sc) {
		return fromStatus(sc.StatusCode())
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag") ||
		strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "required flag") ||
		strings.Contains(errMsg, "accepts ") {
		return UsageError
	}

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "timeout") {
		return NetworkError
	}

	return GeneralError
}

func fromErrorCode(code errors.ErrorCode) (int, bool) {
	prefix, _, _ := strings.Cut(string(code), "-")
	switch {
	case prefix == "AUTH":
		return AuthError, true
	case code == errors.ErrCodeAPIRequest || code == errors.ErrCodeAPIRateLimited:
		return NetworkError, true
	case prefix == "INPUT" || prefix == "TOPUP":
		return ValidationError, true
	case code == errors.ErrCodeOrgNotFound || code == errors.ErrCodeOrgNone:
		return NotFound, true
	case prefix == "CONFIG":
		return UsageError, true
	}
	return 0, false
}

func fromStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return AuthError
	case status == http.StatusNotFound:
		return NotFound
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return ValidationError
	case status == http.StatusTooManyRequests || status >= 500:
		return NetworkError
	}
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or configuration)"
	case ValidationError:
		return "Validation error"
	case NotFound:
		return "Not found"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network or server error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
