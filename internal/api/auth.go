package api

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/vendaa/vendaa/internal/errors"
)

// OTP purposes.
const (
	OTPPurposeSignup        = "signup"
	OTPPurposePasswordReset = "password_reset"
)

const minPasswordLength = 8

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the credentials before they are sent.
func (r LoginRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return errors.NewValidationError("password", "password is required")
	}
	return nil
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Validate checks the registration form.
func (r RegisterRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < minPasswordLength {
		return errors.NewValidationError("password", "password must be at least 8 characters long")
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.NewValidationError("first_name", "first name is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return errors.NewValidationError("last_name", "last name is required")
	}
	return nil
}

// RequestOTPRequest asks the backend to email a one-time code.
type RequestOTPRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

// Validate checks the address and purpose.
func (r RequestOTPRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	return validatePurpose(r.Purpose)
}

// VerifyOTPRequest confirms a one-time code. NewPassword is only sent for
// password resets.
type VerifyOTPRequest struct {
	Email       string `json:"email"`
	OTPCode     string `json:"otp_code"`
	Purpose     string `json:"purpose"`
	NewPassword string `json:"new_password,omitempty"`
}

// Validate checks the code and, for resets, the new password.
func (r VerifyOTPRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.OTPCode) < 6 {
		return errors.NewValidationError("otp_code", "OTP must be 6 characters long")
	}
	if err := validatePurpose(r.Purpose); err != nil {
		return err
	}
	if r.NewPassword != "" && len(r.NewPassword) < minPasswordLength {
		return errors.NewValidationError("new_password", "password must be at least 8 characters long")
	}
	return nil
}

// ChangePasswordRequest changes the password of the logged-in user.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate checks length and confirmation.
func (r ChangePasswordRequest) Validate() error {
	if len(r.NewPassword) < minPasswordLength {
		return errors.NewValidationError("new_password", "password must be at least 8 characters long")
	}
	if r.NewPassword != r.ConfirmPassword {
		return errors.NewValidationError("confirm_password", "passwords do not match")
	}
	return nil
}

// UpdateProfileRequest updates the logged-in user's profile.
type UpdateProfileRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Validate checks required profile fields.
func (r UpdateProfileRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.NewValidationError("first_name", "first name is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return errors.NewValidationError("last_name", "last name is required")
	}
	return nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return errors.NewValidationError("email", "please enter a valid email address")
	}
	return nil
}

func validatePurpose(p string) error {
	switch p {
	case OTPPurposeSignup, OTPPurposePasswordReset:
		return nil
	}
	return errors.NewValidationError("purpose", "must be signup or password_reset")
}

// Login exchanges credentials for a token pair. Unauthenticated.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var tokens AuthTokens
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login/", Body: req}, &tokens)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Register creates an account. Unauthenticated.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out RegisterResponse
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register/", Body: req}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestOTP sends a one-time code to the address. Unauthenticated.
func (c *Client) RequestOTP(ctx context.Context, req RequestOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/request-otp/", Body: req}, nil)
	return err
}

// VerifyOTP confirms a one-time code. Unauthenticated.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/otp-verify/", Body: req}, nil)
	return err
}

// ChangePassword changes the logged-in user's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/auth/change-password/", "", nil, req, nil)
}

// Me fetches the current user with their organizations.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me/", "", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the current user.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var user User
	if err := c.do(ctx, http.MethodPatch, "/auth/me/update/", "", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
