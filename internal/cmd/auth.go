package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/organization"
	"github.com/vendaa/vendaa/internal/tui"
	"github.com/vendaa/vendaa/internal/ux"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication credentials",
	Long: `Manage your Vendaa account and session.

Tokens are stored in ~/.vendaa/state.json and shared by every vendaa process.
Logging out in one terminal ends the session everywhere.

Examples:
  vendaa auth register --email ada@example.com --first-name Ada --last-name Obi
  vendaa auth verify-otp --email ada@example.com --code 123456
  vendaa auth login --email ada@example.com
  vendaa auth status
  vendaa auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// authLoginCmd handles user login
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login with email and password",
	Long: `Login with your email and password. Missing credentials are prompted for
when running in a terminal.

After logging in, your organizations are loaded and the previously selected
organization (or the first one) becomes current.`,
	RunE: runPublicE("auth.login", runAuthLogin),
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new account. A verification code is emailed to you; confirm it
with 'vendaa auth verify-otp'.`,
	RunE: runPublicE("auth.register", runAuthRegister),
}

var authRequestOTPCmd = &cobra.Command{
	Use:   "request-otp",
	Short: "Email a one-time code",
	Long: `Email a one-time code for account verification (--purpose signup) or a
password reset (--purpose password_reset).`,
	RunE: runPublicE("auth.request_otp", runAuthRequestOTP),
}

var authVerifyOTPCmd = &cobra.Command{
	Use:   "verify-otp",
	Short: "Confirm a one-time code",
	Long: `Confirm a one-time code.

For signup verification, pass --password to log in right after the account
is verified. For password resets, pass --new-password.`,
	RunE: runPublicE("auth.verify_otp", runAuthVerifyOTP),
}

var authChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the logged-in user",
	RunE:  runE("auth.change_password", runAuthChangePassword),
}

// authLogoutCmd handles user logout
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and remove credentials",
	Long: `Remove the stored tokens. Every running vendaa process, including an open
dashboard, observes the logout.`,
	RunE: runPublicE("auth.logout", runAuthLogout),
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	RunE:  runPublicE("auth.status", runAuthStatus),
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authRequestOTPCmd)
	authCmd.AddCommand(authVerifyOTPCmd)
	authCmd.AddCommand(authChangePasswordCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().String("email", "", "Email address")
	authLoginCmd.Flags().String("password", "", "Password")

	authRegisterCmd.Flags().String("email", "", "Email address (required)")
	authRegisterCmd.Flags().String("password", "", "Password, at least 8 characters (required)")
	authRegisterCmd.Flags().String("first-name", "", "First name (required)")
	authRegisterCmd.Flags().String("last-name", "", "Last name (required)")
	authRegisterCmd.Flags().String("phone", "", "Phone number")
	_ = authRegisterCmd.MarkFlagRequired("email")
	_ = authRegisterCmd.MarkFlagRequired("password")

	authRequestOTPCmd.Flags().String("email", "", "Email address (required)")
	authRequestOTPCmd.Flags().String("purpose", api.OTPPurposeSignup, "signup or password_reset")
	_ = authRequestOTPCmd.MarkFlagRequired("email")

	authVerifyOTPCmd.Flags().String("email", "", "Email address (required)")
	authVerifyOTPCmd.Flags().String("code", "", "One-time code (required)")
	authVerifyOTPCmd.Flags().String("purpose", api.OTPPurposeSignup, "signup or password_reset")
	authVerifyOTPCmd.Flags().String("new-password", "", "New password (password_reset only)")
	authVerifyOTPCmd.Flags().String("password", "", "Account password; logs in after signup verification")
	_ = authVerifyOTPCmd.MarkFlagRequired("email")
	_ = authVerifyOTPCmd.MarkFlagRequired("code")

	authChangePasswordCmd.Flags().String("old", "", "Current password (required)")
	authChangePasswordCmd.Flags().String("new", "", "New password (required)")
	authChangePasswordCmd.Flags().String("confirm", "", "New password again (required)")
	_ = authChangePasswordCmd.MarkFlagRequired("old")
	_ = authChangePasswordCmd.MarkFlagRequired("new")
	_ = authChangePasswordCmd.MarkFlagRequired("confirm")

	rootCmd.AddCommand(authCmd)
}

// sessionStatus is the machine-readable form of 'auth status' and 'auth login'.
type sessionStatus struct {
	Authenticated bool              `json:"authenticated" yaml:"authenticated"`
	Environment   string            `json:"environment" yaml:"environment"`
	BaseURL       string            `json:"base_url" yaml:"base_url"`
	User          *api.User         `json:"user,omitempty" yaml:"user,omitempty"`
	Organization  *api.Organization `json:"organization,omitempty" yaml:"organization,omitempty"`
}

func (s sessionStatus) String() string {
	if !s.Authenticated {
		return fmt.Sprintf("Not logged in (%s, %s)\n\nUse 'vendaa auth login' to login.", s.Environment, s.BaseURL)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Logged in to %s (%s)", s.Environment, s.BaseURL)
	if s.User != nil {
		fmt.Fprintf(&b, "\nUser:         %s", s.User.Email)
	}
	if s.Organization != nil {
		fmt.Fprintf(&b, "\nOrganization: %s (%s)", s.Organization.Name, s.Organization.UUID)
	}
	return b.String()
}

func (a *App) status(snap organization.Snapshot) sessionStatus {
	return sessionStatus{
		Authenticated: a.Session.IsAuthenticated(),
		Environment:   a.Config.Environment,
		BaseURL:       a.Client.BaseURL(),
		User:          snap.User,
		Organization:  snap.Selected,
	}
}

func runAuthLogin(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	creds := tui.Credentials{}
	creds.Email, _ = cmd.Flags().GetString("email")
	creds.Password, _ = cmd.Flags().GetString("password")

	if (creds.Email == "" || creds.Password == "") && tui.ShouldPrompt() {
		if err := tui.PromptForCredentials(&creds); err != nil {
			return err
		}
	}

	tokens, err := app.Client.Login(ctx, api.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return err
	}
	if err := app.Session.SetTokens(tokens.Access, tokens.Refresh); err != nil {
		return err
	}
	app.Logger.Info("logged in", "email", creds.Email)

	if err := app.loadOrganizations(ctx); err != nil {
		app.Logger.WithError(err).Warn("failed to load organizations after login")
	}

	cc.Notice("Login successful!")
	status := app.status(app.Orgs.Snapshot())
	return cc.Print(ux.View{Data: status, Text: status})
}

func runAuthRegister(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	req := api.RegisterRequest{}
	req.Email, _ = cmd.Flags().GetString("email")
	req.Password, _ = cmd.Flags().GetString("password")
	req.FirstName, _ = cmd.Flags().GetString("first-name")
	req.LastName, _ = cmd.Flags().GetString("last-name")
	req.PhoneNumber, _ = cmd.Flags().GetString("phone")

	resp, err := app.Client.Register(ctx, req)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf(`Account created for %s.

A verification code was sent to your email. Confirm it with:
  vendaa auth verify-otp --email %s --code <code> --password <password>`, resp.Email, resp.Email)
	return cc.Print(ux.View{Data: resp, Text: text(msg)})
}

func runAuthRequestOTP(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	req := api.RequestOTPRequest{}
	req.Email, _ = cmd.Flags().GetString("email")
	req.Purpose, _ = cmd.Flags().GetString("purpose")

	if err := app.Client.RequestOTP(ctx, req); err != nil {
		return err
	}

	next := "vendaa auth verify-otp --email " + req.Email + " --code <code>"
	if req.Purpose == api.OTPPurposePasswordReset {
		next += " --purpose password_reset --new-password <password>"
	}
	msg := fmt.Sprintf("A one-time code was sent to %s.\n\nNext:\n  %s", req.Email, next)
	return cc.Print(ux.View{Data: api.Detail{Detail: "otp sent"}, Text: text(msg)})
}

func runAuthVerifyOTP(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	req := api.VerifyOTPRequest{}
	req.Email, _ = cmd.Flags().GetString("email")
	req.OTPCode, _ = cmd.Flags().GetString("code")
	req.Purpose, _ = cmd.Flags().GetString("purpose")
	req.NewPassword, _ = cmd.Flags().GetString("new-password")
	password, _ := cmd.Flags().GetString("password")

	if err := app.Client.VerifyOTP(ctx, req); err != nil {
		return err
	}

	switch {
	case req.Purpose == api.OTPPurposePasswordReset:
		cc.Notice("Password reset. Use 'vendaa auth login' with your new password.")
		return nil
	case password == "":
		cc.Notice("Email verified. Use 'vendaa auth login' to login.")
		return nil
	}

	cc.Notice("Email verified.")
	tokens, err := app.Client.Login(ctx, api.LoginRequest{Email: req.Email, Password: password})
	if err != nil {
		return err
	}
	if err := app.Session.SetTokens(tokens.Access, tokens.Refresh); err != nil {
		return err
	}
	if err := app.loadOrganizations(ctx); err != nil {
		app.Logger.WithError(err).Warn("failed to load organizations after login")
	}
	cc.Notice("Login successful!")
	status := app.status(app.Orgs.Snapshot())
	return cc.Print(ux.View{Data: status, Text: status})
}

func runAuthChangePassword(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	req := api.ChangePasswordRequest{}
	req.OldPassword, _ = cmd.Flags().GetString("old")
	req.NewPassword, _ = cmd.Flags().GetString("new")
	req.ConfirmPassword, _ = cmd.Flags().GetString("confirm")

	if err := app.Client.ChangePassword(ctx, req); err != nil {
		return err
	}
	cc.Notice("Password changed.")
	return nil
}

func runAuthLogout(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if !app.Session.IsAuthenticated() {
		cc.Notice("Not logged in.")
		return nil
	}

	app.Metrics.RecordLogout("explicit")
	if err := app.Session.Logout(); err != nil {
		return err
	}
	cc.Notice("Logged out successfully.")
	return nil
}

func runAuthStatus(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if app.Session.IsAuthenticated() {
		// A rejected token logs the session out; the status then reads
		// "not logged in".
		if err := app.loadOrganizations(ctx); err != nil {
			app.Logger.WithError(err).Debug("status check failed")
		}
	}
	status := app.status(app.Orgs.Snapshot())
	return cc.Print(ux.View{Data: status, Text: status})
}
