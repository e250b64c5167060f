package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/ux"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE:  runE("profile.show", runProfileShow),
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Long: `Update your profile. Fields not given keep their current value.

Examples:
  vendaa profile update --phone +2348012345678
  vendaa profile update --first-name Ada --last-name Obi`,
	RunE: runE("profile.update", runProfileUpdate),
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	profileUpdateCmd.Flags().String("email", "", "Email address")
	profileUpdateCmd.Flags().String("first-name", "", "First name")
	profileUpdateCmd.Flags().String("last-name", "", "Last name")
	profileUpdateCmd.Flags().String("phone", "", "Phone number")

	rootCmd.AddCommand(profileCmd)
}

type profileView api.User

func (p profileView) String() string {
	u := api.User(p)
	phone := "-"
	if u.PhoneNumber != nil && *u.PhoneNumber != "" {
		phone = *u.PhoneNumber
	}
	names := make([]string, 0, len(u.Organizations))
	for _, org := range u.Organizations {
		names = append(names, org.Name)
	}
	orgs := "-"
	if len(names) > 0 {
		orgs = strings.Join(names, ", ")
	}
	return strings.Join([]string{
		"Name:          " + u.FullName(),
		"Email:         " + u.Email,
		"Phone:         " + phone,
		"Organizations: " + orgs,
	}, "\n")
}

func runProfileShow(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	user, err := app.Client.Me(ctx)
	if err != nil {
		return err
	}
	return cc.Print(ux.View{Data: user, Text: profileView(*user)})
}

func runProfileUpdate(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	user, err := app.Client.Me(ctx)
	if err != nil {
		return err
	}

	req := api.UpdateProfileRequest{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if user.PhoneNumber != nil {
		req.PhoneNumber = *user.PhoneNumber
	}

	flags := cmd.Flags()
	if flags.Changed("email") {
		req.Email, _ = flags.GetString("email")
	}
	if flags.Changed("first-name") {
		req.FirstName, _ = flags.GetString("first-name")
	}
	if flags.Changed("last-name") {
		req.LastName, _ = flags.GetString("last-name")
	}
	if flags.Changed("phone") {
		req.PhoneNumber, _ = flags.GetString("phone")
	}

	updated, err := app.Client.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	cc.Notice("Profile updated.")
	return cc.Print(ux.View{Data: updated, Text: profileView(*updated)})
}
