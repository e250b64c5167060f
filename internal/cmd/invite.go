package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/ux"
)

var inviteCmd = &cobra.Command{
	Use:     "invite",
	Aliases: []string{"invites", "invitation"},
	Short:   "Manage organization invitations",
	Long: `List, inspect and answer invitations to join organizations.

Invitations are identified by the token shown in 'vendaa invite list' and in
the invitation email.

Examples:
  vendaa invite list
  vendaa invite list --type sent
  vendaa invite verify <token>
  vendaa invite accept <token>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var inviteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List received or sent invitations",
	RunE:  runE("invite.list", runInviteList),
}

var inviteVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Show the invitation behind a token",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublicE("invite.verify", runInviteVerify),
}

var inviteAcceptCmd = &cobra.Command{
	Use:   "accept <token>",
	Short: "Accept an invitation and join the organization",
	Args:  cobra.ExactArgs(1),
	RunE:  runE("invite.accept", runInviteAccept),
}

var inviteDeclineCmd = &cobra.Command{
	Use:   "decline <token>",
	Short: "Decline a received invitation",
	Args:  cobra.ExactArgs(1),
	RunE:  runE("invite.decline", inviteAction((*api.Client).DeclineInvitation, "Invitation declined.")),
}

var inviteCancelCmd = &cobra.Command{
	Use:   "cancel <token>",
	Short: "Withdraw a sent invitation",
	Args:  cobra.ExactArgs(1),
	RunE:  runE("invite.cancel", inviteAction((*api.Client).CancelInvitation, "Invitation cancelled.")),
}

func init() {
	inviteCmd.AddCommand(inviteListCmd)
	inviteCmd.AddCommand(inviteVerifyCmd)
	inviteCmd.AddCommand(inviteAcceptCmd)
	inviteCmd.AddCommand(inviteDeclineCmd)
	inviteCmd.AddCommand(inviteCancelCmd)

	inviteListCmd.Flags().String("type", api.InvitationsReceived, "received or sent")

	rootCmd.AddCommand(inviteCmd)
}

type invitationView api.Invitation

func (v invitationView) String() string {
	lines := []string{
		"Organization: " + v.OrganizationName,
		"Role:         " + v.Role,
		"Email:        " + v.Email,
		"Invited by:   " + inviter(api.Invitation(v)),
		"Status:       " + v.Status,
		"Expires:      " + v.ExpiresAt,
	}
	return strings.Join(lines, "\n")
}

func inviter(inv api.Invitation) string {
	if inv.SentByName == "" {
		return inv.SentByEmail
	}
	return fmt.Sprintf("%s <%s>", inv.SentByName, inv.SentByEmail)
}

func runInviteList(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	kind, _ := cmd.Flags().GetString("type")

	invites, err := app.Client.ListInvitations(ctx, kind)
	if err != nil {
		return err
	}

	table := ux.NewTable("TOKEN", "ORGANIZATION", "ROLE", "EMAIL", "FROM", "STATUS", "EXPIRES")
	table.Empty = "No invitations."
	for _, inv := range invites {
		table.Add(inv.Token, inv.OrganizationName, inv.Role, inv.Email, inviter(inv), inv.Status, inv.ExpiresAt)
	}
	if invites == nil {
		invites = []api.Invitation{}
	}
	return cc.Print(ux.View{Data: invites, Text: table})
}

func runInviteVerify(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	inv, err := app.Client.VerifyInvitation(ctx, args[0])
	if err != nil {
		return err
	}
	return cc.Print(ux.View{Data: inv, Text: invitationView(*inv)})
}

func runInviteAccept(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	res, err := app.Client.AcceptInvitation(ctx, args[0])
	if err != nil {
		return err
	}

	// Joining changes the membership list; reload so a first organization
	// becomes current.
	if err := app.loadOrganizations(ctx); err != nil {
		app.Logger.WithError(err).Warn("failed to reload organizations")
	}
	return cc.Print(ux.View{Data: res, Text: detailText(res, "Invitation accepted.")})
}

func inviteAction(action func(*api.Client, context.Context, string) (*api.Detail, error), done string) commandFunc {
	return func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}

		res, err := action(app.Client, ctx, args[0])
		if err != nil {
			return err
		}
		return cc.Print(ux.View{Data: res, Text: detailText(res, done)})
	}
}

// detailText prints the backend acknowledgement, or fallback when it is empty.
func detailText(d *api.Detail, fallback string) text {
	if d == nil || d.Detail == "" {
		return text(fallback)
	}
	return text(d.Detail)
}
