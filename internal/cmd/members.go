package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/ux"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage organization members",
	Long: `List and manage the members of an organization. Commands act on the current
organization unless --org is given.

Examples:
  vendaa org members list
  vendaa org members add --email bola@example.com --role admin
  vendaa org members role <member-id> --role member
  vendaa org members remove <member-id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members",
	RunE:  runE("members.list", runMembersList),
}

var membersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a member by email",
	RunE:  runE("members.add", runMembersAdd),
}

var membersRoleCmd = &cobra.Command{
	Use:   "role <member-id>",
	Short: "Change a member's role",
	Args:  cobra.ExactArgs(1),
	RunE:  runE("members.role", runMembersRole),
}

var membersRemoveCmd = &cobra.Command{
	Use:   "remove <member-id>",
	Short: "Remove a member",
	Args:  cobra.ExactArgs(1),
	RunE:  runE("members.remove", runMembersRemove),
}

func init() {
	membersCmd.AddCommand(membersListCmd)
	membersCmd.AddCommand(membersAddCmd)
	membersCmd.AddCommand(membersRoleCmd)
	membersCmd.AddCommand(membersRemoveCmd)

	membersCmd.PersistentFlags().String("org", "", "Organization id (defaults to the current organization)")

	membersAddCmd.Flags().String("email", "", "Email of the user to add (required)")
	membersAddCmd.Flags().String("role", api.RoleMember, "Role: admin or member")
	_ = membersAddCmd.MarkFlagRequired("email")

	membersRoleCmd.Flags().String("role", "", "Role: owner, admin or member (required)")
	_ = membersRoleCmd.MarkFlagRequired("role")

	orgCmd.AddCommand(membersCmd)
}

func membersOrg(ctx context.Context, cmd *cobra.Command, app *App) (string, error) {
	orgID, _ := cmd.Flags().GetString("org")
	return app.resolveOrganization(ctx, orgID)
}

func runMembersList(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	orgID, err := membersOrg(ctx, cmd, app)
	if err != nil {
		return err
	}

	members, err := app.Client.ListMembers(ctx, orgID)
	if err != nil {
		return err
	}

	table := ux.NewTable("ID", "EMAIL", "NAME", "ROLE", "JOINED")
	table.Empty = "No members."
	for _, m := range members {
		name := api.User{FirstName: m.User.FirstName, LastName: m.User.LastName}.FullName()
		table.Add(m.UUID, m.User.Email, name, m.Role, m.JoinedAt)
	}
	if members == nil {
		members = []api.Member{}
	}
	return cc.Print(ux.View{Data: members, Text: table})
}

func runMembersAdd(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	orgID, err := membersOrg(ctx, cmd, app)
	if err != nil {
		return err
	}

	req := api.AddMemberRequest{}
	req.Email, _ = cmd.Flags().GetString("email")
	req.Role, _ = cmd.Flags().GetString("role")

	res, err := app.Client.AddMember(ctx, orgID, req)
	if err != nil {
		return err
	}
	return cc.Print(ux.View{Data: res, Text: text(fmt.Sprintf("Added %s as %s.", req.Email, res.Role))})
}

func runMembersRole(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	orgID, err := membersOrg(ctx, cmd, app)
	if err != nil {
		return err
	}

	role, _ := cmd.Flags().GetString("role")
	res, err := app.Client.UpdateMemberRole(ctx, orgID, args[0], api.UpdateMemberRoleRequest{Role: role})
	if err != nil {
		return err
	}
	return cc.Print(ux.View{Data: res, Text: text(fmt.Sprintf("Role changed to %s.", res.Role))})
}

func runMembersRemove(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	orgID, err := membersOrg(ctx, cmd, app)
	if err != nil {
		return err
	}

	if err := app.Client.RemoveMember(ctx, orgID, args[0]); err != nil {
		return err
	}
	cc.Notice("Member removed.")
	return nil
}
