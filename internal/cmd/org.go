package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/api"
	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/organization"
	"github.com/vendaa/vendaa/internal/ux"
)

var orgCmd = &cobra.Command{
	Use:     "org",
	Aliases: []string{"organization"},
	Short:   "Manage organizations",
	Long: `List the organizations you belong to and choose the current one.

The current organization is remembered across invocations. Wallet and member
commands act on it unless --org is given.

Examples:
  vendaa org list
  vendaa org switch 3f2c9a4e-...
  vendaa org create --name "Acme Utilities"
  vendaa org members list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your organizations",
	RunE:  runE("org.list", runOrgList),
}

var orgCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current organization and its balance",
	RunE:  runE("org.current", runOrgCurrent),
}

var orgSwitchCmd = &cobra.Command{
	Use:   "switch <organization-id>",
	Short: "Make an organization current",
	Long: `Make an organization current and show its wallet balance. The id must be one
of the organizations listed by 'vendaa org list'.`,
	Args: cobra.ExactArgs(1),
	RunE: runE("org.switch", runOrgSwitch),
}

var orgCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an organization",
	RunE:  runE("org.create", runOrgCreate),
}

var orgUpdateCmd = &cobra.Command{
	Use:   "update [organization-id]",
	Short: "Rename an organization (defaults to the current one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runE("org.update", runOrgUpdate),
}

func init() {
	orgCmd.AddCommand(orgListCmd)
	orgCmd.AddCommand(orgCurrentCmd)
	orgCmd.AddCommand(orgSwitchCmd)
	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgUpdateCmd)

	orgCreateCmd.Flags().String("name", "", "Organization name (required)")
	orgCreateCmd.Flags().Bool("switch", false, "Make the new organization current")
	_ = orgCreateCmd.MarkFlagRequired("name")

	orgUpdateCmd.Flags().String("name", "", "New organization name (required)")
	_ = orgUpdateCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(orgCmd)
}

// orgList is the machine-readable form of 'org list'.
type orgList struct {
	Selected      string             `json:"selected,omitempty" yaml:"selected,omitempty"`
	Organizations []api.Organization `json:"organizations" yaml:"organizations"`
}

// current is the machine-readable form of 'org current' and 'wallet balance'.
type current struct {
	Organization *api.Organization `json:"organization" yaml:"organization"`
	// Balance is null when the wallet could not be read.
	Balance *string `json:"balance" yaml:"balance"`
}

func (c current) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Organization: %s (%s)\n", c.Organization.Name, c.Organization.UUID)
	fmt.Fprintf(&b, "Balance:      %s", ux.FormatBalance(c.Balance))
	return b.String()
}

func currentOf(snap organization.Snapshot) (current, error) {
	if !snap.HasOrganizations() {
		if snap.Err != nil {
			return current{}, snap.Err
		}
		return current{}, errors.NewNoOrganizationError()
	}
	return current{Organization: snap.Selected, Balance: snap.Balance}, nil
}

// resolveOrganization returns orgID if set, otherwise the current organization.
func (a *App) resolveOrganization(ctx context.Context, orgID string) (string, error) {
	if orgID != "" {
		return orgID, nil
	}
	if err := a.loadOrganizations(ctx); err != nil {
		return "", err
	}
	snap := a.Orgs.Snapshot()
	if !snap.HasOrganizations() {
		return "", errors.NewNoOrganizationError()
	}
	return snap.SelectedID(), nil
}

func runOrgList(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := app.loadOrganizations(ctx); err != nil {
		return err
	}

	snap := app.Orgs.Snapshot()
	selected := snap.SelectedID()

	table := ux.NewTable("", "ID", "NAME", "ROLE", "CREATED")
	table.Empty = "You do not belong to any organization yet.\nCreate one with 'vendaa org create --name <name>'."
	for _, org := range snap.Organizations {
		marker := ""
		if org.UUID == selected {
			marker = "*"
		}
		table.Add(marker, org.UUID, org.Name, org.Role, org.Created)
	}

	data := orgList{Selected: selected, Organizations: snap.Organizations}
	if data.Organizations == nil {
		data.Organizations = []api.Organization{}
	}
	return cc.Print(ux.View{Data: data, Text: table})
}

func runOrgCurrent(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := app.loadOrganizations(ctx); err != nil {
		return err
	}

	cur, err := currentOf(app.Orgs.Snapshot())
	if err != nil {
		return err
	}
	return cc.Print(ux.View{Data: cur, Text: cur})
}

func runOrgSwitch(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := app.loadOrganizations(ctx); err != nil {
		return err
	}

	if !app.Orgs.Switch(ctx, args[0]) {
		return errors.NewOrganizationNotFoundError(args[0])
	}
	app.Orgs.Wait()

	cur, err := currentOf(app.Orgs.Snapshot())
	if err != nil {
		return err
	}
	cc.Notice("Switched to %s.", cur.Organization.Name)
	return cc.Print(ux.View{Data: cur, Text: cur})
}

func runOrgCreate(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	switchTo, _ := cmd.Flags().GetBool("switch")

	org, err := app.Client.CreateOrganization(ctx, api.OrganizationRequest{Name: name})
	if err != nil {
		return err
	}
	cc.Notice("Organization %s created.", org.Name)

	// Reload so the new organization is known to the coordinator; the first
	// organization of an account becomes current automatically.
	if err := app.loadOrganizations(ctx); err != nil {
		return err
	}
	if switchTo && app.Orgs.Switch(ctx, org.UUID) {
		app.Orgs.Wait()
		cc.Notice("Switched to %s.", org.Name)
	}

	return cc.Print(ux.View{Data: org, Text: text(fmt.Sprintf("ID:   %s\nName: %s", org.UUID, org.Name))})
}

func runOrgUpdate(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")

	var orgID string
	if len(args) == 1 {
		orgID = args[0]
	}
	orgID, err = app.resolveOrganization(ctx, orgID)
	if err != nil {
		return err
	}

	org, err := app.Client.UpdateOrganization(ctx, orgID, api.OrganizationRequest{Name: name})
	if err != nil {
		return err
	}
	cc.Notice("Organization renamed to %s.", org.Name)
	return cc.Print(ux.View{Data: org, Text: text(fmt.Sprintf("ID:   %s\nName: %s", org.UUID, org.Name))})
}
