package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(vendaa completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ vendaa completion bash > /etc/bash_completion.d/vendaa
  # macOS:
  $ vendaa completion bash > $(brew --prefix)/etc/bash_completion.d/vendaa

Zsh:
  $ vendaa completion zsh > "${fpath[1]}/_vendaa"

Fish:
  $ vendaa completion fish > ~/.config/fish/completions/vendaa.fish

PowerShell:
  PS> vendaa completion powershell | Out-String | Invoke-Expression

Organization ids complete for 'org switch', 'org update' and --org once you
are logged in.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)

	orgSwitchCmd.ValidArgsFunction = completeOrganizationIDs
	orgUpdateCmd.ValidArgsFunction = completeOrganizationIDs
	_ = membersCmd.RegisterFlagCompletionFunc("org", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeOrganizationIDs(cmd, nil, toComplete)
	})
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
	return nil
}

// completeOrganizationIDs offers "id<TAB>name" for the user's organizations.
// Completion never runs the root setup, so configuration is loaded here.
func completeOrganizationIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if _, err := loadConfig(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	app, err := newApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	if !app.Session.IsAuthenticated() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	user, err := app.Client.Me(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	ids := make([]string, 0, len(user.Organizations))
	for _, org := range user.Organizations {
		ids = append(ids, org.UUID+"\t"+org.Name)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
