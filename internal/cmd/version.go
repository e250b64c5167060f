package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vendaa/vendaa/internal/ux"
	"github.com/vendaa/vendaa/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	RunE: runVersion,
}

var (
	versionVerbose bool
	versionJSON    bool
)

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "show detailed version information")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output version information as JSON")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	info := version.GetInfo()

	if versionJSON {
		cc.Format = "json"
	}
	if cc.Structured() {
		return cc.Print(info)
	}

	if versionVerbose {
		fmt.Fprintln(cc.Out, ux.Styles.Title.Render("vendaa")+"  prepaid utility vending")
		fmt.Fprintln(cc.Out, info.String())
		return nil
	}

	fmt.Fprintf(cc.Out, "vendaa %s\n", info.Version)
	return nil
}
