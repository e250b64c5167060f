package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vendaa/vendaa/internal/config"
	"github.com/vendaa/vendaa/internal/ux"
)

// CommandContext holds the output settings of one command invocation.
type CommandContext struct {
	// Output control
	Format  string
	NoColor bool

	Out io.Writer
	Err io.Writer
}

// NewCommandContext extracts output settings from the flags and the loaded
// configuration. Commands call it in their RunE:
//
//	cc, err := NewCommandContext(cmd)
//	if err != nil {
//		return err
//	}
//	return cc.Print(view)
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}
	if os.Getenv("NO_COLOR") != "" {
		noColor = true
	}

	return &CommandContext{
		Format:  viper.GetString(config.KeyOutputFormat),
		NoColor: noColor,
		Out:     cmd.OutOrStdout(),
		Err:     cmd.ErrOrStderr(),
	}, nil
}

// Structured reports whether output is machine-readable.
func (c *CommandContext) Structured() bool {
	return c.Format == "json" || c.Format == "yaml"
}

// Print renders v with the configured formatter.
func (c *CommandContext) Print(v any) error {
	formatter, err := ux.NewFormatter(c.Format, &ux.FormatterOptions{
		Writer:  c.Out,
		NoColor: c.NoColor,
	})
	if err != nil {
		return err
	}
	return formatter.Format(v)
}

// Notice writes a human-readable status line. It is suppressed for json and
// yaml output so stdout stays parseable.
func (c *CommandContext) Notice(format string, args ...any) {
	if c.Structured() {
		return
	}
	line := fmt.Sprintf(format, args...)
	if !c.NoColor {
		line = ux.Styles.Success.Render(line)
	}
	fmt.Fprintln(c.Out, line)
}

// text adapts a string to fmt.Stringer for ux.View.
type text string

func (t text) String() string { return string(t) }
