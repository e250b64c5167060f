package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/vendaa/vendaa/internal/errors"
)

// RenderError formats err for the terminal. Coded errors show their code,
// cause, suggestions and documentation link. color enables lipgloss styling.
func RenderError(err error, color bool) string {
	if err == nil {
		return ""
	}

	style := func(s string) string {
		if color {
			return Styles.Error.Render(s)
		}
		return s
	}
	muted := func(s string) string {
		if color {
			return Styles.Muted.Render(s)
		}
		return s
	}

	var b strings.Builder

	var vErr *errors.VendaaError
	if stderrors.As(err, &vErr) {
		b.WriteString(style(fmt.Sprintf("Error [%s]:", vErr.Code)))
		b.WriteString(" ")
		b.WriteString(vErr.Message)
		if vErr.Cause != nil {
			b.WriteString("\n  ")
			b.WriteString(muted(vErr.Cause.Error()))
		}
		if len(vErr.Suggestions) > 0 {
			b.WriteString("\n\nSuggestions:")
			for _, s := range vErr.Suggestions {
				b.WriteString("\n  • ")
				b.WriteString(s)
			}
		}
		if vErr.DocsURL != "" {
			b.WriteString("\n\nDocumentation: ")
			b.WriteString(vErr.DocsURL)
		}
		return b.String()
	}

	b.WriteString(style("Error:"))
	b.WriteString(" ")
	b.WriteString(err.Error())
	return b.String()
}
