// Package ui holds the terminal presentation layer: plan rendering, status
// lines, and the confirmation gate in front of destructive batches.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/modsync/pkg/logging"
	"github.com/arthur-debert/modsync/pkg/reconcile"
)

var (
	nameStyle   = lipgloss.NewStyle().Bold(true)
	idStyle     = lipgloss.NewStyle().Faint(true)
	reasonStyle = lipgloss.NewStyle().Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Setup adjusts color output to the terminal's capabilities. Honors
// NO_COLOR and dumb terminals.
func Setup() {
	if termenv.EnvNoColor() || termenv.ColorProfile() == termenv.Ascii || !Interactive() {
		pterm.DisableColor()
	}
}

// Interactive reports whether stdout is a terminal.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Confirm gates a destructive or time-consuming batch on an affirmative
// answer. assumeYes bypasses the prompt; a non-interactive run without it
// declines, which callers treat as a clean no-op exit.
func Confirm(prompt string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !Interactive() {
		logger := logging.GetLogger("ui")
		logger.Warn().Msg("Not a terminal and --yes not given, declining")
		return false, nil
	}
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(prompt)
}

// RenderPlan formats the download schedule for review before confirmation.
func RenderPlan(plan *reconcile.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", headerStyle.Render(
		fmt.Sprintf("%d to download, %d already in sync", len(plan.Download), len(plan.Skipped))))

	for _, d := range plan.Download {
		fmt.Fprintf(&b, "  %s %s\n      %s\n",
			nameStyle.Render(d.DisplayName()),
			idStyle.Render("("+d.ID+")"),
			reasonStyle.Render(d.Reason))
	}

	if len(plan.Missing) > 0 {
		fmt.Fprintf(&b, "%s\n", headerStyle.Render(
			fmt.Sprintf("%d items could not be resolved remotely", len(plan.Missing))))
		for _, m := range plan.Missing {
			fmt.Fprintf(&b, "  %s result code %d\n", idStyle.Render(m.ID), m.Result)
		}
	}

	return b.String()
}

// Printf writes a plain progress line to stdout.
func Printf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Success prints a green success line.
func Success(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// Failure prints a red failure line.
func Failure(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
}
