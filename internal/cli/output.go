package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func printOK(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

// printNotice reports a failed manual action.
func printNotice(w io.Writer, err error) {
	fmt.Fprintln(w, noticeStyle.Render(errs.Notice(err)))
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orDash(s string) string {
	if s == "" {
		return dimStyle.Render("-")
	}
	return s
}
