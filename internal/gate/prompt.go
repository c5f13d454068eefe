package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/lines"
)

// TerminalPrompter asks on a line-oriented terminal. An empty answer means yes.
type TerminalPrompter struct {
	in    *lines.Reader
	out   io.Writer
	style lipgloss.Style
}

func NewTerminalPrompter(in *lines.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:    in,
		out:   out,
		style: lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
	}
}

// ConfirmSignIn reads one answer. If ctx ends first the answer is left for
// the next reader of the terminal.
func (p *TerminalPrompter) ConfirmSignIn(ctx context.Context, action string) (bool, error) {
	fmt.Fprint(p.out, p.style.Render(fmt.Sprintf("Sign in to %s? [Y/n] ", action)))

	line, err := p.in.ReadLine(ctx)
	if err != nil && err == ctx.Err() {
		return false, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
