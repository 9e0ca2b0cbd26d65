package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hpungsan/shelldash/internal/dashboard"
	"github.com/hpungsan/shelldash/internal/shell"
)

const replPrompt = "shelldash> "

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// runREPL reads commands line by line until exit, quit, EOF or ctx is done.
func runREPL(ctx context.Context, d *dashboard.Dashboard, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, dimStyle.Render("Type 'help' for commands, 'exit' to leave."))

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, promptStyle.Render(replPrompt))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		case "":
			continue
		}

		if text := formatResult(d.Command(ctx, line)); text != "" {
			fmt.Fprintln(out, text)
		}
	}
}

// formatResult renders a command result for the terminal.
func formatResult(r shell.Result) string {
	if r.Kind == shell.KindText {
		return r.Text
	}
	label := "open " + string(r.Panel)
	if r.Title != nil {
		label += ": " + *r.Title
	}
	return actionStyle.Render(label)
}
