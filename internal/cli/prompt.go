package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/agenda/internal/cli/formatter"
)

func agendaHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

// titleForm returns a single-field form collecting a required title.
func titleForm(label string, value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(label).
				Value(value).
				Validate(validateTitle),
		),
	).WithTheme(agendaHuhTheme()).
		WithShowHelp(false).
		WithProgramOptions(tea.WithOutput(os.Stderr))
}

func huhPromptTitle(label string) (string, error) {
	var value string
	if err := titleForm(label, &value).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// ensureTitle returns title, or prompts for one when it is empty and the
// terminal is interactive.
func ensureTitle(app *App, title, label string) (string, error) {
	if strings.TrimSpace(title) != "" {
		return title, nil
	}
	if !app.interactive() {
		return "", fmt.Errorf("%s is required (pass --title)", strings.ToLower(label))
	}
	prompt := app.PromptTitle
	if prompt == nil {
		prompt = huhPromptTitle
	}
	return prompt(label)
}
