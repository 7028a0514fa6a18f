package cli

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// dealnotesHuhTheme matches forms to the formatter palette: the header
// orange marks the focused field and everything blurred is dimmed.
func dealnotesHuhTheme() *huh.Theme {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	accent, text, dim := fg(formatter.ColorHeader), fg(formatter.ColorFg), fg(formatter.ColorDim)

	t := huh.ThemeBase()

	f := &t.Focused
	f.Title = accent.Bold(true)
	f.SelectSelector, f.TextInput.Cursor, f.TextInput.Prompt = accent, accent, accent
	f.SelectedOption = fg(formatter.ColorGreen)
	f.UnselectedOption, f.TextInput.Text = text, text
	f.Description, f.TextInput.Placeholder = dim, dim
	f.ErrorIndicator, f.ErrorMessage = fg(formatter.ColorRed), fg(formatter.ColorRed)
	f.FocusedButton = text.Background(formatter.ColorHeader).Padding(0, 1)
	f.BlurredButton = dim.Padding(0, 1)

	b := &t.Blurred
	b.Title, b.SelectSelector, b.SelectedOption, b.UnselectedOption = dim, dim, dim, dim
	b.TextInput.Prompt, b.TextInput.Text = dim, dim

	return t
}

// clientForm collects the fields of a new client.
func clientForm(name, company, email *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Client name").
				Placeholder("Dana Whitfield").
				Value(name).
				Validate(validateName),
			huh.NewInput().
				Title("Company (optional)").
				Value(company),
			huh.NewInput().
				Title("Email (optional)").
				Value(email).
				Validate(validateOptionalEmail),
		),
	).WithTheme(dealnotesHuhTheme()).WithShowHelp(false)
}

// conversationForm collects free-form conversation notes.
func conversationForm(clientName string, text *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Conversation with " + clientName).
				Description("Paste or type your notes. Ctrl+J for a new line, Enter to submit.").
				CharLimit(20000).
				Lines(10).
				Value(text).
				Validate(validateConversation),
		),
	).WithTheme(dealnotesHuhTheme()).WithShowHelp(false)
}

func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(dealnotesHuhTheme()).WithShowHelp(false)
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("a name is required")
	}
	return nil
}

func validateOptionalEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func validateConversation(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < domain.MinRawTextLen {
		return fmt.Errorf("notes must be at least %d characters", domain.MinRawTextLen)
	}
	return nil
}
