package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dealnotes/internal/repository"
)

// resolveClientID accepts a full client ID or an unambiguous prefix of one,
// as shown in listings.
func resolveClientID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("client ID is required")
	}

	clients, err := app.Clients.List(ctx, true)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, c := range clients {
		if c.ID == input {
			return c.ID, nil
		}
		if strings.HasPrefix(c.ID, input) {
			matches = append(matches, c.ID)
		}
	}
	return pickMatch("client", input, matches)
}

// resolveInteractionID accepts a full interaction ID or an unambiguous
// prefix of a current one.
func resolveInteractionID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("interaction ID is required")
	}
	if _, err := app.History.Interaction(ctx, input); err == nil {
		return input, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	clients, err := app.Clients.List(ctx, true)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, c := range clients {
		entries, err := app.History.Timeline(ctx, c.ID)
		if err != nil {
			return "", err
		}
		for _, e := range entries {
			if strings.HasPrefix(e.InteractionID, input) {
				matches = append(matches, e.InteractionID)
			}
		}
	}
	return pickMatch("interaction", input, matches)
}

func pickMatch(kind, input string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, input, repository.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}
