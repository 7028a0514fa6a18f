package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks caller mistakes such as blank names or text too
	// short to extract from.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClientInactive is returned when ingesting for a soft-deleted client.
	ErrClientInactive = errors.New("client is inactive")

	// ErrSuperseded is returned when re-extracting, or regenerating the
	// followup of, a record that already has a newer version.
	ErrSuperseded = errors.New("interaction has been superseded")
)

// DuplicateClientError lists existing clients that look like the one being
// created. Retry with force to create it anyway.
type DuplicateClientError struct {
	Candidates []DuplicateCandidate
}

func (e *DuplicateClientError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, fmt.Sprintf("%s (%.0f%%)", c.Client.DisplayName(), c.Score))
	}
	return "possible duplicate client: " + strings.Join(names, ", ")
}

// ImportError lists every problem found in an import file. It matches
// ErrInvalidInput.
type ImportError struct {
	Problems []string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import validation failed (%d errors):\n  - %s", len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

func (e *ImportError) Unwrap() error { return ErrInvalidInput }
