package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// ImportFile is the top-level JSON structure for bulk loading clients and
// their past interactions, typically exported from another CRM.
type ImportFile struct {
	Clients []ClientImport `json:"clients"`
}

// ClientImport defines one client and the history recorded for it.
type ClientImport struct {
	Ref          string              `json:"ref,omitempty"`
	Name         string              `json:"name"`
	Company      string              `json:"company,omitempty"`
	Email        string              `json:"email,omitempty"`
	Active       *bool               `json:"active,omitempty"`
	Interactions []InteractionImport `json:"interactions,omitempty"`
}

// key is how the result refers back to this client: its ref, or its
// trimmed name when no ref was given.
func (c ClientImport) key() string {
	if c.Ref != "" {
		return c.Ref
	}
	return strings.TrimSpace(c.Name)
}

// active defaults to true when the file does not say.
func (c ClientImport) active() bool {
	return c.Active == nil || *c.Active
}

// InteractionImport is an already-structured interaction record. Imported
// records skip extraction, so every field the extractor would produce must
// be present.
type InteractionImport struct {
	Date          string   `json:"date"`
	RawText       string   `json:"raw_text,omitempty"`
	Summary       string   `json:"summary"`
	DealStage     string   `json:"deal_stage"`
	Objections    []string `json:"objections,omitempty"`
	InterestLevel string   `json:"interest_level"`
	NextAction    string   `json:"next_action"`
	FollowupDate  *string  `json:"followup_date,omitempty"`
}

// LoadImportFile reads and parses an import file from disk.
func LoadImportFile(path string) (*ImportFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseImportFile(f)
}

// ParseImportFile decodes an import file. Unknown keys are rejected so a
// misspelled field does not silently drop data.
func ParseImportFile(r io.Reader) (*ImportFile, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var file ImportFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &file, nil
}
