package domain

import (
	"fmt"
	"strings"
	"time"
)

type Client struct {
	ID        string
	Name      string
	Company   string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the field limits enforced by the client forms.
func (c *Client) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("client name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("client name must be at most 100 characters")
	}
	if len(c.Company) > 100 {
		return fmt.Errorf("company must be at most 100 characters")
	}
	if len(c.Email) > 100 {
		return fmt.Errorf("email must be at most 100 characters")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("email %q is not a valid address", c.Email)
	}
	return nil
}

// DisplayName returns "Name (Company)" or just the name when no company is set.
func (c *Client) DisplayName() string {
	if c.Company == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Company)
}
