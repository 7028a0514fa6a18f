package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/dealnotes/internal/domain"
)

// DuplicateMatch is one existing client that resembles a new one.
type DuplicateMatch struct {
	Client     *domain.Client
	Score      float64
	EmailMatch bool
}

func FormatClientList(clients []*domain.Client) string {
	if len(clients) == 0 {
		return Dim("No clients yet. Add one with: dealnotes client add --name \"Dana Whitfield\"") + "\n"
	}
	headers := []string{"ID", "NAME", "COMPANY", "EMAIL", "STATUS", "ADDED"}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			TruncID(c.ID),
			Bold(c.Name),
			orDash(c.Company),
			orDash(c.Email),
			ActivePill(c.Active),
			Dim(ShortDate(c.CreatedAt)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatClient renders a client card with its headline stats.
func FormatClient(c *domain.Client, stats *domain.ClientStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(c.Name), ActivePill(c.Active))
	fmt.Fprintf(&b, "%s %s\n", Dim("ID:      "), c.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("Company: "), orDash(c.Company))
	fmt.Fprintf(&b, "%s %s\n", Dim("Email:   "), orDash(c.Email))
	fmt.Fprintf(&b, "%s %s\n", Dim("Added:   "), ShortDate(c.CreatedAt))

	if stats != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %d\n", Dim("Interactions:"), stats.TotalInteractions)
		if stats.FirstContact != nil {
			fmt.Fprintf(&b, "%s %s\n", Dim("First contact:"), ShortDate(*stats.FirstContact))
		}
		if stats.LastContact != nil {
			fmt.Fprintf(&b, "%s %s\n", Dim("Last contact: "), Due(*stats.LastContact))
		}
		if len(stats.StagesSeen) > 0 {
			badges := make([]string, 0, len(stats.StagesSeen))
			for _, st := range stats.StagesSeen {
				badges = append(badges, StageBadge(st))
			}
			fmt.Fprintf(&b, "%s %s\n", Dim("Stages:       "), strings.Join(badges, Dim(" → ")))
		}
	}
	return RenderBox("Client", strings.TrimRight(b.String(), "\n"))
}

// FormatDuplicates explains why a new client was not created.
func FormatDuplicates(name string, matches []DuplicateMatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s looks like an existing client:\n\n", Bold(name))
	headers := []string{"ID", "NAME", "COMPANY", "MATCH"}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		match := MatchBar(m.Score, 10)
		if m.EmailMatch {
			match = StyleRed.Render("same email")
		}
		rows = append(rows, []string{TruncID(m.Client.ID), m.Client.Name, orDash(m.Client.Company), match})
	}
	b.WriteString(RenderTable(headers, rows))
	b.WriteString("\n" + Dim("Re-run with --force to add it anyway.") + "\n")
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return s
}

// FormatImportResult summarizes a bulk import, listing the ID each client
// ref was stored under.
func FormatImportResult(clients, interactions int, refs map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d client(s), %d interaction(s)\n", StyleGreen.Render("Imported"), clients, interactions)
	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s %s\n", Bold(k), Dim(refs[k]))
	}
	return b.String()
}
