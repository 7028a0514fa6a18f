package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorDim).
	Padding(1, 2)

// RenderBox frames content in a rounded border, titled when title is set.
func RenderBox(title, content string) string {
	if title == "" {
		return boxStyle.Render(content)
	}
	return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
}

func ActivePill(active bool) string {
	if !active {
		return StyleDim.Render("✖ Inactive")
	}
	return StyleGreen.Render("● Active")
}

// TruncID keeps the first block of a UUID, which is what resolve accepts as
// a prefix.
func TruncID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		id = id[:i]
	} else if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Truncate collapses whitespace and cuts s to n runes with a trailing
// ellipsis. n <= 0 disables the cut.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}
