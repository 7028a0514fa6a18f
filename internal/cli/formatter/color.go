package formatter

import (
	"strings"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Palette colors adapt to the terminal background: gruvbox dark tones on
// dark terminals, their gruvbox light counterparts otherwise.
var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#427b58", Dark: "#8ec07c"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#b57614", Dark: "#fabd2f"}
	ColorRed    = lipgloss.AdaptiveColor{Light: "#9d0006", Dark: "#fb4934"}
	ColorBlue   = lipgloss.AdaptiveColor{Light: "#076678", Dark: "#83a598"}
	ColorPurple = lipgloss.AdaptiveColor{Light: "#8f3f71", Dark: "#d3869b"}
	ColorDim    = lipgloss.AdaptiveColor{Light: "#7c6f64", Dark: "#928374"}
	ColorFg     = lipgloss.AdaptiveColor{Light: "#3c3836", Dark: "#ebdbb2"}
	ColorHeader = lipgloss.AdaptiveColor{Light: "#af3a03", Dark: "#fe8019"}
)

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	StyleGreen  = fg(ColorGreen)
	StyleYellow = fg(ColorYellow)
	StyleRed    = fg(ColorRed)
	StyleBlue   = fg(ColorBlue)
	StylePurple = fg(ColorPurple)
	StyleDim    = fg(ColorDim)
	StyleFg     = fg(ColorFg)
	StyleHeader = fg(ColorHeader).Bold(true)
	StyleBold   = fg(ColorFg).Bold(true)
)

// StageColor returns the style for a deal stage: won deals green, lost red,
// late-pipeline stages yellow, everything else blue.
func StageColor(stage domain.DealStage) lipgloss.Style {
	switch stage {
	case domain.StageClosedWon:
		return StyleGreen
	case domain.StageClosedLost:
		return StyleRed
	case domain.StageProposal, domain.StageNegotiation:
		return StyleYellow
	case domain.StageUnknown:
		return StyleDim
	default:
		return StyleBlue
	}
}

// StageBadge renders a stage label such as "● Negotiation".
func StageBadge(stage domain.DealStage) string {
	if stage == "" {
		return StyleDim.Render("● --")
	}
	return StageColor(stage).Render("● " + stage.Label())
}

var interestGauge = map[domain.InterestLevel]struct {
	style lipgloss.Style
	bars  int
	label string
}{
	domain.InterestHigh:   {StyleGreen, 3, "High"},
	domain.InterestMedium: {StyleYellow, 2, "Medium"},
	domain.InterestLow:    {StyleRed, 1, "Low"},
}

// InterestIndicator renders interest as a three-step gauge, e.g. "▮▮▯ Medium".
func InterestIndicator(level domain.InterestLevel) string {
	g, ok := interestGauge[level]
	if !ok {
		return StyleDim.Render("▯▯▯ --")
	}
	return g.style.Render(strings.Repeat("▮", g.bars) + strings.Repeat("▯", 3-g.bars) + " " + g.label)
}

// Header upper-cases text and underlines it to its display width.
func Header(text string) string {
	title := strings.ToUpper(text)
	return StyleHeader.Render(title) + "\n" + StyleDim.Render(strings.Repeat("─", lipgloss.Width(title)))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
