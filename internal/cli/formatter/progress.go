package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dealnotes/internal/service"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// MatchBar renders a 0-100 similarity score as a bar like ████░░ 72%.
// Scores at or above the duplicate cutoff show red.
func MatchBar(score float64, width int) string {
	score = min(max(score, 0), 100)
	width = max(width, 2)

	filled := int(score / 100 * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleDim
	switch {
	case score >= service.DuplicateThreshold:
		style = StyleRed
	case score >= 60:
		style = StyleYellow
	}
	return fmt.Sprintf("%s %3.0f%%", style.Render(bar), score)
}
