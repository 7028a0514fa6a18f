package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBar(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		width  int
		filled int
		label  string
	}{
		{"no match", 0, 10, 0, "  0%"},
		{"partial", 50, 10, 5, " 50%"},
		{"exact", 100, 10, 10, "100%"},
		{"over clamps", 150, 4, 4, "100%"},
		{"negative clamps", -20, 4, 0, "  0%"},
		{"tiny width", 50, 1, 1, " 50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchBar(tt.score, tt.width)
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.True(t, strings.HasSuffix(got, tt.label), got)
		})
	}
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable(
		[]string{"NAME", "STAGE"},
		[][]string{{"Dana", StageBadge("negotiation")}, {"Evan Cole"}},
	))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4, out)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "─")
	assert.Equal(t, strings.Index(lines[0], "STAGE"), strings.Index(lines[2], "●"), out)
	assert.Empty(t, RenderTable(nil, nil))
}
