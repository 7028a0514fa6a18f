package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dealnotes/internal/app"
)

// FormatStatus renders the model check and the followup backlog.
func FormatStatus(resp *app.StatusResponse) string {
	var b strings.Builder

	model := StyleGreen.Render("● reachable")
	switch {
	case !resp.Model.Enabled:
		model = StyleDim.Render("○ disabled")
	case !resp.Model.Available:
		model = StyleRed.Render("✖ unreachable")
	}
	fmt.Fprintf(&b, "%s %s %s\n", Dim("Model:  "), Bold(resp.Model.Model), model)
	fmt.Fprintf(&b, "%s %s\n", Dim("Server: "), resp.Model.Endpoint)
	fmt.Fprintf(&b, "%s %s, %s\n\n", Dim("Clients:"),
		StyleGreen.Render(fmt.Sprintf("%d active", resp.ActiveClients)),
		Dim(fmt.Sprintf("%d inactive", resp.InactiveClients)))

	if len(resp.DueFollowups) == 0 {
		b.WriteString(Dim("No followups due.") + "\n")
	} else {
		headers := []string{"CLIENT", "DUE", "STAGE", "NEXT ACTION", "ID"}
		rows := make([][]string, 0, len(resp.DueFollowups))
		for _, d := range resp.DueFollowups {
			due := DueStyled(d.FollowupDate)
			rows = append(rows, []string{Bold(d.ClientName), due, d.DealStage, Truncate(d.NextAction, 40), TruncID(d.InteractionID)})
		}
		b.WriteString(RenderTable(headers, rows))
	}

	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range resp.Warnings {
			b.WriteString(StyleYellow.Render(fmt.Sprintf("  WARNING: %s", w)) + "\n")
		}
	}
	return RenderBox("Status", strings.TrimRight(b.String(), "\n"))
}
