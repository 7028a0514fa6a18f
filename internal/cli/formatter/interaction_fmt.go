package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/domain"
)

const dateOnly = "2006-01-02"

// FormatInteraction renders the structured fields of one record.
func FormatInteraction(rec *domain.InteractionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", StageBadge(rec.DealStage), InterestIndicator(rec.InterestLevel))
	if rec.Version > 1 {
		fmt.Fprintf(&b, "  %s", StylePurple.Render(fmt.Sprintf("v%d", rec.Version)))
	}
	b.WriteString("\n\n")
	b.WriteString(rec.Summary + "\n\n")

	fmt.Fprintf(&b, "%s %s\n", Dim("Date:       "), rec.Date.Local().Format("Jan 2, 2006 15:04"))
	fmt.Fprintf(&b, "%s %s\n", Dim("Next action:"), rec.NextAction)
	if rec.FollowupDate != nil {
		fmt.Fprintf(&b, "%s %s %s\n", Dim("Follow up:  "), rec.FollowupDate.Format(dateOnly),
			Dim("("+Due(*rec.FollowupDate)+")"))
	}
	if len(rec.Objections) > 0 {
		fmt.Fprintf(&b, "%s\n", Dim("Objections: "))
		for _, o := range rec.Objections {
			fmt.Fprintf(&b, "  %s %s\n", StyleRed.Render("•"), o)
		}
	}
	fmt.Fprintf(&b, "\n%s %s", Dim("ID:"), Dim(rec.ID))
	if rec.SupersedesID != "" {
		fmt.Fprintf(&b, "\n%s %s", Dim("Supersedes:"), Dim(rec.SupersedesID))
	}
	return RenderBox("Interaction", b.String())
}

// FormatFollowup renders both drafted channels.
func FormatFollowup(fc *domain.FollowupContent) string {
	var b strings.Builder
	b.WriteString(Header("Email") + "\n")
	b.WriteString(fc.EmailText + "\n\n")
	b.WriteString(Header("Message") + "\n")
	b.WriteString(fc.MessageText + "\n")
	b.WriteString(Dim(fmt.Sprintf("%d characters", len([]rune(fc.MessageText)))))
	return RenderBox("Followup", b.String())
}

// FormatIngestResult renders a pipeline run. A partial result shows the saved
// record plus a warning naming the followup failure.
func FormatIngestResult(res *app.IngestResult) string {
	var b strings.Builder
	if n := len(res.History.Items); n > 0 {
		note := fmt.Sprintf("Used %d earlier interaction(s) as context", n)
		if res.History.Truncated > 0 {
			note += fmt.Sprintf(", %d older left out", res.History.Truncated)
		}
		b.WriteString(Dim(note) + "\n")
	} else {
		b.WriteString(Dim("First interaction with this client") + "\n")
	}
	b.WriteString(FormatInteraction(res.Interaction) + "\n")

	switch {
	case res.Followup != nil:
		b.WriteString(FormatFollowup(res.Followup) + "\n")
	case res.FollowupErr != nil:
		b.WriteString(StyleYellow.Render("WARNING: interaction saved, but the followup could not be generated") + "\n")
		b.WriteString(Dim("  "+res.FollowupErr.Error()) + "\n")
		b.WriteString(Dim("  Retry with: dealnotes followup regenerate "+res.Interaction.ID) + "\n")
	}
	return b.String()
}

// FormatTimeline renders a client's current interactions, oldest first.
func FormatTimeline(c *domain.Client, entries []domain.TimelineEntry) string {
	var b strings.Builder
	b.WriteString(Header(c.DisplayName()) + "\n")
	if len(entries) == 0 {
		b.WriteString(Dim("No interactions recorded yet.") + "\n")
		return b.String()
	}
	headers := []string{"ID", "DATE", "STAGE", "INTEREST", "SUMMARY", "NEXT", "F/U"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		fu := Dim("--")
		if e.HasFollowup {
			fu = StyleGreen.Render("✔")
		}
		next := e.NextAction
		if e.FollowupDate != nil {
			next += " " + Dim("("+e.FollowupDate.Format(dateOnly)+")")
		}
		rows = append(rows, []string{
			TruncID(e.InteractionID),
			e.Date.Local().Format(dateOnly),
			StageBadge(e.DealStage),
			InterestIndicator(e.InterestLevel),
			Truncate(e.Summary, 48),
			next,
			fu,
		})
	}
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

// FormatTimelineDetail renders every entry in full for the scrollable viewer.
func FormatTimelineDetail(entries []domain.TimelineEntry) string {
	if len(entries) == 0 {
		return Dim("No interactions recorded yet.")
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString(Dim(strings.Repeat("─", 40)) + "\n")
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", Bold(e.Date.Local().Format("Jan 2, 2006")), StageBadge(e.DealStage), InterestIndicator(e.InterestLevel))
		b.WriteString(e.Summary + "\n")
		fmt.Fprintf(&b, "%s %s\n", Dim("Next:"), e.NextAction)
		if e.FollowupDate != nil {
			fmt.Fprintf(&b, "%s %s\n", Dim("Follow up:"), DueStyled(*e.FollowupDate))
		}
		fmt.Fprintf(&b, "%s\n", Dim(e.InteractionID))
	}
	return b.String()
}
