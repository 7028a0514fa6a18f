package formatter

import (
	"fmt"
	"time"
)

// daysBetween counts calendar days from now to t. Each side is read in its
// own location so a date-only followup stored at UTC midnight lines up with
// the local calendar.
func daysBetween(t, now time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Due describes a followup date relative to today.
func Due(t time.Time) string {
	return DueFrom(t, time.Now())
}

// DueFrom is Due with an explicit reference time. Anything more than two
// weeks out either way is shown as a plain date.
func DueFrom(t, now time.Time) string {
	days := daysBetween(t, now)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 1 && days <= 14:
		return fmt.Sprintf("in %d days", days)
	case days < -1 && days >= -14:
		return fmt.Sprintf("%d days ago", -days)
	default:
		return ShortDateFrom(t, now)
	}
}

// DueStyled colors Due by urgency: past dates red, the next two days
// yellow.
func DueStyled(t time.Time) string {
	return dueStyledFrom(t, time.Now())
}

func dueStyledFrom(t, now time.Time) string {
	text := DueFrom(t, now)
	days := daysBetween(t, now)
	switch {
	case days < 0:
		return StyleRed.Render("overdue, " + text)
	case days <= 2:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// ShortDate renders a calendar date, dropping the year when it is the
// current one.
func ShortDate(t time.Time) string {
	return ShortDateFrom(t, time.Now())
}

func ShortDateFrom(t, now time.Time) string {
	if daysBetween(t, now) == 0 {
		return "today"
	}
	if t.Year() == now.Year() {
		return t.Format("Mon Jan 2")
	}
	return t.Format("Jan 2, 2006")
}
