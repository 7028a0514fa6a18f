package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
)

const dateLayout = "2006-01-02"

// ValidateImportFile checks the file before conversion and returns every
// problem found, not just the first.
func ValidateImportFile(file *ImportFile) []error {
	var errs []error
	if len(file.Clients) == 0 {
		return []error{fmt.Errorf("clients: at least one client is required")}
	}

	refs := make(map[string]bool)
	emails := make(map[string]string)
	for i, c := range file.Clients {
		prefix := fmt.Sprintf("clients[%d]", i)

		if c.Ref != "" {
			if refs[c.Ref] {
				errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, c.Ref))
			}
			refs[c.Ref] = true
		}

		client := domain.Client{Name: strings.TrimSpace(c.Name), Company: strings.TrimSpace(c.Company), Email: strings.TrimSpace(c.Email)}
		if err := client.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", prefix, err))
		}
		if key := strings.ToLower(client.Email); key != "" {
			if first, ok := emails[key]; ok {
				errs = append(errs, fmt.Errorf("%s.email: %q is also used by %s", prefix, client.Email, first))
			} else {
				emails[key] = prefix
			}
		}

		for j, in := range c.Interactions {
			errs = append(errs, validateInteraction(fmt.Sprintf("%s.interactions[%d]", prefix, j), in)...)
		}
	}
	return errs
}

func validateInteraction(prefix string, in InteractionImport) []error {
	var errs []error

	date, dateErr := parseDate(in.Date)
	switch {
	case strings.TrimSpace(in.Date) == "":
		errs = append(errs, fmt.Errorf("%s.date is required", prefix))
	case dateErr != nil:
		errs = append(errs, fmt.Errorf("%s.date: invalid date %q (expected YYYY-MM-DD or RFC 3339)", prefix, in.Date))
	}

	if strings.TrimSpace(in.Summary) == "" {
		errs = append(errs, fmt.Errorf("%s.summary is required", prefix))
	}
	if strings.TrimSpace(in.NextAction) == "" {
		errs = append(errs, fmt.Errorf("%s.next_action is required", prefix))
	}
	if strings.TrimSpace(in.DealStage) == "" {
		errs = append(errs, fmt.Errorf("%s.deal_stage is required", prefix))
	} else if _, ok := domain.ParseDealStage(in.DealStage); !ok {
		errs = append(errs, fmt.Errorf("%s.deal_stage: invalid value %q", prefix, in.DealStage))
	}
	if strings.TrimSpace(in.InterestLevel) == "" {
		errs = append(errs, fmt.Errorf("%s.interest_level is required", prefix))
	} else if _, ok := domain.ParseInterestLevel(in.InterestLevel); !ok {
		errs = append(errs, fmt.Errorf("%s.interest_level: invalid value %q", prefix, in.InterestLevel))
	}

	if in.FollowupDate != nil && *in.FollowupDate != "" {
		fu, err := time.Parse(dateLayout, *in.FollowupDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.followup_date: invalid date %q (expected YYYY-MM-DD)", prefix, *in.FollowupDate))
		} else if dateErr == nil && fu.Before(truncateDay(date)) {
			errs = append(errs, fmt.Errorf("%s.followup_date %q is before the interaction date", prefix, *in.FollowupDate))
		}
	}
	return errs
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dateLayout, s)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
