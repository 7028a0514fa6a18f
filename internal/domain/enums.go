package domain

import "strings"

type DealStage string

const (
	StageProspecting   DealStage = "prospecting"
	StageQualification DealStage = "qualification"
	StageProposal      DealStage = "proposal"
	StageNegotiation   DealStage = "negotiation"
	StageClosedWon     DealStage = "closed_won"
	StageClosedLost    DealStage = "closed_lost"
	StageNurture       DealStage = "nurture"
	StageUnknown       DealStage = "unknown"
)

// DealStages lists the closed deal-stage vocabulary in pipeline order.
var DealStages = []DealStage{
	StageProspecting, StageQualification, StageProposal, StageNegotiation,
	StageClosedWon, StageClosedLost, StageNurture, StageUnknown,
}

type InterestLevel string

const (
	InterestLow    InterestLevel = "low"
	InterestMedium InterestLevel = "medium"
	InterestHigh   InterestLevel = "high"
)

// InterestLevels lists the closed interest vocabulary from coldest to hottest.
var InterestLevels = []InterestLevel{InterestLow, InterestMedium, InterestHigh}

// interestSynonyms maps the temperature words sales teams use onto the closed set.
var interestSynonyms = map[string]InterestLevel{
	"hot":     InterestHigh,
	"warm":    InterestMedium,
	"neutral": InterestMedium,
	"cold":    InterestLow,
}

// ParseDealStage normalizes s into a DealStage. Matching ignores case and
// treats spaces, dashes and camel-case boundaries as underscores, so
// "Closed Won", "closed-won" and "ClosedWon" all yield StageClosedWon.
func ParseDealStage(s string) (DealStage, bool) {
	key := normalizeEnumKey(s)
	for _, st := range DealStages {
		if key == string(st) || key == strings.ReplaceAll(string(st), "_", "") {
			return st, true
		}
	}
	return "", false
}

// ParseInterestLevel normalizes s into an InterestLevel, accepting the
// hot/warm/cold/neutral temperature synonyms.
func ParseInterestLevel(s string) (InterestLevel, bool) {
	key := normalizeEnumKey(s)
	for _, lvl := range InterestLevels {
		if key == string(lvl) {
			return lvl, true
		}
	}
	if lvl, ok := interestSynonyms[key]; ok {
		return lvl, true
	}
	return "", false
}

// Label returns a human-readable title such as "Closed Won".
func (s DealStage) Label() string {
	return titleWords(string(s))
}

// Label returns a human-readable title such as "High".
func (l InterestLevel) Label() string {
	return titleWords(string(l))
}

func normalizeEnumKey(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		switch {
		case r == ' ' || r == '-' || r == '.' || r == '/':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			// Split camel case ("ClosedWon") but not all-caps words ("HIGH").
			if i > 0 && isLowerByte(s[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}

func isLowerByte(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func titleWords(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
