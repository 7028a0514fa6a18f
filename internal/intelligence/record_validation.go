package intelligence

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

// Canonical keys of an extracted interaction record.
const (
	KeySummary       = "summary"
	KeyDealStage     = "deal_stage"
	KeyObjections    = "objections"
	KeyInterestLevel = "interest_level"
	KeyNextAction    = "next_action"
	KeyFollowupDate  = "followup_date"

	KeyEmailText   = "email_text"
	KeyMessageText = "message_text"
)

// Field error codes.
const (
	CodeRequired = "required"
	CodeType     = "invalid_type"
	CodeEnum     = "invalid_enum"
	CodeLength   = "invalid_length"
	CodeEmpty    = "empty"
)

var recordKeys = []string{KeySummary, KeyDealStage, KeyObjections, KeyInterestLevel, KeyNextAction, KeyFollowupDate}

var followupKeys = []string{KeyEmailText, KeyMessageText}

// followupKeyAliases lets "email"/"message" stand in for the full key names.
var followupKeyAliases = map[string]string{
	"email":   KeyEmailText,
	"message": KeyMessageText,
}

const recordSchema = `{
  "type": "object",
  "required": ["summary", "deal_stage", "interest_level", "next_action"],
  "properties": {
    "summary":        {"type": "string", "minLength": 1},
    "deal_stage":     {"type": "string", "minLength": 1},
    "interest_level": {"type": "string", "minLength": 1},
    "next_action":    {"type": "string", "minLength": 1},
    "objections": {
      "oneOf": [
        {"type": "string"},
        {"type": "null"},
        {"type": "array", "items": {"type": "string"}}
      ]
    }
  }
}`

const followupSchema = `{
  "type": "object",
  "required": ["email_text", "message_text"],
  "properties": {
    "email_text":   {"type": "string"},
    "message_text": {"type": "string"}
  }
}`

var (
	compiledRecordSchema   = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compileSchema(recordSchema) })
	compiledFollowupSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) { return compileSchema(followupSchema) })
)

func compileSchema(src string) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
}

// FieldError describes one problem with one field of a candidate.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// ValidationError carries every problem found in a candidate, sorted by field.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems(), "; ")
}

// Problems returns one human-readable line per field error.
func (e *ValidationError) Problems() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.String()
	}
	return out
}

// Has reports whether field has at least one recorded problem.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, code, msg string) {
	for _, f := range e.Fields {
		if f.Field == field && f.Code == code {
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	sort.SliceStable(e.Fields, func(i, j int) bool { return e.Fields[i].Field < e.Fields[j].Field })
	return e
}

// ValidateRecord checks an untyped candidate against the interaction record
// shape and returns a record carrying the extracted fields. Identity, raw
// text and timestamps are left for the caller to fill in.
func ValidateRecord(candidate map[string]any) (*domain.InteractionRecord, error) {
	doc := canonicalize(candidate, recordKeys, nil)
	verr := &ValidationError{}
	if err := structuralCheck(compiledRecordSchema, doc, verr); err != nil {
		return nil, err
	}

	rec := &domain.InteractionRecord{Version: 1}

	if s, ok := doc[KeySummary].(string); ok {
		rec.Summary = strings.TrimSpace(s)
		if rec.Summary == "" {
			verr.add(KeySummary, CodeEmpty, "must not be blank")
		}
	}
	if s, ok := doc[KeyNextAction].(string); ok {
		rec.NextAction = strings.TrimSpace(s)
		if rec.NextAction == "" {
			verr.add(KeyNextAction, CodeEmpty, "must not be blank")
		}
	}
	if s, ok := doc[KeyDealStage].(string); ok {
		stage, valid := domain.ParseDealStage(s)
		if !valid {
			verr.add(KeyDealStage, CodeEnum, fmt.Sprintf("%q is not one of %s", s, joinStages()))
		}
		rec.DealStage = stage
	}
	if s, ok := doc[KeyInterestLevel].(string); ok {
		lvl, valid := domain.ParseInterestLevel(s)
		if !valid {
			verr.add(KeyInterestLevel, CodeEnum, fmt.Sprintf("%q is not one of %s", s, joinLevels()))
		}
		rec.InterestLevel = lvl
	}

	objections, err := coerceObjections(doc[KeyObjections])
	if err != nil {
		verr.add(KeyObjections, CodeType, err.Error())
	}
	rec.Objections = objections

	rec.FollowupDate = parseLooseDate(doc[KeyFollowupDate])

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return rec, nil
}

// FollowupPolicy holds the length rules for generated followup text.
type FollowupPolicy struct {
	EmailMinChars   int
	MessageMinChars int
	MessageMaxChars int
}

// DefaultFollowupPolicy returns the stock length rules.
func DefaultFollowupPolicy() FollowupPolicy {
	return FollowupPolicy{EmailMinChars: 20, MessageMinChars: 10, MessageMaxChars: 300}
}

// ValidateFollowup checks a candidate carrying both followup channels.
func ValidateFollowup(candidate map[string]any, policy FollowupPolicy) (*domain.FollowupContent, error) {
	doc := canonicalize(candidate, followupKeys, followupKeyAliases)
	verr := &ValidationError{}
	if err := structuralCheck(compiledFollowupSchema, doc, verr); err != nil {
		return nil, err
	}

	fc := &domain.FollowupContent{}
	if s, ok := doc[KeyEmailText].(string); ok {
		fc.EmailText = strings.TrimSpace(s)
		checkEmail(fc.EmailText, policy, verr)
	}
	if s, ok := doc[KeyMessageText].(string); ok {
		fc.MessageText = strings.TrimSpace(s)
		checkMessage(fc.MessageText, policy, verr)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return fc, nil
}

// ValidateEmailText applies the email channel rules to a single text.
func ValidateEmailText(text string, policy FollowupPolicy) error {
	verr := &ValidationError{}
	checkEmail(strings.TrimSpace(text), policy, verr)
	return verr.orNil()
}

// ValidateMessageText applies the short-message channel rules to a single text.
func ValidateMessageText(text string, policy FollowupPolicy) error {
	verr := &ValidationError{}
	checkMessage(strings.TrimSpace(text), policy, verr)
	return verr.orNil()
}

func checkEmail(text string, policy FollowupPolicy, verr *ValidationError) {
	n := len([]rune(text))
	switch {
	case n == 0:
		verr.add(KeyEmailText, CodeEmpty, "email text must not be empty")
	case n < policy.EmailMinChars:
		verr.add(KeyEmailText, CodeLength, fmt.Sprintf("email text is %d characters; write at least %d", n, policy.EmailMinChars))
	}
}

func checkMessage(text string, policy FollowupPolicy, verr *ValidationError) {
	n := len([]rune(text))
	switch {
	case n == 0:
		verr.add(KeyMessageText, CodeEmpty, "message text must not be empty")
	case n < policy.MessageMinChars:
		verr.add(KeyMessageText, CodeLength, fmt.Sprintf("message text is %d characters; write at least %d", n, policy.MessageMinChars))
	case policy.MessageMaxChars > 0 && n > policy.MessageMaxChars:
		verr.add(KeyMessageText, CodeLength, fmt.Sprintf("message text is %d characters; rewrite it in at most %d characters", n, policy.MessageMaxChars))
	}
}

// structuralCheck runs the JSON schema pass and records every violation.
// A non-nil return means the schema itself could not be evaluated.
func structuralCheck(schema func() (*gojsonschema.Schema, error), doc map[string]any, verr *ValidationError) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("evaluating schema: %w", err)
	}
	for _, re := range result.Errors() {
		field, code := re.Field(), CodeType
		switch re.Type() {
		case "required":
			code = CodeRequired
			if p, ok := re.Details()["property"].(string); ok {
				field = p
			}
		case "string_gte":
			code = CodeEmpty
		case "number_one_of":
			// oneOf reports once for the property and again per failing branch.
			continue
		}
		if i := strings.IndexByte(field, '.'); i > 0 {
			field = field[:i]
		}
		verr.add(field, code, re.Description())
	}
	return nil
}

// canonicalize maps camelCase, PascalCase and snake_case spellings of the
// known keys onto their snake_case form. Unknown keys are dropped. An exact
// snake_case key wins over an alias.
func canonicalize(candidate map[string]any, keys []string, aliases map[string]string) map[string]any {
	byFolded := make(map[string]string, len(keys))
	for _, k := range keys {
		byFolded[foldKey(k)] = k
	}
	for alias, k := range aliases {
		byFolded[foldKey(alias)] = k
	}

	names := make([]string, 0, len(candidate))
	for k := range candidate {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make(map[string]any, len(keys))
	exact := make(map[string]bool, len(keys))
	for _, name := range names {
		canon, ok := byFolded[foldKey(name)]
		if !ok {
			continue
		}
		if name == canon {
			out[canon] = candidate[name]
			exact[canon] = true
			continue
		}
		if _, seen := out[canon]; !seen && !exact[canon] {
			out[canon] = candidate[name]
		}
	}
	return out
}

func foldKey(k string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(k))
}

// noneObjections are placeholder values models emit instead of an empty list.
var noneObjections = map[string]bool{
	"": true, "none": true, "n/a": true, "na": true, "null": true,
	"no objections": true, "no objection": true, "nothing": true,
}

func coerceObjections(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		s := strings.TrimSpace(t)
		if noneObjections[strings.ToLower(s)] {
			return []string{}, nil
		}
		return []string{s}, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return []string{}, fmt.Errorf("item %d is %T, expected string", i, item)
			}
			s = strings.TrimSpace(s)
			if noneObjections[strings.ToLower(s)] {
				continue
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return coerceObjections(toAnySlice(t))
	default:
		return []string{}, fmt.Errorf("expected string or list of strings, got %T", v)
	}
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var followupDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseLooseDate returns nil for anything that does not parse as a date.
func parseLooseDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range followupDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

func joinStages() string {
	parts := make([]string, 0, len(domain.DealStages))
	for _, s := range domain.DealStages {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func joinLevels() string {
	parts := make([]string, 0, len(domain.InterestLevels))
	for _, l := range domain.InterestLevels {
		parts = append(parts, string(l))
	}
	return strings.Join(parts, ", ")
}
