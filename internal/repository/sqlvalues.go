package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Column formats. Instants are RFC3339 in UTC so they sort as text;
// followup dates carry no time of day.
const (
	instantLayout = time.RFC3339
	dateLayout    = "2006-01-02"
)

func instant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func now() string {
	return instant(time.Now())
}

func parseInstant(column, s string) (time.Time, error) {
	t, err := time.Parse(instantLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// optional turns the zero value into SQL NULL.
func optional[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}

func optionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

// scanOptionalTime reads a nullable time column. Unparseable text reads as
// absent rather than failing the whole row.
func scanOptionalTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// Objections live in a TEXT column as a JSON array, never NULL.
func marshalObjections(list []string) (string, error) {
	if list == nil {
		return "[]", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding objections: %w", err)
	}
	return string(data), nil
}

func unmarshalObjections(s string) ([]string, error) {
	var list []string
	if strings.TrimSpace(s) != "" {
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			return nil, fmt.Errorf("decoding objections: %w", err)
		}
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches q anywhere in a column; use with ESCAPE '\'.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}
