package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject pulls the first JSON object out of model output. Models wrap
// objects in prose or code fences and bend the grammar a little (comments,
// trailing commas, ".8" for 0.8); those are repaired before decoding. Key
// names and value types are left to the caller.
func ExtractObject(raw string) (map[string]any, error) {
	text := stripCodeFences(raw)
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	// The decoder stops after the first value, so trailing prose is ignored.
	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(sanitizeJSON(text[start:])))
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: null object", ErrInvalidOutput)
	}
	return obj, nil
}

func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "```") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// sanitizeJSON rewrites the lenient JSON models produce into strict JSON in
// one pass. String contents are copied untouched.
func sanitizeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
		case strings.HasPrefix(s[i:], "//"):
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			continue
		case c == ',' && closesContainer(s[i+1:]):
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsValue(lastNonSpace(b.String())):
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesContainer reports whether the next significant byte ends an object
// or array, which makes a preceding comma a trailing one. Whitespace and
// comments are not significant.
func closesContainer(rest string) bool {
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		switch {
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				return false
			}
			rest = rest[end+1:]
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return false
			}
			rest = rest[end+4:]
		default:
			return rest != "" && (rest[0] == '}' || rest[0] == ']')
		}
	}
}

func lastNonSpace(s string) byte {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

// startsValue reports whether a number may begin right after c.
func startsValue(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

var preambles = []string{"here is", "here's", "sure"}

// CleanText normalizes free-text output. Code fences go, as does a leading
// "Here is the email:" line, and a fully quoted reply is unquoted.
func CleanText(raw string) string {
	s := strings.TrimSpace(stripCodeFences(raw))
	if first, rest, ok := strings.Cut(s, "\n"); ok && isPreamble(first) {
		s = strings.TrimSpace(rest)
	}
	if inner, ok := strings.CutPrefix(s, `"`); ok {
		if inner, ok = strings.CutSuffix(inner, `"`); ok && !strings.Contains(inner, `"`) {
			s = strings.TrimSpace(inner)
		}
	}
	return s
}

func isPreamble(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	if !strings.HasSuffix(l, ":") {
		return false
	}
	for _, p := range preambles {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}
