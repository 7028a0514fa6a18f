package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		key   string
		value any
	}{
		{"clean", `{"deal_stage":"negotiation"}`, "deal_stage", "negotiation"},
		{"fenced", "```json\n{\"deal_stage\":\"proposal\"}\n```", "deal_stage", "proposal"},
		{"surrounding prose", "Here is the CRM record:\n{\"deal_stage\":\"qualified\"}\nHope that helps! {not json}", "deal_stage", "qualified"},
		{"braces inside strings", `{"summary":"call {notes}","meta":{"source":"}"}}`, "summary", "call {notes}"},
		{"escaped quote", `{"summary":"she said \"yes\""}`, "summary", `she said "yes"`},
		{"line comment", "{\n  \"deal_stage\": \"proposal\", // best guess\n  \"interest_level\": \"high\"\n}", "interest_level", "high"},
		{"block comment", `{"deal_stage": /* unsure */ "lead"}`, "deal_stage", "lead"},
		{"comment marker in string", `{"link":"https://example.com/a"}`, "link", "https://example.com/a"},
		{"leading decimal", `{"score": .8}`, "score", 0.8},
		{"negative leading decimal", `{"score": -.25}`, "score", -0.25},
		{"trailing comma in object", "{\"next_action\":\"call\",\n}", "next_action", "call"},
		{"trailing comma in array", `{"objections":["budget","timing",]}`, "objections", []any{"budget", "timing"}},
		{"trailing comma before line comment", "{\"next_action\": \"call\", // note\n}", "next_action", "call"},
		{"trailing comma before block comment", `{"objections":["budget", /* maybe timing */ ]}`, "objections", []any{"budget"}},
		{"null member kept", `{"followup_date":null}`, "followup_date", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractObject(tt.raw)
			require.NoError(t, err)
			v, present := obj[tt.key]
			assert.True(t, present)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestExtractObject_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no object", "I could not find a deal here."},
		{"broken member", `{"deal_stage":"proposal", broken}`},
		{"unterminated", `{"deal_stage":"proposal"`},
		{"unterminated comment", `{"deal_stage": /* never closed`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractObject(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidOutput)
		})
	}
}

func TestSanitizeJSON_LeavesStringsAlone(t *testing.T) {
	in := `{"note":"a, ] .5 // b /* c */"}`
	assert.Equal(t, in, sanitizeJSON(in))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  Hi Dana, thanks for the call.  ", "Hi Dana, thanks for the call."},
		{"fenced", "```\nHi Dana,\n\nThanks.\n```", "Hi Dana,\n\nThanks."},
		{"preamble", "Here is the message:\nHi Dana, talk Friday?", "Hi Dana, talk Friday?"},
		{"sure preamble", "Sure, here you go:\nHi Dana!", "Hi Dana!"},
		{"colon in body kept", "Agenda:\nPricing", "Agenda:\nPricing"},
		{"quoted", `"Hi Dana, talk Friday?"`, "Hi Dana, talk Friday?"},
		{"inner quotes kept", `"Loved the "demo"" said Dana`, `"Loved the "demo"" said Dana`},
		{"lone quote", `"`, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.raw))
		})
	}
}
