package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain object", `{"title":"A"}`, `{"title":"A"}`, true},
		{"json fence", "```json\n{\"title\":\"A\"}\n```", `{"title":"A"}`, true},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", "Here you go:\n{\"a\":{\"b\":2}} thanks", `{"a":{"b":2}}`, true},
		{"brackets inside strings", `{"svgContent":"<svg>[}</svg>","x":[1]}`, `{"svgContent":"<svg>[}</svg>","x":[1]}`, true},
		{"escaped quote", `{"t":"say \"}\" now"}`, `{"t":"say \"}\" now"}`, true},
		{"array first", `[{"a":1}]`, `[{"a":1}]`, true},
		{"unterminated", `{"a":1`, "", false},
		{"empty", "   ", "", false},
		{"no json", "sorry, I cannot help", "", false},
		{"fence with trailing prose", "```json\n{\"a\":1}\nextra\n```", `{"a":1}`, true},
		{"unclosed fence", "```json\n{\"a\":1}", `{"a":1}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSON(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", Pretty(`{"a":1}`))
	assert.Equal(t, "not json", Pretty(" not json "))
}
