package jsonutil

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Pretty indents raw when it is valid JSON and returns it unchanged otherwise.
func Pretty(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return raw
	}
	return strings.TrimSpace(string(pretty.Pretty([]byte(raw))))
}
