package jsonutil

import (
	"strings"
)

const codeFence = "```"

// ExtractJSON returns the first JSON object or array in raw, looking inside a markdown
// code fence first. Whichever bracket opens first decides between object and array.
func ExtractJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if block, ok := fenced(raw); ok {
		if out, ok := balanced(block); ok {
			return out, true
		}
		return block, true
	}
	return balanced(raw)
}

// fenced returns the body of the first closed code fence without its info string.
func fenced(raw string) (string, bool) {
	_, rest, ok := strings.Cut(raw, codeFence)
	if !ok {
		return "", false
	}
	block, _, ok := strings.Cut(rest, codeFence)
	if !ok {
		return "", false
	}
	if first, body, ok := strings.Cut(block, "\n"); ok {
		first = strings.TrimSpace(first)
		if first != "" && !strings.ContainsAny(first, "[{") {
			block = body
		}
	}
	block = strings.TrimSpace(block)
	return block, block != ""
}

func balanced(raw string) (string, bool) {
	obj := strings.Index(raw, "{")
	arr := strings.Index(raw, "[")
	switch {
	case obj == -1 && arr == -1:
		return "", false
	case arr == -1 || (obj != -1 && obj < arr):
		return scan(raw[obj:], '{', '}')
	default:
		return scan(raw[arr:], '[', ']')
	}
}

// scan returns the prefix of raw up to the bracket closing raw[0], skipping brackets
// inside JSON strings.
func scan(raw string, open, close byte) (string, bool) {
	depth := 0
	inString, escape := false, false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			if depth--; depth == 0 {
				return raw[:i+1], true
			}
		}
	}
	return "", false
}
