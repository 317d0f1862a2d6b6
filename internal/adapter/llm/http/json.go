package http

import (
	"errors"
	"strings"
)

// ErrNoJSONObject indicates the model's output contained no {...} region.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ExtractJSONObject pulls the JSON object out of free-form model output.
//
// Models wrap their answer in prose, markdown fences, or both. The
// extraction is deliberately crude: strip a wrapping code fence if present,
// then take the substring from the first '{' to the last '}'. Greedy
// matching keeps nested objects and braces inside string values intact, at
// the cost of producing garbage when the response contains two unrelated
// objects. The prompt asks for exactly one, so that trade is fine.
//
// The returned string is not guaranteed to be valid JSON; the caller's
// unmarshal is the real validation.
func ExtractJSONObject(text string) (string, error) {
	text = stripCodeFence(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}

	return text[start : end+1], nil
}

// stripCodeFence removes a ```json ... ``` (or bare ```) wrapper some models
// add around their output. Text without a leading fence is returned as-is.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	nl := strings.Index(trimmed, "\n")
	if nl < 0 {
		return s
	}
	inner := trimmed[nl+1:]

	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
