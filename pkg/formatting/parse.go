package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when model output holds no decodable JSON value.
var ErrParseFailed = errors.New("failed to parse response")

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// Parse decodes model output into T. It tries, in order: the trimmed content,
// the body of the first markdown code fence, and the span between the first
// opening and last closing bracket matching T's outer JSON delimiter.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	for _, candidate := range candidates(content) {
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			return result, nil
		}
		var zero T
		result = zero
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, Truncate(content, 256))
}

// Truncate shortens s to at most n bytes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func candidates(content string) []string {
	out := []string{content}

	if m := fencePattern.FindStringSubmatch(content); len(m) == 2 {
		out = append(out, m[1])
	}

	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(content, pair[0])
		end := strings.LastIndex(content, pair[1])
		if start >= 0 && end > start {
			out = append(out, content[start:end+1])
		}
	}

	return out
}
