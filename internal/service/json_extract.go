package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeLLMJSON decodes a JSON object out of free-form model output. It tries
// a direct parse first, then the substring between the first '{' and the last
// '}'. Shared by the intent classifier, the answer evaluator and the
// follow-up generator so the recovery rule exists exactly once.
func decodeLLMJSON(raw string, v interface{}) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return fmt.Errorf("could not parse JSON substring: %w", err)
	}
	return nil
}

// numField coerces a decoded JSON value to float64. Models occasionally quote
// their numbers.
func numField(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// strSliceField coerces a decoded JSON array to []string, skipping non-string
// entries.
func strSliceField(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
