// Package masking redacts credential-like values before they reach the
// audit log. Redaction keys off the metadata key name, so ordinary
// fields (amounts, categories, request ids) pass through untouched.
package masking

import "strings"

const redacted = "****"

var sensitiveFragments = []string{
	"password",
	"secret",
	"token",
	"session",
	"cookie",
	"authorization",
	"api_key",
	"apikey",
}

// SensitiveKey reports whether a metadata key names a credential.
func SensitiveKey(key string) bool {
	lowered := strings.ToLower(strings.TrimSpace(key))
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

// RedactValue masks a credential while keeping an identifying tail.
// Prefixed keys keep their prefix, so "sk_live_abcd1234" stays
// recognizable as "sk_live_****1234".
func RedactValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	prefix, tail := splitKeyPrefix(trimmed)
	if len(tail) <= 4 {
		return prefix + redacted
	}
	return prefix + redacted + tail[len(tail)-4:]
}

// RedactMetadata returns a copy of the metadata with every value under a
// sensitive key masked. Nested mappings and lists are walked, and a
// sensitive key redacts its whole subtree.
func RedactMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return input
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		if SensitiveKey(key) {
			out[key] = redactAny(value)
			continue
		}
		switch nested := value.(type) {
		case map[string]any:
			out[key] = RedactMetadata(nested)
		case []any:
			items := make([]any, 0, len(nested))
			for _, item := range nested {
				if m, ok := item.(map[string]any); ok {
					items = append(items, RedactMetadata(m))
					continue
				}
				items = append(items, item)
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}

func redactAny(value any) any {
	switch cast := value.(type) {
	case string:
		return RedactValue(cast)
	case map[string]any:
		out := make(map[string]any, len(cast))
		for key, item := range cast {
			out[key] = redactAny(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, redactAny(item))
		}
		return out
	case nil:
		return nil
	default:
		return redacted
	}
}

func splitKeyPrefix(value string) (string, string) {
	last := strings.LastIndex(value, "_")
	if last == -1 || last == len(value)-1 {
		return "", value
	}
	return value[:last+1], value[last+1:]
}
