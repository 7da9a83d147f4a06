// Package redact strips secrets such as the fallback API key and the Matrix
// access token from strings before they are logged.
//
// Redaction works on the rendered text and only knows the values callers
// pass in. Keeping secrets away from log call sites still matters.
package redact

import "strings"

const placeholder = "[REDACTED]"

// minSecretLen keeps short values from blanking out ordinary words.
const minSecretLen = 4

// String replaces every occurrence of each sensitive value in s with
// [REDACTED].
//
//	slog.Error("fallback: request failed", "err", redact.String(err.Error(), apiKey))
func String(s string, sensitiveValues ...string) string {
	for _, v := range sensitiveValues {
		if len(v) < minSecretLen {
			continue
		}
		s = strings.ReplaceAll(s, v, placeholder)
	}
	return s
}
