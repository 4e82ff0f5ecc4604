package utility

import (
	"strings"
	"unicode"
)

const codeFence = "```"

// StripCodeFence removes a markdown code fence wrapped around model output.
//
// The opening fence may carry a language tag ("```json", "``` json"). The
// closing fence is optional, so a reply that was cut off after the opening
// fence still yields its body. Text without an opening fence is only trimmed.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, codeFence) {
		return s
	}

	s = s[len(codeFence):]
	rest := strings.TrimLeft(s, " \t")
	if tag := languageTag(rest); tag != "" {
		s = rest[len(tag):]
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, codeFence)
	return strings.TrimSpace(s)
}

// languageTag returns the info string directly after an opening fence.
// Tags start with a letter, so a bare "```" followed by JSON returns "".
func languageTag(s string) string {
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) {
			return ""
		}
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+' || r == '.') {
			return s[:i]
		}
	}
	return s
}
