// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeWhatsApp canonicalizes a WhatsApp sender address to E.164 digits
// without the leading plus, the form the Cloud API uses in both webhook
// payloads and send requests. The webhook delivers bare digits ("2771...")
// while dashboard input may carry "+", spaces, or dashes; both must resolve
// to the same conversation row. If parsing fails, the trimmed input is
// returned unchanged.
func NormalizeWhatsApp(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	candidate := trimmed
	if !strings.HasPrefix(candidate, "+") {
		candidate = "+" + candidate
	}

	number, err := phonenumbers.Parse(candidate, "")
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return strings.TrimPrefix(phonenumbers.Format(number, phonenumbers.E164), "+")
}
