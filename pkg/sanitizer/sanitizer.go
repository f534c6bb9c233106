// Package sanitizer normalizes free-text input before validation and
// storage. Locations and names keep their letters and digits with
// whitespace collapsed; phone numbers are normalized to E.164.
package sanitizer

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

// TrimAndNormalize trims the string and collapses internal whitespace
// runs to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeLocation cleans pickup and drop location strings.
func NormalizeLocation(location string) string {
	return TrimAndNormalize(location)
}

// regions tried in order when a phone number carries no country prefix.
var supportedRegions = []string{"IN", "US"}

// SanitizePhone returns the E.164 form of the number, or the trimmed
// input unchanged when it cannot be parsed for any supported region.
// Validation decides whether an unparseable number is acceptable.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return phone
}
