// Package phone normalizes contact numbers to E.164.
package phone

import (
	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "US"

// IsPhoneNumber reports whether s looks like a dialable phone number rather
// than an email or free text.
func IsPhoneNumber(s string) bool {
	return Normalize(s) != ""
}

// Normalize returns s in E.164 form, or "" when it is not a possible number.
func Normalize(s string) string {
	if !hasPhoneCharacters(s) {
		return ""
	}
	num, err := phonenumbers.Parse(s, DefaultRegion)
	if err != nil {
		return ""
	}
	if phonenumbers.IsPossibleNumberWithReason(num) != phonenumbers.IS_POSSIBLE {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// The parser accepts vanity letters, so anything beyond punctuation is
// rejected up front.
func hasPhoneCharacters(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits > 0
}
