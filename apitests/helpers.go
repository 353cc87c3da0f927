package apitests

import (
	"fmt"
	"strings"
	"time"
)

// uniqueEmail returns an address that no fixture account uses. Probes that deliberately
// fail logins (such as the rate-limit test) use one of these so they never disturb the
// server-side state of a real account.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// emailOfLength returns a syntactically valid address of exactly length characters.
func emailOfLength(length int) string {
	const domain = "@example.com"
	if length <= len(domain) {
		return strings.Repeat("a", length) // degenerate, only reachable with absurd fixture values
	}
	return strings.Repeat("a", length-len(domain)) + domain
}

// passwordOfLength returns a password of exactly length characters that satisfies the
// usual complexity rules (upper/lower case, digit, symbol) at any length >= 4.
func passwordOfLength(length int) string {
	return strings.Repeat("Aa1!", (length+3)/4)[:length]
}

// mixedCaseEmail flips the case of the alphabetic characters in an address, so that
// "user@example.com" becomes "USER@EXAMPLE.COM" and vice versa per character.
func mixedCaseEmail(email string) string {
	out := make([]rune, 0, len(email))
	for _, c := range email {
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c >= 'A' && c <= 'Z':
			out = append(out, c-'A'+'a')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
