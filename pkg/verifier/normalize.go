package verifier

import "strings"

// Normalize trims surrounding whitespace and lowercases the entire
// address. It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// splitAddress splits a normalized address into local part and domain.
// ok is false unless the address has exactly one "@".
func splitAddress(email string) (local, domain string, ok bool) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
