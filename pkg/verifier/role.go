package verifier

import "strings"

// RoleValidator flags local parts that name a role rather than a
// person ("admin@", "support@"). This is informational only: it does
// not affect scoring.
type RoleValidator struct {
	prefixes map[string]struct{}
}

// NewRoleValidator builds a RoleValidator from a default prefix set.
func NewRoleValidator() *RoleValidator {
	prefixes := []string{
		"admin", "support", "info", "sales", "contact",
		"help", "marketing", "team", "billing", "office",
		"noreply", "no-reply", "postmaster", "webmaster", "abuse",
	}
	set := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		set[p] = struct{}{}
	}
	return &RoleValidator{prefixes: set}
}

// Validate reports whether email's local part is a known role alias.
func (v *RoleValidator) Validate(email string) bool {
	local, _, ok := splitAddress(email)
	if !ok {
		return false
	}
	_, isRole := v.prefixes[strings.ToLower(local)]
	return isRole
}
