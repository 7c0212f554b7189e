package verifier

import (
	"regexp"
	"strings"
)

// AliasProvider detects and canonicalizes provider-specific address
// aliasing schemes (Gmail dots/plus, Outlook plus, Yahoo hyphen tags).
type AliasProvider interface {
	IsAlias(localPart string) bool
	Canonicalize(localPart, domain string) string
}

// AliasDetector identifies the canonical mailbox behind a provider-level
// alias. This is informational only: it does not affect scoring.
type AliasDetector struct {
	providers map[string]AliasProvider
}

// NewAliasDetector builds an AliasDetector covering Gmail, Outlook/Hotmail
// and Yahoo's alias schemes.
func NewAliasDetector() *AliasDetector {
	gmail := gmailAlias{}
	outlook := outlookAlias{}
	return &AliasDetector{
		providers: map[string]AliasProvider{
			"gmail.com":      gmail,
			"googlemail.com": gmail,
			"outlook.com":    outlook,
			"hotmail.com":    outlook,
			"live.com":       outlook,
			"yahoo.com":      yahooAlias{pattern: regexp.MustCompile(`^([^-]+)-([^@]+)$`)},
		},
	}
}

// DetectAlias returns the canonical address email aliases to, or "" if
// the domain has no known alias scheme or the address is not an alias.
func (d *AliasDetector) DetectAlias(email string) string {
	local, domain, ok := splitAddress(email)
	if !ok {
		return ""
	}
	provider, known := d.providers[strings.ToLower(domain)]
	if !known || !provider.IsAlias(local) {
		return ""
	}
	return provider.Canonicalize(local, domain)
}

type gmailAlias struct{}

func (gmailAlias) IsAlias(local string) bool {
	return strings.Contains(local, ".") || strings.Contains(local, "+")
}

func (gmailAlias) Canonicalize(local, _ string) string {
	canonical := local
	if idx := strings.Index(canonical, "+"); idx != -1 {
		canonical = canonical[:idx]
	}
	canonical = strings.ReplaceAll(canonical, ".", "")
	return canonical + "@gmail.com"
}

type outlookAlias struct{}

func (outlookAlias) IsAlias(local string) bool {
	return strings.Contains(local, "+")
}

func (outlookAlias) Canonicalize(local, domain string) string {
	if idx := strings.Index(local, "+"); idx != -1 {
		return local[:idx] + "@" + domain
	}
	return local + "@" + domain
}

type yahooAlias struct {
	pattern *regexp.Regexp
}

func (y yahooAlias) IsAlias(local string) bool {
	return y.pattern.MatchString(local)
}

func (y yahooAlias) Canonicalize(local, domain string) string {
	matches := y.pattern.FindStringSubmatch(local)
	if len(matches) > 1 {
		return matches[1] + "@" + domain
	}
	return local + "@" + domain
}
