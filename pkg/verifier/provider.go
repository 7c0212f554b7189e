package verifier

import "strings"

// knownProviders maps a mailbox domain to the mailbox provider that
// operates it, for the small set of providers common enough to be
// worth special-casing in scoring and alias detection.
var knownProviders = map[string]string{
	"gmail.com":      "gmail",
	"googlemail.com": "gmail",
	"outlook.com":    "microsoft",
	"hotmail.com":    "microsoft",
	"live.com":       "microsoft",
	"yahoo.com":      "yahoo",
	"icloud.com":     "apple",
	"protonmail.com": "protonmail",
	"zoho.com":       "zoho",
}

// ProviderIdentifier looks up the operating provider for a mailbox domain.
type ProviderIdentifier struct {
	providers map[string]string
}

// NewProviderIdentifier builds a ProviderIdentifier from the default
// known-provider map.
func NewProviderIdentifier() *ProviderIdentifier {
	return &ProviderIdentifier{providers: knownProviders}
}

// Identify returns the provider name for domain, or "" if unknown.
func (p *ProviderIdentifier) Identify(domain string) string {
	return p.providers[strings.ToLower(domain)]
}
