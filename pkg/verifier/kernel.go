package verifier

import (
	"context"

	"mailscout/internal/model"
)

// Probe is the narrow contract the kernel needs from the concurrency
// governor (pkg/governor): MX resolution, an RCPT probe against a given
// MX host, and catch-all detection. Declaring it here, rather than
// importing pkg/governor directly, keeps the kernel's dependency
// direction pointing at an interface it owns, so governor
// implementations (real or faked for tests) are interchangeable.
type Probe interface {
	ResolveMX(ctx context.Context, domain string) []string
	ProbeRCPT(ctx context.Context, mxHost, mailFrom, rcptTo string) *bool
	IsCatchAll(ctx context.Context, domain string, mxHosts []string) bool
}

// Verifier is the static contract the worker runtime drives: one
// interface, built once and passed by reference, no runtime dispatch
// by check name.
type Verifier interface {
	Verify(ctx context.Context, email string) model.VerdictRecord
}

// Kernel is the only Verifier implementation: a fixed composition of
// the syntax, disposable, role, alias, provider, MX, SMTP and
// catch-all checks.
type Kernel struct {
	syntax     *SyntaxValidator
	disposable *DisposableValidator
	provider   *ProviderIdentifier
	role       *RoleValidator
	alias      *AliasDetector
	probe      Probe
	mailFrom   string
}

// Option configures a Kernel at construction time.
type Option func(*Kernel)

// WithDisposableValidator overrides the default disposable-domain set.
func WithDisposableValidator(v *DisposableValidator) Option {
	return func(k *Kernel) { k.disposable = v }
}

// WithMailFrom sets the MAIL FROM sender used during SMTP probing.
func WithMailFrom(addr string) Option {
	return func(k *Kernel) { k.mailFrom = addr }
}

// NewKernel builds the verification kernel. probe supplies the
// process-boundary-crossing operations (DNS, SMTP) via the concurrency
// governor.
func NewKernel(probe Probe, opts ...Option) *Kernel {
	k := &Kernel{
		syntax:     NewSyntaxValidator(),
		disposable: NewDisposableValidator(),
		provider:   NewProviderIdentifier(),
		role:       NewRoleValidator(),
		alias:      NewAliasDetector(),
		probe:      probe,
		mailFrom:   "verify@localhost",
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Verify runs the full check pipeline for one address and never raises:
// any probe failure is absorbed into a neutral/negative check value.
func (k *Kernel) Verify(ctx context.Context, email string) model.VerdictRecord {
	normalized := Normalize(email)

	checks := model.Checks{}
	checks.Syntax = k.syntax.Validate(normalized)
	if !checks.Syntax {
		return model.VerdictRecord{
			Email:      email,
			Normalized: normalized,
			Status:     model.VerdictInvalid,
			Score:      0,
			Checks:     checks,
		}
	}

	_, domain, _ := splitAddress(normalized)
	checks.Domain = domain
	checks.Disposable = k.disposable.Validate(domain)
	checks.RoleBased = k.role.Validate(normalized)
	checks.AliasOf = k.alias.DetectAlias(normalized)
	checks.Provider = k.provider.Identify(domain)

	mxHosts := k.probe.ResolveMX(ctx, domain)
	checks.MXHosts = mxHosts
	checks.HasMX = len(mxHosts) > 0

	if checks.HasMX {
		checks.SMTPAccept = k.probe.ProbeRCPT(ctx, mxHosts[0], k.mailFrom, normalized)
		checks.CatchAll = k.probe.IsCatchAll(ctx, domain, mxHosts)
	}

	score, status := scoreAndStatus(checks)

	return model.VerdictRecord{
		Email:      email,
		Normalized: normalized,
		Status:     status,
		Score:      score,
		Checks:     checks,
	}
}
