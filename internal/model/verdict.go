package model

import "time"

// VerdictStatus is the coarse outcome of a single address verification.
type VerdictStatus string

const (
	VerdictValid   VerdictStatus = "valid"
	VerdictRisky   VerdictStatus = "risky"
	VerdictInvalid VerdictStatus = "invalid"
)

// Checks is the structured blob attached to a VerdictRecord. Every field
// is a scalar or a list of strings so the value can always be marshaled
// to JSON and round-tripped through storage; it never carries a
// suspended computation (channel, func, context).
type Checks struct {
	Syntax       bool     `json:"syntax"`
	Domain       string   `json:"domain"`
	MXHosts      []string `json:"mx_hosts"`
	HasMX        bool     `json:"has_mx"`
	Disposable   bool     `json:"disposable"`
	SMTPAccept   *bool    `json:"smtp_accept"`
	CatchAll     bool     `json:"catch_all"`
	Provider     string   `json:"provider,omitempty"`
	RoleBased    bool     `json:"role_based"`
	AliasOf      string   `json:"alias_of,omitempty"`
}

// VerdictRecord is the stored outcome for one (job, address) pair.
type VerdictRecord struct {
	JobID      string
	Email      string
	Normalized string
	Status     VerdictStatus
	Score      int
	Checks     Checks
	CreatedAt  time.Time
}
