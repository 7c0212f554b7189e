package verifier

import (
	"bufio"
	"os"
	"strings"
)

// DomainReader supplies the set of known disposable-provider domains. It
// exists so an operator can swap a static list for a file-backed one
// without touching the validator.
type DomainReader interface {
	ReadDomains() ([]string, error)
}

// StaticDomainReader returns a fixed, in-memory domain list.
type StaticDomainReader struct {
	domains []string
}

// NewStaticDomainReader wraps a fixed domain list as a DomainReader.
func NewStaticDomainReader(domains []string) *StaticDomainReader {
	return &StaticDomainReader{domains: domains}
}

// ReadDomains returns the wrapped static list.
func (r *StaticDomainReader) ReadDomains() ([]string, error) {
	return r.domains, nil
}

// FileDomainReader reads one domain per line from a file, skipping blank
// lines and comments.
type FileDomainReader struct {
	path string
}

// NewFileDomainReader builds a FileDomainReader for the given path.
func NewFileDomainReader(path string) *FileDomainReader {
	return &FileDomainReader{path: path}
}

// ReadDomains reads the domain list from disk.
func (r *FileDomainReader) ReadDomains() ([]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return domains, nil
}

// defaultDisposableDomains is a small seed set of well-known disposable
// providers, used when no DomainReader is supplied.
func defaultDisposableDomains() []string {
	return []string{
		"mailinator.com",
		"10minutemail.com",
		"temp-mail.org",
		"guerrillamail.com",
		"yopmail.com",
		"trashmail.com",
		"throwawaymail.com",
		"getnada.com",
		"sharklasers.com",
		"dispostable.com",
		"fakeinbox.com",
		"maildrop.cc",
	}
}

// DisposableValidator tests domain membership in the disposable-provider
// set. Lookup is case-insensitive on the domain part.
type DisposableValidator struct {
	domains map[string]struct{}
}

// NewDisposableValidator builds a DisposableValidator from the default
// seed list.
func NewDisposableValidator() *DisposableValidator {
	v, _ := NewDisposableValidatorWithReader(NewStaticDomainReader(defaultDisposableDomains()))
	return v
}

// NewDisposableValidatorWithReader builds a DisposableValidator from
// whatever domain list the reader supplies.
func NewDisposableValidatorWithReader(reader DomainReader) (*DisposableValidator, error) {
	domains, err := reader.ReadDomains()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return &DisposableValidator{domains: set}, nil
}

// Validate reports whether domain belongs to a known disposable provider.
func (v *DisposableValidator) Validate(domain string) bool {
	_, ok := v.domains[strings.ToLower(domain)]
	return ok
}
