// Package governor implements the concurrency governor (C2): the
// process-local semaphore tiers and MX cache that bound how much
// outbound DNS and SMTP work a worker can have in flight at once.
package governor

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"
)

// Config tunes the governor's semaphore widths and cache lifetime.
// Zero values are replaced by the package defaults at construction.
type Config struct {
	GlobalConcurrency  int
	DNSConcurrency     int
	SMTPConcurrency    int
	PerMXConcurrency   int
	MXCacheTTL         time.Duration
	EHLOHostname       string
	DNSTimeout         time.Duration
	SMTPConnectTimeout time.Duration
	SMTPSessionTimeout time.Duration
	CatchAllTimeout    time.Duration
}

const (
	defaultGlobalConcurrency  = 50
	defaultDNSConcurrency     = 50
	defaultSMTPConcurrency    = 25
	defaultPerMXConcurrency   = 4
	defaultMXCacheTTL         = 300 * time.Second
	defaultEHLOHostname       = "verify.mailscout.local"
	defaultDNSTimeout         = 5 * time.Second
	defaultSMTPConnectTimeout = 3 * time.Second
	defaultSMTPSessionTimeout = 5 * time.Second
	defaultCatchAllTimeout    = 6 * time.Second
)

func (c Config) withDefaults() Config {
	if c.GlobalConcurrency <= 0 {
		c.GlobalConcurrency = defaultGlobalConcurrency
	}
	if c.DNSConcurrency <= 0 {
		c.DNSConcurrency = defaultDNSConcurrency
	}
	if c.SMTPConcurrency <= 0 {
		c.SMTPConcurrency = defaultSMTPConcurrency
	}
	if c.PerMXConcurrency <= 0 {
		c.PerMXConcurrency = defaultPerMXConcurrency
	}
	if c.MXCacheTTL <= 0 {
		c.MXCacheTTL = defaultMXCacheTTL
	}
	if c.EHLOHostname == "" {
		c.EHLOHostname = defaultEHLOHostname
	}
	if c.DNSTimeout <= 0 {
		c.DNSTimeout = defaultDNSTimeout
	}
	if c.SMTPConnectTimeout <= 0 {
		c.SMTPConnectTimeout = defaultSMTPConnectTimeout
	}
	if c.SMTPSessionTimeout <= 0 {
		c.SMTPSessionTimeout = defaultSMTPSessionTimeout
	}
	if c.CatchAllTimeout <= 0 {
		c.CatchAllTimeout = defaultCatchAllTimeout
	}
	return c
}

// semaphore is a counting semaphore backed by a buffered channel.
type semaphore chan struct{}

func newSemaphore(n int) semaphore {
	return make(semaphore, n)
}

func (s semaphore) acquire(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s semaphore) release() {
	<-s
}

// Governor owns the concurrency primitives a worker shares across every
// verification it runs: the global, DNS and SMTP semaphore tiers, and
// the lazily created per-MX-host semaphore map. One Governor is built
// per worker process and shared by every verification goroutine it
// spawns.
type Governor struct {
	cfg Config

	global semaphore
	dns    semaphore
	smtp   semaphore

	mxHostMu   sync.Mutex
	mxHostSems map[string]semaphore

	mxCacheMu sync.RWMutex
	mxCache   map[string]mxCacheEntry

	catchAllCacheMu sync.RWMutex
	catchAllCache   map[string]catchAllCacheEntry

	resolver Resolver
	dialer   SMTPDialer
}

type mxCacheEntry struct {
	hosts     []string
	expiresAt time.Time
}

type catchAllCacheEntry struct {
	catchAll  bool
	expiresAt time.Time
}

// Resolver abstracts DNS MX lookup so tests can substitute a fake.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

type netResolver struct{}

func (netResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	r := net.DefaultResolver
	return r.LookupMX(ctx, domain)
}

// New builds a Governor using the real net.Resolver and a live SMTP
// dialer. Use NewWithDeps to inject fakes in tests.
func New(cfg Config) *Governor {
	return NewWithDeps(cfg, netResolver{}, nil)
}

// NewWithDeps builds a Governor with an injected Resolver and/or
// SMTPDialer. A nil dialer falls back to the live net/smtp dialer.
func NewWithDeps(cfg Config, resolver Resolver, dialer SMTPDialer) *Governor {
	cfg = cfg.withDefaults()
	if dialer == nil {
		dialer = liveDialer{
			connectTimeout: cfg.SMTPConnectTimeout,
			sessionTimeout: cfg.SMTPSessionTimeout,
			ehloHostname:   cfg.EHLOHostname,
		}
	}
	return &Governor{
		cfg:           cfg,
		global:        newSemaphore(cfg.GlobalConcurrency),
		dns:           newSemaphore(cfg.DNSConcurrency),
		smtp:          newSemaphore(cfg.SMTPConcurrency),
		mxHostSems:    make(map[string]semaphore),
		mxCache:       make(map[string]mxCacheEntry),
		catchAllCache: make(map[string]catchAllCacheEntry),
		resolver:      resolver,
		dialer:        dialer,
	}
}

// AcquireGlobal blocks until a global verification slot is free.
func (g *Governor) AcquireGlobal(ctx context.Context) (release func(), err error) {
	if err := g.global.acquire(ctx); err != nil {
		return nil, err
	}
	return g.global.release, nil
}

// perMXSemaphore returns the semaphore for mxHost, creating it if
// absent. Creation is serialized by mxHostMu; the returned semaphore's
// acquire/release calls are not.
func (g *Governor) perMXSemaphore(mxHost string) semaphore {
	g.mxHostMu.Lock()
	sem, ok := g.mxHostSems[mxHost]
	if !ok {
		sem = newSemaphore(g.cfg.PerMXConcurrency)
		g.mxHostSems[mxHost] = sem
	}
	g.mxHostMu.Unlock()
	return sem
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
}
