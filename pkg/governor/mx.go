package governor

import (
	"context"
	"sort"
	"strings"
	"time"

	"mailscout/pkg/monitoring"
)

// ResolveMX returns the MX hosts for domain, ordered by preference. A
// fresh cache entry is returned without touching the DNS semaphore;
// otherwise the lookup runs under the DNS semaphore, bounded by
// cfg.DNSTimeout, and the result, success or empty, is cached for
// cfg.MXCacheTTL.
func (g *Governor) ResolveMX(ctx context.Context, domain string) []string {
	domain = normalizeDomain(domain)

	if hosts, ok := g.cachedMX(domain); ok {
		return hosts
	}

	if err := g.dns.acquire(ctx); err != nil {
		return nil
	}
	defer g.dns.release()

	// Re-check: another goroutine may have populated the cache while we
	// waited for the DNS semaphore.
	if hosts, ok := g.cachedMX(domain); ok {
		return hosts
	}

	lookupCtx, cancel := context.WithTimeout(ctx, g.cfg.DNSTimeout)
	defer cancel()

	lookupStart := time.Now()
	records, err := g.resolver.LookupMX(lookupCtx, domain)
	monitoring.RecordDNSLookup(time.Since(lookupStart))

	var hosts []string
	if err == nil {
		sort.Slice(records, func(i, j int) bool { return records[i].Pref < records[j].Pref })
		for _, r := range records {
			hosts = append(hosts, strings.ToLower(strings.TrimSuffix(r.Host, ".")))
		}
	}

	g.mxCacheMu.Lock()
	g.mxCache[domain] = mxCacheEntry{hosts: hosts, expiresAt: time.Now().Add(g.cfg.MXCacheTTL)}
	g.mxCacheMu.Unlock()

	return hosts
}

func (g *Governor) cachedMX(domain string) ([]string, bool) {
	g.mxCacheMu.RLock()
	entry, ok := g.mxCache[domain]
	g.mxCacheMu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.hosts, true
}
