package governor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

const catchAllMailFrom = "verify@mailscout.local"

// IsCatchAll probes mxHosts with an address unlikely to exist. If the
// server accepts it, the domain is treated as catch-all: SMTP accept
// carries no discriminating signal for any address at that domain. The
// result is cached per domain with the same TTL as the MX cache, since
// catch-all status changes no faster than MX records do.
// Probing stops at the first conclusive accept; a host that cannot be
// reached is skipped in favor of the next one.
func (g *Governor) IsCatchAll(ctx context.Context, domain string, mxHosts []string) bool {
	if len(mxHosts) == 0 {
		return false
	}
	domain = normalizeDomain(domain)

	if catchAll, ok := g.cachedCatchAll(domain); ok {
		return catchAll
	}

	probe := randomLocalPart() + "@" + domain

	limit := len(mxHosts)
	if limit > 2 {
		limit = 2
	}
	catchAll := false
	for _, host := range mxHosts[:limit] {
		probeCtx, cancel := context.WithTimeout(ctx, g.cfg.CatchAllTimeout)
		accepted := g.ProbeRCPT(probeCtx, host, catchAllMailFrom, probe)
		cancel()
		if accepted != nil && *accepted {
			catchAll = true
			break
		}
	}

	g.catchAllCacheMu.Lock()
	g.catchAllCache[domain] = catchAllCacheEntry{catchAll: catchAll, expiresAt: time.Now().Add(g.cfg.MXCacheTTL)}
	g.catchAllCacheMu.Unlock()

	return catchAll
}

func (g *Governor) cachedCatchAll(domain string) (bool, bool) {
	g.catchAllCacheMu.RLock()
	entry, ok := g.catchAllCache[domain]
	g.catchAllCacheMu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return false, false
	}
	return entry.catchAll, true
}

// randomLocalPart returns a random 16-character local-part, hex-encoded
// so it never collides with a real mailbox naming convention.
func randomLocalPart() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(buf)
}
