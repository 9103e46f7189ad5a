package http

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// ParseTrustedProxies builds the set of peers whose X-Forwarded-For header is
// believed. Entries may be single addresses or CIDR prefixes.
func ParseTrustedProxies(entries []string) (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("parse trusted proxy %q: %w", entry, err)
			}
			if prefix.Addr().Is4In6() {
				bits := prefix.Bits() - 96
				if bits < 0 {
					return nil, fmt.Errorf("parse trusted proxy %q: mapped prefix shorter than /96", entry)
				}
				prefix = netip.PrefixFrom(prefix.Addr().Unmap(), bits)
			}
			b.AddPrefix(prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", entry, err)
		}
		b.Add(addr.Unmap())
	}
	return b.IPSet()
}

// clientIP walks X-Forwarded-For from the right, skipping trusted hops, and
// only when the direct peer is itself trusted.
func (a *API) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	peer = peer.Unmap()
	if !a.trusted(peer) {
		return peer.String()
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		hop = hop.Unmap()
		if !a.trusted(hop) {
			return hop.String()
		}
	}
	return peer.String()
}

func (a *API) trusted(addr netip.Addr) bool {
	return a.trustedProxies != nil && a.trustedProxies.Contains(addr)
}
