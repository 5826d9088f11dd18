package gateway

import (
	"net"
	"net/netip"
	"strings"

	"github.com/rs/zerolog"
)

// GeoResolver blocks requester IPs that fall inside configured ranges.
// Ranges are CIDR prefixes; bare IPs are treated as /32 (or /128).
type GeoResolver struct {
	prefixes []netip.Prefix
	logger   zerolog.Logger
}

// NewGeoResolver creates a new GeoResolver. Malformed ranges are logged and
// skipped.
func NewGeoResolver(ranges []string, logger zerolog.Logger) *GeoResolver {
	r := &GeoResolver{logger: logger}
	for _, raw := range ranges {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				logger.Warn().Str("range", raw).Msg("skipping malformed blocked IP")
				continue
			}
			r.prefixes = append(r.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}

		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			logger.Warn().Str("range", raw).Msg("skipping malformed blocked range")
			continue
		}
		r.prefixes = append(r.prefixes, prefix)
	}
	return r
}

// IsBlocked reports whether ip falls inside a blocked range. A host:port
// value is accepted; an unparseable IP is not blocked.
func (r *GeoResolver) IsBlocked(ip string) bool {
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, prefix := range r.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
