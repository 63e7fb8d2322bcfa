package check

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/optimode/mailreach/types"
)

// MXLookupFunc returns the MX records of a domain.
type MXLookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

// DNSConfig is the resolver configuration.
type DNSConfig struct {
	// Timeout bounds the whole resolution.
	Timeout time.Duration
}

// MXResolver picks the preferred mail exchanger of a domain.
type MXResolver struct {
	cfg    DNSConfig
	lookup MXLookupFunc // injectable for testability
}

// NewMXResolverWithLookup creates a resolver around a lookup function.
func NewMXResolverWithLookup(cfg DNSConfig, fn MXLookupFunc) *MXResolver {
	return &MXResolver{cfg: cfg, lookup: fn}
}

// Resolve returns the lowest-preference exchanger of domain. When no record
// exists, the lookup fails or it times out, the result has no host and
// Implicit set: the caller cannot tell these cases apart and must not retry.
func (r *MXResolver) Resolve(ctx context.Context, domain string) types.MXResult {
	if domain == "" {
		return types.MXResult{Implicit: true}
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	records, err := r.lookup(ctx, domain)
	if err != nil {
		return types.MXResult{Implicit: true}
	}

	// A null MX ("." per RFC 7505) is not an exchanger.
	var usable []*net.MX
	for _, mx := range records {
		if host := strings.TrimSuffix(mx.Host, "."); host != "" {
			usable = append(usable, &net.MX{Host: host, Pref: mx.Pref})
		}
	}
	if len(usable) == 0 {
		return types.MXResult{Implicit: true}
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Pref < usable[j].Pref
	})
	return types.MXResult{Host: strings.ToLower(usable[0].Host)}
}
