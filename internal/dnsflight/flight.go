// Package dnsflight deduplicates concurrent MX lookups for the same domain.
// Nothing is retained once a lookup completes: a later call for the same
// domain always queries again.
package dnsflight

import (
	"context"
	"net"
	"time"

	"golang.org/x/sync/singleflight"
)

// LookupFunc resolves the MX records of a domain.
type LookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

// Group wraps a LookupFunc so that callers asking for the same domain
// while a query is in flight share its answer.
type Group struct {
	lookup  LookupFunc
	timeout time.Duration
	g       singleflight.Group
}

// New creates a Group around lookup. Each shared query is bounded by
// timeout; zero leaves the bound to lookup.
func New(lookup LookupFunc, timeout time.Duration) *Group {
	return &Group{lookup: lookup, timeout: timeout}
}

// LookupMX returns the records of domain. The shared query is detached
// from the cancellation of whichever caller started it, so one caller's
// deadline never becomes another caller's error. Each caller still
// returns early when its own context ends.
func (g *Group) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	shared := context.WithoutCancel(ctx)
	ch := g.g.DoChan(domain, func() (any, error) {
		qctx := shared
		if g.timeout > 0 {
			var cancel context.CancelFunc
			qctx, cancel = context.WithTimeout(shared, g.timeout)
			defer cancel()
		}
		return g.lookup(qctx, domain)
	})

	select {
	case res := <-ch:
		recs, _ := res.Val.([]*net.MX)
		return copyMX(recs), res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// copyMX returns a deep copy of MX records so callers can sort or
// mutate their slice without affecting other waiters.
func copyMX(records []*net.MX) []*net.MX {
	if records == nil {
		return nil
	}
	out := make([]*net.MX, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}
