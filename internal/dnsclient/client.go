// Package dnsclient performs MX queries against configured nameservers
// with a per-attempt timeout and an overall lifetime.
package dnsclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// ResolvConf is the system resolver configuration read when no
// nameservers are configured explicitly.
const ResolvConf = "/etc/resolv.conf"

// ErrNXDomain is returned when the domain does not exist.
var ErrNXDomain = errors.New("dnsclient: no such domain")

// Config configures the client.
type Config struct {
	// Servers are nameserver addresses, host or host:port.
	// Empty means the servers listed in /etc/resolv.conf.
	Servers []string
	// AttemptTimeout bounds a single query to a single server.
	AttemptTimeout time.Duration
	// Lifetime bounds the whole lookup across all servers.
	Lifetime time.Duration
}

// Client resolves MX records.
type Client struct {
	servers  []string
	attempt  time.Duration
	lifetime time.Duration
}

// New creates a client. It fails only when no nameserver can be determined.
func New(cfg Config) (*Client, error) {
	servers := cfg.Servers
	if len(servers) == 0 {
		cc, err := dns.ClientConfigFromFile(ResolvConf)
		if err != nil {
			return nil, fmt.Errorf("dnsclient: read %s: %w", ResolvConf, err)
		}
		for _, s := range cc.Servers {
			servers = append(servers, net.JoinHostPort(s, cc.Port))
		}
	}
	if len(servers) == 0 {
		return nil, errors.New("dnsclient: no nameservers configured")
	}

	c := &Client{
		attempt:  cfg.AttemptTimeout,
		lifetime: cfg.Lifetime,
	}
	for _, s := range servers {
		c.servers = append(c.servers, withPort(s))
	}
	return c, nil
}

// Servers returns the nameserver addresses in query order.
func (c *Client) Servers() []string {
	return append([]string(nil), c.servers...)
}

// LookupMX queries every configured server in turn until one answers.
// A NOERROR answer without MX records returns an empty slice and nil error.
func (c *Client) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	if c.lifetime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.lifetime)
		defer cancel()
	}

	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn(domain), dns.TypeMX)

	var lastErr error
	for _, server := range c.servers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dnsclient: lookup %s: %w", domain, err)
		}

		in, err := c.exchange(ctx, q, server)
		if err != nil {
			lastErr = err
			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
			return extractMX(in), nil
		case dns.RcodeNameError:
			return nil, fmt.Errorf("%w: %s", ErrNXDomain, domain)
		default:
			lastErr = fmt.Errorf("dnsclient: %s answered %s", server, dns.RcodeToString[in.Rcode])
		}
	}
	return nil, fmt.Errorf("dnsclient: lookup %s: %w", domain, lastErr)
}

// exchange sends q over UDP and retries over TCP when the answer is truncated.
func (c *Client) exchange(ctx context.Context, q *dns.Msg, server string) (*dns.Msg, error) {
	udp := &dns.Client{Net: "udp", Timeout: c.attempt}
	in, _, err := udp.ExchangeContext(ctx, q, server)
	if err != nil {
		return nil, err
	}
	if !in.Truncated {
		return in, nil
	}

	tcp := &dns.Client{Net: "tcp", Timeout: c.attempt}
	in, _, err = tcp.ExchangeContext(ctx, q, server)
	return in, err
}

func extractMX(in *dns.Msg) []*net.MX {
	out := make([]*net.MX, 0, len(in.Answer))
	for _, rr := range in.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			out = append(out, &net.MX{Host: mx.Mx, Pref: mx.Preference})
		}
	}
	return out
}

func withPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(strings.Trim(server, "[]"), "53")
}
