// Package whoisinfo extracts registrar and country from WHOIS records
// of the registrable part of a mail domain.
package whoisinfo

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/likexian/whois"
	"golang.org/x/net/publicsuffix"
)

// QueryFunc returns the raw WHOIS text for a registrable domain.
type QueryFunc func(domain string) (string, error)

// Info is the subset of a WHOIS record the engine reports.
type Info struct {
	Registrar string
	Country   string
}

// Client performs bounded WHOIS lookups.
type Client struct {
	query   QueryFunc
	timeout time.Duration
}

// New creates a client backed by github.com/likexian/whois.
func New(timeout time.Duration) *Client {
	wc := whois.NewClient().SetTimeout(timeout)
	return &Client{
		query: func(domain string) (string, error) {
			return wc.Whois(domain)
		},
		timeout: timeout,
	}
}

// NewWithQuery creates a client with a custom query function (for testing).
func NewWithQuery(q QueryFunc, timeout time.Duration) *Client {
	return &Client{query: q, timeout: timeout}
}

// Lookup queries WHOIS for the registrable domain of domain
// (mail.example.co.uk → example.co.uk). Any failure yields an empty Info.
func (c *Client) Lookup(ctx context.Context, domain string) Info {
	apex, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(domain))
	if err != nil {
		return Info{}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type answer struct {
		raw string
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		raw, err := c.query(apex)
		ch <- answer{raw, err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			return Info{}
		}
		return Parse(a.raw)
	case <-ctx.Done():
		return Info{}
	}
}

// Parse pulls the registrar and registrant country out of a raw WHOIS
// record. The first non-empty value of each field wins.
func Parse(raw string) Info {
	var info Info
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "registrar", "sponsoring registrar", "registrar name":
			if info.Registrar == "" {
				info.Registrar = value
			}
		case "registrant country", "country":
			if info.Country == "" {
				info.Country = strings.ToUpper(value)
			}
		}
	}
	return info
}
