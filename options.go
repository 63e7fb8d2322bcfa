package mailreach

import (
	"crypto/tls"
	"time"
)

// Options configures an Engine. Zero fields take their defaults.
type Options struct {
	DNS    DNSOptions
	SMTP   SMTPOptions
	Domain DomainOptions
	Batch  BatchOptions
	Whois  WhoisOptions
}

// DNSOptions configures MX resolution.
type DNSOptions struct {
	// Servers are nameservers (host or host:port). Default: /etc/resolv.conf
	Servers []string `validate:"dive,hostname_port|ip|hostname_rfc1123"`
	// AttemptTimeout bounds one query to one server. Default: 1s
	AttemptTimeout time.Duration `validate:"gte=0"`
	// Lifetime bounds the whole lookup. Default: 3s
	Lifetime time.Duration `validate:"gte=0"`
}

func defaultDNSOptions() DNSOptions {
	return DNSOptions{
		AttemptTimeout: time.Second,
		Lifetime:       3 * time.Second,
	}
}

// SMTPOptions configures the SMTP prober.
type SMTPOptions struct {
	// HeloDomain is sent with EHLO/HELO. Default: the sender's domain
	HeloDomain string `validate:"omitempty,hostname_rfc1123"`
	// MailFrom is used when Check or RunBatch get an empty sender.
	// Empty means the null reverse path (MAIL FROM:<>).
	MailFrom string `validate:"omitempty,email"`
	// ConnectTimeout bounds a connect on ports 25 and 587. Default: 5s
	ConnectTimeout time.Duration `validate:"gte=0"`
	// TLSTimeout bounds connect plus handshake on port 465. Default: 2s
	TLSTimeout time.Duration `validate:"gte=0"`
	// FallbackTimeout bounds the bare-domain connect. Default: 2s
	FallbackTimeout time.Duration `validate:"gte=0"`
	// SessionTimeout bounds a whole RCPT probe. Default: 5s
	SessionTimeout time.Duration `validate:"gte=0"`
	// ProxyAddr is a SOCKS5 proxy (host:port) for all SMTP traffic.
	ProxyAddr     string `validate:"omitempty,hostname_port"`
	ProxyUser     string
	ProxyPassword string
	// ProbesPerSecond limits SMTP probes across all workers. Default: unlimited
	ProbesPerSecond float64 `validate:"gte=0"`
	// TLSConfig is the base configuration for the port 465 handshake.
	// ServerName is filled in per exchanger. Default: TLS 1.2+, system roots
	TLSConfig *tls.Config `validate:"-"`
}

func defaultSMTPOptions() SMTPOptions {
	return SMTPOptions{
		ConnectTimeout:  5 * time.Second,
		TLSTimeout:      2 * time.Second,
		FallbackTimeout: 2 * time.Second,
		SessionTimeout:  5 * time.Second,
	}
}

// DomainOptions configures domain intelligence.
type DomainOptions struct {
	// DisposableDomains replaces the built-in disposable list.
	DisposableDomains []string `validate:"dive,required"`
	// DisposableFile is read when DisposableDomains is empty: one domain per
	// line, # comments. A missing or unreadable file falls back to the
	// built-in list.
	DisposableFile string
	// TypoThreshold is the Levenshtein distance for provider typo
	// suggestions. Default: 2. Negative disables suggestions.
	TypoThreshold int `validate:"lte=5"`
}

func defaultDomainOptions() DomainOptions {
	return DomainOptions{
		TypoThreshold: 2,
	}
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	// Workers caps concurrent address pipelines. Default: 10
	Workers int `validate:"gte=0,lte=1000"`
}

func defaultBatchOptions() BatchOptions {
	return BatchOptions{Workers: 10}
}

// WhoisOptions configures the optional WHOIS enrichment.
type WhoisOptions struct {
	// Enabled turns on registrar and country lookups. Default: false
	Enabled bool
	// Timeout bounds one WHOIS query. Default: 5s
	Timeout time.Duration `validate:"gte=0"`
}

func defaultWhoisOptions() WhoisOptions {
	return WhoisOptions{Timeout: 5 * time.Second}
}

// DefaultOptions returns the options New uses when called without any.
func DefaultOptions() Options {
	return Options{
		DNS:    defaultDNSOptions(),
		SMTP:   defaultSMTPOptions(),
		Domain: defaultDomainOptions(),
		Batch:  defaultBatchOptions(),
		Whois:  defaultWhoisOptions(),
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()

	if o.DNS.AttemptTimeout == 0 {
		o.DNS.AttemptTimeout = def.DNS.AttemptTimeout
	}
	if o.DNS.Lifetime == 0 {
		o.DNS.Lifetime = def.DNS.Lifetime
	}

	if o.SMTP.ConnectTimeout == 0 {
		o.SMTP.ConnectTimeout = def.SMTP.ConnectTimeout
	}
	if o.SMTP.TLSTimeout == 0 {
		o.SMTP.TLSTimeout = def.SMTP.TLSTimeout
	}
	if o.SMTP.FallbackTimeout == 0 {
		o.SMTP.FallbackTimeout = def.SMTP.FallbackTimeout
	}
	if o.SMTP.SessionTimeout == 0 {
		o.SMTP.SessionTimeout = def.SMTP.SessionTimeout
	}

	if o.Domain.TypoThreshold == 0 {
		o.Domain.TypoThreshold = def.Domain.TypoThreshold
	}

	if o.Batch.Workers == 0 {
		o.Batch.Workers = def.Batch.Workers
	}

	if o.Whois.Timeout == 0 {
		o.Whois.Timeout = def.Whois.Timeout
	}
	return o
}
