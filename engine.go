package mailreach

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/optimode/mailreach/check"
	"github.com/optimode/mailreach/internal/disposable"
	"github.com/optimode/mailreach/internal/dnsclient"
	"github.com/optimode/mailreach/internal/dnsflight"
	"github.com/optimode/mailreach/internal/parse"
	"github.com/optimode/mailreach/internal/whoisinfo"
	"github.com/optimode/mailreach/types"
)

const reasonInvalidSyntax = "invalid email syntax"

// Engine runs the verification pipeline. Instantiate with New().
// An Engine is safe for concurrent use once configured; the With* methods
// are not, and belong to setup.
type Engine struct {
	opts Options
	err  error // configuration error, returned by Check and RunBatch
	log  logrus.FieldLogger

	domains  *check.DomainIntel
	resolver *check.MXResolver
	prober   check.Prober
	judge    *check.Judge
	whois    *whoisinfo.Client // nil when disabled
}

// New creates an Engine. Without arguments the defaults apply; zero fields
// of the given Options are defaulted as well. Invalid options are reported
// by the first Check or RunBatch call.
func New(opts ...Options) *Engine {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0].withDefaults()
	}

	e := &Engine{opts: o, log: logrus.StandardLogger()}
	if err := o.Validate(); err != nil {
		e.err = err
		return e
	}

	e.domains = check.NewDomainIntel(check.DomainConfig{
		Disposable:    e.loadDisposable(),
		TypoThreshold: o.Domain.TypoThreshold,
	})
	e.resolver = check.NewMXResolverWithLookup(check.DNSConfig{Timeout: o.DNS.Lifetime}, e.defaultMXLookup())

	prober, err := check.NewSMTPProber(e.smtpConfig())
	if err != nil {
		e.err = err
		return e
	}
	e.prober = prober
	e.judge = check.NewJudge(e.prober, e.domains)

	if o.Whois.Enabled {
		e.whois = whoisinfo.New(o.Whois.Timeout)
	}
	return e
}

// WithLogger sets the logger. Default: the logrus standard logger.
func (e *Engine) WithLogger(log logrus.FieldLogger) *Engine {
	if log != nil {
		e.log = log
	}
	return e
}

// WithMXLookup replaces the DNS client. The lookup is still bounded by
// DNSOptions.Lifetime.
func (e *Engine) WithMXLookup(fn func(ctx context.Context, domain string) ([]*net.MX, error)) *Engine {
	if e.err == nil {
		e.resolver = check.NewMXResolverWithLookup(check.DNSConfig{Timeout: e.opts.DNS.Lifetime}, fn)
	}
	return e
}

// WithDialer replaces the transport used for SMTP connections. Rate
// limiting and timeouts still apply; the proxy setting does not.
func (e *Engine) WithDialer(dial func(ctx context.Context, network, address string) (net.Conn, error)) *Engine {
	if e.err == nil {
		return e.WithProber(check.NewSMTPProberWithDial(e.smtpConfig(), dial))
	}
	return e
}

// WithProber replaces the SMTP prober entirely.
func (e *Engine) WithProber(p check.Prober) *Engine {
	if e.err == nil {
		e.prober = p
		e.judge = check.NewJudge(p, e.domains)
	}
	return e
}

// WithWhois enables WHOIS enrichment with a custom query function, which
// receives the registrable domain and returns the raw WHOIS text.
func (e *Engine) WithWhois(query func(domain string) (string, error)) *Engine {
	if e.err == nil {
		e.whois = whoisinfo.NewWithQuery(query, e.opts.Whois.Timeout)
	}
	return e
}

// Check runs the full pipeline for one address. sender is used in MAIL FROM;
// empty means SMTPOptions.MailFrom. When the syntax is invalid the record is
// still fully populated and ErrInvalidSyntax is returned with it.
func (e *Engine) Check(ctx context.Context, address, sender string) (AddressRecord, error) {
	if e.err != nil {
		return AddressRecord{}, e.err
	}

	rec := e.check(ctx, parse.NewEmail(address), e.sender(sender))
	if !rec.SyntaxValid {
		return rec, ErrInvalidSyntax
	}
	return rec, nil
}

// check is the single-address pipeline. It never fails: network problems
// end up in the reasons.
func (e *Engine) check(ctx context.Context, email parse.Email, sender string) types.AddressRecord {
	rec := types.AddressRecord{
		Raw:          email.Raw,
		Normalized:   email.Normalized,
		Domain:       email.Domain,
		SyntaxValid:  check.ValidSyntax(email.Normalized),
		IsDisposable: e.domains.IsDisposable(email.Domain),
		Provider:     e.domains.ProviderFor(email.Domain),
	}
	if email.DomainUnicode != email.Domain {
		rec.DomainUnicode = email.DomainUnicode
	}
	h := check.Analyze(email.Raw, email.Normalized)
	applyHeuristics(&rec, h)

	log := e.log.WithFields(logrus.Fields{
		"address": email.Normalized,
		"domain":  email.Domain,
	})

	if !rec.SyntaxValid {
		rec.SMTPReason = reasonInvalidSyntax
		rec.ValidationReason = reasonInvalidSyntax
		applyScore(&rec, check.Score(check.Signals{}))
		log.Debug("invalid syntax")
		return rec
	}

	rec.Suggestion = e.domains.Suggest(email.Domain)

	mx := e.resolver.Resolve(ctx, email.Domain)
	rec.MX = mx.Host
	rec.ImplicitMX = mx.Implicit

	v := e.judge.Decide(ctx, mx, email.Normalized, sender, rec.Provider)
	rec.SMTPDeliverable = v.Deliverable
	rec.SMTPReason = v.Reason
	rec.ValidationReason = v.Detail
	if rec.ValidationReason == "" {
		rec.ValidationReason = v.Reason
	}

	if e.whois != nil {
		info := e.whois.Lookup(ctx, email.Domain)
		rec.Registrar = info.Registrar
		rec.RegistrantCountry = info.Country
	}

	applyScore(&rec, check.Score(check.Signals{
		SyntaxValid:     true,
		Deliverable:     v.Deliverable,
		Disposable:      rec.IsDisposable,
		TrustedProvider: e.domains.IsTrusted(rec.Provider),
		Heuristics:      h,
	}))

	log.WithFields(logrus.Fields{
		"mx":          rec.MX,
		"code":        v.Probe.Code,
		"deliverable": rec.SMTPDeliverable,
		"score":       rec.Score,
	}).Debug(rec.SMTPReason)
	return rec
}

func applyHeuristics(rec *types.AddressRecord, h types.Heuristics) {
	rec.HasRole = h.HasRole
	rec.IsAcceptAll = h.IsAcceptAll
	rec.HasNoReply = h.HasNoReply
	rec.AlphaCount = h.AlphaCount
	rec.DigitCount = h.DigitCount
	rec.SymbolCount = h.SymbolCount
	rec.GuessedDisplayName = h.GuessedDisplayName
}

func applyScore(rec *types.AddressRecord, s types.Score) {
	rec.Score = s.Value
	rec.IsRisky = s.Risky
	rec.Tags = s.Tags
}

func (e *Engine) sender(sender string) string {
	if sender != "" {
		return sender
	}
	return e.opts.SMTP.MailFrom
}

func (e *Engine) smtpConfig() check.SMTPConfig {
	o := e.opts.SMTP
	return check.SMTPConfig{
		HeloDomain:      o.HeloDomain,
		ConnectTimeout:  o.ConnectTimeout,
		TLSTimeout:      o.TLSTimeout,
		FallbackTimeout: o.FallbackTimeout,
		SessionTimeout:  o.SessionTimeout,
		ProxyAddr:       o.ProxyAddr,
		ProxyUser:       o.ProxyUser,
		ProxyPassword:   o.ProxyPassword,
		ProbesPerSecond: o.ProbesPerSecond,
		TLSConfig:       o.TLSConfig,
	}
}

// defaultMXLookup queries the configured nameservers directly and coalesces
// concurrent lookups of the same domain. Without usable nameservers it
// falls back to the system resolver.
func (e *Engine) defaultMXLookup() check.MXLookupFunc {
	client, err := dnsclient.New(dnsclient.Config{
		Servers:        e.opts.DNS.Servers,
		AttemptTimeout: e.opts.DNS.AttemptTimeout,
		Lifetime:       e.opts.DNS.Lifetime,
	})
	if err != nil {
		e.log.WithError(err).Warn("using the system resolver for MX lookups")
		r := &net.Resolver{}
		return dnsflight.New(r.LookupMX, e.opts.DNS.Lifetime).LookupMX
	}
	return dnsflight.New(client.LookupMX, e.opts.DNS.Lifetime).LookupMX
}

// loadDisposable picks the disposable list: explicit domains, then the
// configured file, then the built-in list.
func (e *Engine) loadDisposable() *disposable.Set {
	d := e.opts.Domain
	switch {
	case len(d.DisposableDomains) > 0:
		return disposable.FromSlice(d.DisposableDomains)
	case d.DisposableFile != "":
		set, err := disposable.LoadFile(d.DisposableFile)
		if err != nil {
			e.log.WithError(err).WithField("file", d.DisposableFile).Warn("using the built-in disposable list")
			return disposable.Builtin()
		}
		return set
	}
	return disposable.Builtin()
}
