package check

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"

	"github.com/optimode/mailreach/internal/smtpwire"
	"github.com/optimode/mailreach/types"
)

// DialFunc opens a transport connection. net.Dialer.DialContext and
// proxy.ContextDialer.DialContext both satisfy it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// SMTPConfig is the SMTP prober configuration.
type SMTPConfig struct {
	// HeloDomain is sent with EHLO/HELO. Empty means the sender's domain.
	HeloDomain string
	// ConnectTimeout bounds a plain connect on ports 25 and 587.
	ConnectTimeout time.Duration
	// TLSTimeout bounds connect plus TLS handshake on port 465.
	TLSTimeout time.Duration
	// FallbackTimeout bounds the last-chance connect to the bare domain.
	FallbackTimeout time.Duration
	// SessionTimeout bounds a whole recipient probe.
	SessionTimeout time.Duration
	// TLSConfig is the base configuration for the port 465 handshake.
	// ServerName is filled in per exchanger when empty.
	TLSConfig *tls.Config

	// ProxyAddr routes every SMTP connection through a SOCKS5 proxy.
	ProxyAddr     string
	ProxyUser     string
	ProxyPassword string

	// ProbesPerSecond limits SMTP operations across all callers. Zero
	// means unlimited.
	ProbesPerSecond float64
}

// SMTPProber opens short-lived SMTP connections to mail exchangers.
// Every method returns a result value: network and protocol failures
// become negative outcomes, never errors.
type SMTPProber struct {
	cfg     SMTPConfig
	dial    DialFunc
	limiter *rate.Limiter
}

// NewSMTPProber creates a prober dialing directly or through the
// configured SOCKS5 proxy.
func NewSMTPProber(cfg SMTPConfig) (*SMTPProber, error) {
	dial, err := newDialFunc(cfg)
	if err != nil {
		return nil, err
	}
	return NewSMTPProberWithDial(cfg, dial), nil
}

// NewSMTPProberWithDial creates a prober with a custom dial function (for testing).
func NewSMTPProberWithDial(cfg SMTPConfig, dial DialFunc) *SMTPProber {
	p := &SMTPProber{cfg: cfg, dial: dial}
	if cfg.ProbesPerSecond > 0 {
		burst := max(1, int(cfg.ProbesPerSecond))
		p.limiter = rate.NewLimiter(rate.Limit(cfg.ProbesPerSecond), burst)
	}
	return p
}

func newDialFunc(cfg SMTPConfig) (DialFunc, error) {
	direct := &net.Dialer{}
	if cfg.ProxyAddr == "" {
		return direct.DialContext, nil
	}

	var auth *proxy.Auth
	if cfg.ProxyUser != "" {
		auth = &proxy.Auth{User: cfg.ProxyUser, Password: cfg.ProxyPassword}
	}
	d, err := proxy.SOCKS5("tcp", cfg.ProxyAddr, auth, direct)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy %s: %w", cfg.ProxyAddr, err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, address string) (net.Conn, error) {
		return d.Dial(network, address)
	}, nil
}

// endpoint is one connectivity attempt.
type endpoint struct {
	host    string
	port    string
	tls     bool
	timeout time.Duration
}

// ProbeConnectivity reports whether any SMTP port of the exchanger accepts
// a connection. Ports 25 and 587 need a plain connect; 465 additionally
// needs a completed TLS handshake. When all three fail, the bare domain
// is tried on port 25. This proves transport reachability only.
func (p *SMTPProber) ProbeConnectivity(ctx context.Context, host, domain string) bool {
	if err := p.wait(ctx); err != nil {
		return false
	}

	attempts := []endpoint{
		{host: host, port: "25", timeout: p.cfg.ConnectTimeout},
		{host: host, port: "587", timeout: p.cfg.ConnectTimeout},
		{host: host, port: "465", tls: true, timeout: p.cfg.TLSTimeout},
		{host: domain, port: "25", timeout: p.cfg.FallbackTimeout},
	}
	for _, ep := range attempts {
		if ep.host == "" {
			continue
		}
		if p.connect(ctx, ep) == nil {
			return true
		}
	}
	return false
}

func (p *SMTPProber) connect(ctx context.Context, ep endpoint) error {
	if ep.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ep.timeout)
		defer cancel()
	}

	conn, err := p.dial(ctx, "tcp", net.JoinHostPort(ep.host, ep.port))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if !ep.tls {
		return nil
	}
	tc := tls.Client(conn, p.tlsConfig(ep.host))
	return tc.HandshakeContext(ctx)
}

func (p *SMTPProber) tlsConfig(host string) *tls.Config {
	var cfg *tls.Config
	if p.cfg.TLSConfig != nil {
		cfg = p.cfg.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

// ProbeRecipient asks the exchanger whether it accepts mail for recipient:
// banner, EHLO (HELO fallback), MAIL FROM, RCPT TO on port 25 over a fresh
// connection. Only a 250 reply to RCPT TO counts as deliverable. The
// session always ends with a best-effort QUIT and a closed connection.
func (p *SMTPProber) ProbeRecipient(ctx context.Context, host, sender, recipient string) types.ProbeResult {
	if p.cfg.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.SessionTimeout)
		defer cancel()
	}

	if err := p.wait(ctx); err != nil {
		return types.ProbeResult{Reason: fmt.Sprintf("probe not started: %v", err)}
	}

	conn, err := p.dial(ctx, "tcp", net.JoinHostPort(host, "25"))
	if err != nil {
		return types.ProbeResult{Reason: fmt.Sprintf("connect %s: %v", host, err)}
	}

	s := smtpwire.NewSession(conn)
	defer s.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = s.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = s.SetDeadline(time.Now()) })
	defer stop()

	banner, err := s.Banner()
	if err != nil {
		return types.ProbeResult{Reason: err.Error()}
	}
	if banner.Code != 220 {
		return types.ProbeResult{Code: banner.Code, Reason: "greeting rejected: " + banner.Text}
	}

	hello, err := s.Hello(p.heloDomain(sender))
	if err != nil {
		return types.ProbeResult{Reason: fmt.Sprintf("HELO failed: %v", err)}
	}
	if hello.Code != 250 {
		return types.ProbeResult{Code: hello.Code, Reason: "HELO rejected: " + hello.Text}
	}

	mail, err := s.Cmd("MAIL FROM:<%s>", sender)
	if err != nil {
		return types.ProbeResult{Reason: fmt.Sprintf("MAIL FROM failed: %v", err)}
	}
	if mail.Code != 250 {
		return types.ProbeResult{Code: mail.Code, Reason: "MAIL FROM rejected: " + mail.Text}
	}

	rcpt, err := s.Cmd("RCPT TO:<%s>", recipient)
	if err != nil {
		return types.ProbeResult{Reason: fmt.Sprintf("RCPT TO failed: %v", err)}
	}
	if rcpt.Code != 250 {
		return types.ProbeResult{Code: rcpt.Code, Reason: "RCPT TO rejected: " + rcpt.Text}
	}
	return types.ProbeResult{Deliverable: true, Code: rcpt.Code, Reason: "RCPT TO accepted: " + rcpt.Text}
}

func (p *SMTPProber) heloDomain(sender string) string {
	if p.cfg.HeloDomain != "" {
		return p.cfg.HeloDomain
	}
	if _, domain, ok := strings.Cut(sender, "@"); ok && domain != "" {
		return domain
	}
	return "localhost"
}

func (p *SMTPProber) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
