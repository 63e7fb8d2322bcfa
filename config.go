package mailreach

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables read by LoadOptions.
const (
	EnvDNSServers          = "MAILREACH_DNS_SERVERS" // comma separated
	EnvDNSAttemptTimeout   = "MAILREACH_DNS_ATTEMPT_TIMEOUT"
	EnvDNSLifetime         = "MAILREACH_DNS_LIFETIME"
	EnvSMTPHeloDomain      = "MAILREACH_SMTP_HELO_DOMAIN"
	EnvSMTPMailFrom        = "MAILREACH_SMTP_MAIL_FROM"
	EnvSMTPConnectTimeout  = "MAILREACH_SMTP_CONNECT_TIMEOUT"
	EnvSMTPTLSTimeout      = "MAILREACH_SMTP_TLS_TIMEOUT"
	EnvSMTPFallbackTimeout = "MAILREACH_SMTP_FALLBACK_TIMEOUT"
	EnvSMTPSessionTimeout  = "MAILREACH_SMTP_SESSION_TIMEOUT"
	EnvSMTPProxy           = "MAILREACH_SMTP_PROXY"
	EnvSMTPProxyUser       = "MAILREACH_SMTP_PROXY_USER"
	EnvSMTPProxyPassword   = "MAILREACH_SMTP_PROXY_PASSWORD"
	EnvSMTPProbesPerSecond = "MAILREACH_SMTP_PROBES_PER_SECOND"
	EnvDisposableFile      = "MAILREACH_DISPOSABLE_FILE"
	EnvTypoThreshold       = "MAILREACH_TYPO_THRESHOLD"
	EnvBatchWorkers        = "MAILREACH_BATCH_WORKERS"
	EnvWhoisEnabled        = "MAILREACH_WHOIS_ENABLED"
	EnvWhoisTimeout        = "MAILREACH_WHOIS_TIMEOUT"
)

var validate = validator.New()

// LoadOptions builds Options from the environment. The given .env files are
// loaded first; variables already set in the process environment win.
// Unset variables keep their defaults. The result is validated.
func LoadOptions(files ...string) (Options, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Options{}, fmt.Errorf("%w: load env files: %v", ErrInvalidOptions, err)
		}
	}

	env := envReader{}
	o := DefaultOptions()

	if servers := getEnv(EnvDNSServers, ""); servers != "" {
		for _, s := range strings.Split(servers, ",") {
			if s = strings.TrimSpace(s); s != "" {
				o.DNS.Servers = append(o.DNS.Servers, s)
			}
		}
	}
	o.DNS.AttemptTimeout = env.duration(EnvDNSAttemptTimeout, o.DNS.AttemptTimeout)
	o.DNS.Lifetime = env.duration(EnvDNSLifetime, o.DNS.Lifetime)

	o.SMTP.HeloDomain = getEnv(EnvSMTPHeloDomain, o.SMTP.HeloDomain)
	o.SMTP.MailFrom = getEnv(EnvSMTPMailFrom, o.SMTP.MailFrom)
	o.SMTP.ConnectTimeout = env.duration(EnvSMTPConnectTimeout, o.SMTP.ConnectTimeout)
	o.SMTP.TLSTimeout = env.duration(EnvSMTPTLSTimeout, o.SMTP.TLSTimeout)
	o.SMTP.FallbackTimeout = env.duration(EnvSMTPFallbackTimeout, o.SMTP.FallbackTimeout)
	o.SMTP.SessionTimeout = env.duration(EnvSMTPSessionTimeout, o.SMTP.SessionTimeout)
	o.SMTP.ProxyAddr = getEnv(EnvSMTPProxy, o.SMTP.ProxyAddr)
	o.SMTP.ProxyUser = getEnv(EnvSMTPProxyUser, o.SMTP.ProxyUser)
	o.SMTP.ProxyPassword = getEnv(EnvSMTPProxyPassword, o.SMTP.ProxyPassword)
	o.SMTP.ProbesPerSecond = env.number(EnvSMTPProbesPerSecond, o.SMTP.ProbesPerSecond)

	o.Domain.DisposableFile = getEnv(EnvDisposableFile, o.Domain.DisposableFile)
	o.Domain.TypoThreshold = env.integer(EnvTypoThreshold, o.Domain.TypoThreshold)

	o.Batch.Workers = env.integer(EnvBatchWorkers, o.Batch.Workers)

	o.Whois.Enabled = env.boolean(EnvWhoisEnabled, o.Whois.Enabled)
	o.Whois.Timeout = env.duration(EnvWhoisTimeout, o.Whois.Timeout)

	if len(env.errs) > 0 {
		return Options{}, fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(env.errs...))
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate checks the option values. The error wraps ErrInvalidOptions.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, ", "))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// envReader parses typed variables and collects every parse error.
type envReader struct {
	errs []error
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (r *envReader) integer(key string, fallback int) int {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) number(key string, fallback float64) float64 {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func (r *envReader) boolean(key string, fallback bool) bool {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}
