package check

import (
	"strings"

	"github.com/optimode/mailreach/internal/disposable"
	"github.com/optimode/mailreach/internal/levenshtein"
	"github.com/optimode/mailreach/types"
)

// defaultProviders maps well-known mailbox domains to their operator.
var defaultProviders = map[string]string{
	"gmail.com":      "Google",
	"googlemail.com": "Google",
	"yahoo.com":      "Yahoo",
	"ymail.com":      "Yahoo",
	"outlook.com":    "Microsoft",
	"hotmail.com":    "Microsoft",
	"live.com":       "Microsoft",
	"aol.com":        "AOL",
	"icloud.com":     "Apple",
	"me.com":         "Apple",
	"protonmail.com": "ProtonMail",
	"zoho.com":       "Zoho",
	"gmx.com":        "GMX",
	"yandex.com":     "Yandex",
}

// defaultTrusted is the set of operators whose infrastructure earns the
// trusted-provider weight. Keys are lower-case.
var defaultTrusted = map[string]struct{}{
	"google":    {},
	"yahoo":     {},
	"microsoft": {},
	"apple":     {},
}

// DomainConfig is the domain intelligence configuration.
type DomainConfig struct {
	// Disposable is the disposable-domain set. Nil means the built-in set.
	Disposable *disposable.Set
	// TypoThreshold is the maximum edit distance for a provider typo
	// suggestion. Zero disables suggestions.
	TypoThreshold int
}

// DomainIntel answers questions about a domain from static reference data.
// It is read-only after construction and safe for concurrent use.
type DomainIntel struct {
	disposable    *disposable.Set
	providers     map[string]string
	trusted       map[string]struct{}
	typoThreshold int
}

func NewDomainIntel(cfg DomainConfig) *DomainIntel {
	set := cfg.Disposable
	if set == nil {
		set = disposable.Builtin()
	}
	return &DomainIntel{
		disposable:    set,
		providers:     defaultProviders,
		trusted:       defaultTrusted,
		typoThreshold: cfg.TypoThreshold,
	}
}

// IsDisposable reports whether domain hands out throwaway mailboxes.
func (d *DomainIntel) IsDisposable(domain string) bool {
	return d.disposable.Contains(domain)
}

// ProviderFor returns the mailbox operator of domain, or "Unknown".
func (d *DomainIntel) ProviderFor(domain string) string {
	if p, ok := d.providers[strings.ToLower(domain)]; ok {
		return p
	}
	return types.ProviderUnknown
}

// IsTrusted reports whether provider is one of the trusted operators.
func (d *DomainIntel) IsTrusted(provider string) bool {
	_, ok := d.trusted[strings.ToLower(provider)]
	return ok
}

// Suggest returns the closest known provider domain when domain looks
// like a typo of one (gmial.com → gmail.com). It returns "" for exact
// matches and for domains that are not close to any provider.
func (d *DomainIntel) Suggest(domain string) string {
	if d.typoThreshold <= 0 || domain == "" {
		return ""
	}
	domain = strings.ToLower(domain)
	if _, ok := d.providers[domain]; ok {
		return ""
	}

	best, bestDist := "", d.typoThreshold+1
	for known := range d.providers {
		dist, ok := levenshtein.Within(domain, known, d.typoThreshold)
		// Ties resolve alphabetically so the answer is stable.
		if ok && (dist < bestDist || (dist == bestDist && known < best)) {
			best, bestDist = known, dist
		}
	}
	return best
}
