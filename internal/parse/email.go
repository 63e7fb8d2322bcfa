package parse

import (
	"strings"

	"golang.org/x/net/idna"
)

// Email is the internal representation of a candidate address.
// The check/ packages and the engine receive this as parameter.
type Email struct {
	Raw           string // the input exactly as submitted
	Normalized    string // trimmed and lower-cased
	Local         string // the part before the first @
	Domain        string // the part after the first @, empty when absent
	DomainUnicode string // Domain in Unicode form (for display), Domain when not an IDN
}

// NewEmail splits raw into its parts. It never fails: a string without @
// yields an empty Domain, which the syntax check rejects.
func NewEmail(raw string) Email {
	normalized := Normalize(raw)
	local, domain, _ := strings.Cut(normalized, "@")

	return Email{
		Raw:           raw,
		Normalized:    normalized,
		Local:         local,
		Domain:        domain,
		DomainUnicode: displayDomain(domain),
	}
}

// Normalize trims surrounding whitespace and lower-cases the address.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// displayDomain decodes Punycode labels (xn--mnchen-3ya.de → münchen.de).
// Domains that fail IDNA decoding are returned unchanged.
func displayDomain(domain string) string {
	if !strings.Contains(domain, "xn--") {
		return domain
	}
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		return domain
	}
	return u
}
