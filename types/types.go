// Package types contains the shared types for mailreach.
// This package does not import anything from other mailreach packages
// to avoid circular imports.
package types

// ProviderUnknown is reported when a domain is not in the provider table.
const ProviderUnknown = "Unknown"

// AddressRecord is the outcome of checking a single address.
// A record is never modified after the engine returns it.
type AddressRecord struct {
	Raw           string `json:"raw"`
	Normalized    string `json:"normalized"`
	Domain        string `json:"domain"`
	DomainUnicode string `json:"domainUnicode,omitempty"`
	SyntaxValid   bool   `json:"syntaxValid"`

	// MX is the preferred exchanger, empty when none could be resolved.
	MX         string `json:"mx,omitempty"`
	ImplicitMX bool   `json:"implicitMx"`

	SMTPDeliverable  bool   `json:"smtpDeliverable"`
	SMTPReason       string `json:"smtpReason"`
	ValidationReason string `json:"validationReason"`

	IsDisposable bool   `json:"isDisposable"`
	HasRole      bool   `json:"hasRole"`
	IsAcceptAll  bool   `json:"isAcceptAll"`
	HasNoReply   bool   `json:"hasNoReply"`
	Provider     string `json:"provider"`

	AlphaCount  int `json:"alphaCount"`
	DigitCount  int `json:"digitCount"`
	SymbolCount int `json:"symbolCount"`

	Score   int      `json:"score"`
	IsRisky bool     `json:"isRisky"`
	Tags    []string `json:"tags,omitempty"`

	GuessedDisplayName string `json:"guessedDisplayName"`
	Suggestion         string `json:"suggestion,omitempty"`
	Registrar          string `json:"registrar,omitempty"`
	RegistrantCountry  string `json:"registrantCountry,omitempty"`
}

// MXResult is the outcome of an MX resolution.
type MXResult struct {
	Host     string `json:"host,omitempty"`
	Implicit bool   `json:"implicit"`
}

// Found reports whether an explicit exchanger was resolved.
func (m MXResult) Found() bool { return m.Host != "" }

// ProbeResult is the outcome of an SMTP recipient probe.
// Code is 0 when the session failed before a reply was read.
type ProbeResult struct {
	Deliverable bool   `json:"deliverable"`
	Code        int    `json:"code,omitempty"`
	Reason      string `json:"reason"`
}

// Verdict is the reachability decision for one address.
type Verdict struct {
	Deliverable bool        `json:"deliverable"`
	Reason      string      `json:"reason"`
	Detail      string      `json:"detail"`
	Probe       ProbeResult `json:"probe"`
}

// Heuristics are the string-only signals derived from an address.
type Heuristics struct {
	HasRole            bool   `json:"hasRole"`
	IsAcceptAll        bool   `json:"isAcceptAll"`
	HasNoReply         bool   `json:"hasNoReply"`
	AlphaCount         int    `json:"alphaCount"`
	DigitCount         int    `json:"digitCount"`
	SymbolCount        int    `json:"symbolCount"`
	GuessedDisplayName string `json:"guessedDisplayName"`
}

// Score is a risk score with the tags explaining every missed point.
type Score struct {
	Value int      `json:"value"`
	Risky bool     `json:"risky"`
	Tags  []string `json:"tags,omitempty"`
}
