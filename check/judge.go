package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/optimode/mailreach/types"
)

// Verdict reasons. They are part of the output contract and never change
// between runs for the same network state.
const (
	ReasonNoMX               = "no valid MX records for domain"
	ReasonVerified           = "SMTP verification passed"
	ReasonTrustedUnconfirmed = "trusted provider but email not confirmed deliverable"
	ReasonUnreachable        = "SMTP unreachable or email not deliverable"
)

// Prober performs the network half of a reachability decision.
// *SMTPProber implements it.
type Prober interface {
	ProbeRecipient(ctx context.Context, host, sender, recipient string) types.ProbeResult
	ProbeConnectivity(ctx context.Context, host, domain string) bool
}

// Judge turns MX and SMTP outcomes into a Verdict.
type Judge struct {
	prober  Prober
	domains *DomainIntel
}

func NewJudge(prober Prober, domains *DomainIntel) *Judge {
	return &Judge{prober: prober, domains: domains}
}

// Decide evaluates, first match wins:
//
//  1. no explicit exchanger: not deliverable
//  2. RCPT TO accepted: deliverable
//  3. RCPT TO failed, trusted provider, exchanger reachable: not deliverable,
//     with a softer reason
//  4. anything else: not deliverable
//
// Provider trust never turns a failed probe into a pass. The connectivity
// probe only runs when branch 3 can still apply.
func (j *Judge) Decide(ctx context.Context, mx types.MXResult, recipient, sender, provider string) types.Verdict {
	if !mx.Found() {
		return types.Verdict{Reason: ReasonNoMX, Detail: "MX lookup failed"}
	}

	probe := j.prober.ProbeRecipient(ctx, mx.Host, sender, recipient)
	if probe.Deliverable {
		return types.Verdict{Deliverable: true, Reason: ReasonVerified, Detail: probe.Reason, Probe: probe}
	}

	if j.domains.IsTrusted(provider) {
		_, domain, _ := strings.Cut(recipient, "@")
		if j.prober.ProbeConnectivity(ctx, mx.Host, domain) {
			return types.Verdict{
				Reason: ReasonTrustedUnconfirmed,
				Detail: fmt.Sprintf("SMTP accessible for %s, but RCPT check failed: %s", provider, probe.Reason),
				Probe:  probe,
			}
		}
	}

	return types.Verdict{Reason: ReasonUnreachable, Detail: probe.Reason, Probe: probe}
}
