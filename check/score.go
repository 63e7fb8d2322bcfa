package check

import "github.com/optimode/mailreach/types"

const (
	weightSyntax      = 10
	weightDeliverable = 30
	weightDisposable  = 15
	weightRole        = 10
	weightAcceptAll   = 10
	weightNoReply     = 10
	weightTrusted     = 15

	// RiskThreshold is the lowest score that is not risky.
	RiskThreshold = 60
)

// Signals are the inputs of the risk score.
type Signals struct {
	SyntaxValid     bool
	Deliverable     bool
	Disposable      bool
	TrustedProvider bool
	Heuristics      types.Heuristics
}

// Score computes the 0-100 risk score. Invalid or undeliverable addresses
// get no partial credit: 0 and risky. Every withheld weight adds a tag.
func Score(s Signals) types.Score {
	if !s.SyntaxValid {
		return types.Score{Risky: true, Tags: []string{"Invalid syntax"}}
	}
	if !s.Deliverable {
		return types.Score{Risky: true, Tags: []string{"SMTP undeliverable"}}
	}

	score := weightSyntax + weightDeliverable
	var tags []string
	award := func(ok bool, weight int, tag string) {
		if ok {
			score += weight
			return
		}
		tags = append(tags, tag)
	}
	award(!s.Disposable, weightDisposable, "Disposable domain")
	award(!s.Heuristics.HasRole, weightRole, "Role-based email")
	award(!s.Heuristics.IsAcceptAll, weightAcceptAll, "Accept-all domain")
	award(!s.Heuristics.HasNoReply, weightNoReply, "No-reply address")
	award(s.TrustedProvider, weightTrusted, "Untrusted provider")

	return types.Score{Value: score, Risky: score < RiskThreshold, Tags: tags}
}
