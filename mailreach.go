// Package mailreach decides whether email addresses can receive mail and
// how risky they are to send to. Each address goes through syntax, MX
// resolution, an SMTP RCPT probe, domain intelligence and string
// heuristics, and ends up as an AddressRecord with a 0-100 risk score.
//
// Single address:
//
//	rec, err := mailreach.New().Check(ctx, "user@example.com", "verify@myapp.com")
//
// Batch with a budget (the caller debits BatchResult.Units afterwards):
//
//	res, err := mailreach.New(mailreach.Options{
//	    SMTP:  mailreach.SMTPOptions{HeloDomain: "myapp.com"},
//	    Batch: mailreach.BatchOptions{Workers: 20},
//	}).RunBatch(ctx, addresses, "verify@myapp.com", balance)
//
// Network failures never surface as errors: they become negative results
// with a reason. Only input errors (ErrInvalidSyntax, ErrEmptyBatch,
// ErrInsufficientBudget) and configuration errors are returned.
package mailreach

import "github.com/optimode/mailreach/types"

// AddressRecord is a re-export from the types package so that consumers
// don't need to import the types package directly.
type AddressRecord = types.AddressRecord

// ProviderUnknown is re-exported.
const ProviderUnknown = types.ProviderUnknown
