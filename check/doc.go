// Package check contains the building blocks of the mailreach pipeline:
// syntax validation, domain intelligence, MX resolution, SMTP probing,
// heuristics, the reachability judge and the risk score.
// These types can be used directly, but the recommended approach is
// to use the Engine from the github.com/optimode/mailreach package.
package check
