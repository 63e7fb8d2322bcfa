package check

import "regexp"

// syntaxPattern accepts local-part@domain.tld where the local part uses
// letters, digits and ._%+- and the final label has at least two letters.
var syntaxPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidSyntax reports whether addr has the shape of a deliverable address.
// It performs no network access.
func ValidSyntax(addr string) bool {
	return syntaxPattern.MatchString(addr)
}
