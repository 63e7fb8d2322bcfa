// Package disposable holds the set of known throwaway mail domains.
package disposable

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed list.txt
var builtinList string

// Set is an immutable set of disposable domains. It is safe for
// concurrent use because nothing mutates it after construction.
type Set struct {
	domains map[string]struct{}
}

// Builtin returns the minimal embedded set.
func Builtin() *Set {
	s, _ := Parse(strings.NewReader(builtinList))
	return s
}

// FromSlice builds a set from domain names. Blank entries are skipped.
func FromSlice(domains []string) *Set {
	s := &Set{domains: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		s.add(d)
	}
	return s
}

// Parse reads one domain per line. Blank lines and lines starting
// with # are ignored.
func Parse(r io.Reader) (*Set, error) {
	s := &Set{domains: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		s.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read disposable list: %w", err)
	}
	return s, nil
}

// LoadFile parses the list stored at path.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open disposable list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

func (s *Set) add(domain string) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain != "" {
		s.domains[domain] = struct{}{}
	}
}

// Contains reports whether domain is in the set (case-insensitive).
func (s *Set) Contains(domain string) bool {
	_, ok := s.domains[strings.ToLower(domain)]
	return ok
}

// Len returns the number of domains in the set.
func (s *Set) Len() int {
	return len(s.domains)
}
