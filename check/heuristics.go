package check

import (
	"strings"
	"unicode"

	"github.com/optimode/mailreach/types"
)

// roleWords mark administrative or shared mailboxes.
var roleWords = []string{"admin", "info", "support", "sales", "contact"}

var acceptAllWords = []string{"accept", "all"}

var noReplyWords = []string{"no-reply", "noreply"}

// Analyze derives the string-only signals of an address. Flags are read
// from normalized; character tallies are taken over raw, in runes, and
// always add up to the rune length of raw.
func Analyze(raw, normalized string) types.Heuristics {
	h := types.Heuristics{
		HasRole:     containsAny(normalized, roleWords),
		IsAcceptAll: containsAny(normalized, acceptAllWords),
		HasNoReply:  containsAny(normalized, noReplyWords),
	}

	total := 0
	for _, r := range raw {
		total++
		switch {
		case unicode.IsLetter(r):
			h.AlphaCount++
		case unicode.IsDigit(r):
			h.DigitCount++
		}
	}
	h.SymbolCount = total - h.AlphaCount - h.DigitCount

	local, _, _ := strings.Cut(normalized, "@")
	h.GuessedDisplayName = GuessDisplayName(local)
	return h
}

// GuessDisplayName turns a local part into a human-looking name:
// "john.doe_99" → "John Doe". It returns "N/A" when nothing is left.
func GuessDisplayName(local string) string {
	kept := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r == '.', r == '_', r == '-':
			return ' '
		}
		return -1
	}, local)

	tokens := strings.Fields(kept)
	if len(tokens) == 0 {
		return "N/A"
	}
	for i, tok := range tokens {
		tokens[i] = strings.ToUpper(tok[:1]) + strings.ToLower(tok[1:])
	}
	return strings.Join(tokens, " ")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
