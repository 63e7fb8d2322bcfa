// Package levenshtein computes edit distances between domain names.
package levenshtein

// Within reports the edit distance between s and t when it does not
// exceed limit. The second return value is false as soon as every
// partial alignment is already further than limit apart, so long
// unrelated strings are rejected without filling the whole matrix.
func Within(s, t string, limit int) (int, bool) {
	a, b := []rune(s), []rune(t)
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > limit {
		return 0, false
	}

	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}

	for j, cb := range b {
		diag := row[0]
		row[0] = j + 1
		best := row[0]
		for i, ca := range a {
			up := row[i+1]
			cost := diag
			if ca != cb {
				cost++
			}
			row[i+1] = min(cost, up+1, row[i]+1)
			diag = up
			best = min(best, row[i+1])
		}
		if best > limit {
			return 0, false
		}
	}

	d := row[len(a)]
	return d, d <= limit
}
