package identity

// Ratio returns a normalized similarity score in [0, 1] between two raw
// names. Both are canonicalized first, so the score is insensitive to case,
// punctuation, and generational suffixes. 1.0 means the canonical forms are
// identical; 0.0 means nothing matches.
func Ratio(a, b string) float64 {
	ca, cb := Canonicalize(a), Canonicalize(b)
	if ca == cb {
		return 1.0
	}
	if ca == "" || cb == "" {
		return 0.0
	}
	maxLen := len(ca)
	if len(cb) > maxLen {
		maxLen = len(cb)
	}
	return 1.0 - float64(levenshtein(ca, cb))/float64(maxLen)
}

// levenshtein calculates the edit distance between two strings using a
// two-row dynamic programming table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
