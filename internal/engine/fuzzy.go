package engine

import "strings"

// minFuzzyTermLen guards edit-distance matching: very short query terms
// would otherwise match half the token space at distance 1.
const minFuzzyTermLen = 4

// fuzzyMatch reports whether an index token matches a query term: exact
// equality, either string a prefix of the other, or edit distance at most
// one for terms of at least four characters.
func fuzzyMatch(term, token string) bool {
	if term == token {
		return true
	}
	if strings.HasPrefix(token, term) || strings.HasPrefix(term, token) {
		return true
	}
	if len(term) >= minFuzzyTermLen {
		return levenshtein(term, token) <= 1
	}
	return false
}

// levenshtein computes edit distance with unit insert, delete, and
// substitute costs, using the two-row dynamic-programming formulation.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // delete
				curr[j-1]+1,    // insert
				prev[j-1]+cost, // substitute
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
