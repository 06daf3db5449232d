package scoring

import "sort"

// DefaultTopN is the number of candidates kept for the daily report
const DefaultTopN = 10

// Rank returns a copy of candidates sorted by total score, highest first.
// Equal scores keep their input order.
func Rank(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})

	return ranked
}

// TopN ranks candidates and keeps the first n. A non-positive n falls back to DefaultTopN.
func TopN(candidates []Candidate, n int) []Candidate {
	if n <= 0 {
		n = DefaultTopN
	}

	ranked := Rank(candidates)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
