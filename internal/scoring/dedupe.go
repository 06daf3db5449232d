package scoring

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// dedupeTitlePrefix is the number of title characters that make up the dedupe key
const dedupeTitlePrefix = 50

type dedupeKey struct {
	sector string
	title  string
}

// Deduplicate collapses candidates sharing the same (lowercased sector,
// first 50 characters of lowercased title) key. The first occurrence wins
// and input order is preserved.
func Deduplicate(candidates []Candidate, logger *slog.Logger) []Candidate {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[dedupeKey]struct{}, len(candidates))
	deduplicated := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		key := dedupeKey{
			sector: strings.ToLower(c.Sector),
			title:  prefix(strings.ToLower(c.Title), dedupeTitlePrefix),
		}
		if _, dup := seen[key]; dup {
			logger.Debug("Skipping duplicate candidate",
				"title", key.title,
				"sector", key.sector,
				"raw_candidate_id", c.RawCandidateID,
			)
			continue
		}
		seen[key] = struct{}{}
		deduplicated = append(deduplicated, c)
	}

	return deduplicated
}

// prefix returns the first n runes of s
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
