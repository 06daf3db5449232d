package scrapers

import (
	"strings"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
)

// PainKeywords are the "pain/need" terms used for Reddit and generic feeds
var PainKeywords = []string{
	"problem", "issue", "frustrat", "annoying", "pain",
	"need", "wish", "looking for", "how to", "help",
	"expensive", "inefficient", "manual", "waste time",
	"automate", "difficult", "hard to", "struggle",
}

// HackerNewsKeywords are the relevance terms for HackerNews stories
var HackerNewsKeywords = []string{
	"ask hn", "problem", "issue", "frustrat", "need",
	"looking for", "how to", "help", "recommend",
	"better way", "automate", "tool for", "solution",
	"struggling", "inefficient", "manual",
}

// Filter is a relevance check applied before normalization.
// Zero-valued fields disable the corresponding check.
type Filter struct {
	MinEngagement int
	MaxAge        time.Duration
	Keywords      []string
	Now           func() time.Time
}

// Allows reports whether item passes the engagement floor, the recency
// window and the keyword match.
func (f Filter) Allows(item RawItem) bool {
	if item.Upvotes < f.MinEngagement {
		return false
	}

	if f.MaxAge > 0 && !item.CreatedAt.IsZero() {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		if now().Sub(item.CreatedAt) > f.MaxAge {
			return false
		}
	}

	if len(f.Keywords) > 0 && !MatchesAny(item.Title+" "+item.Description, f.Keywords) {
		return false
	}

	return true
}

// MatchesAny reports whether any keyword appears in text, case-insensitively
func MatchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// filterFor applies the per-feed overrides from the registry on top of the feed defaults
func filterFor(cfg sources.FeedConfig, defaults Filter) Filter {
	f := defaults
	if cfg.MinEngagement > 0 {
		f.MinEngagement = cfg.MinEngagement
	}
	if cfg.MaxAgeDays > 0 {
		f.MaxAge = time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
	}
	if len(cfg.Keywords) > 0 {
		f.Keywords = cfg.Keywords
	}
	return f
}
