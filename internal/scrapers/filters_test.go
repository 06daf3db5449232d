package scrapers

import (
	"testing"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
	"github.com/stretchr/testify/assert"
)

func TestFilterAllows(t *testing.T) {
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	f := Filter{
		MinEngagement: 5,
		MaxAge:        48 * time.Hour,
		Keywords:      PainKeywords,
		Now:           func() time.Time { return now },
	}

	tests := []struct {
		name string
		item RawItem
		want bool
	}{
		{"matches", RawItem{Title: "Manual invoicing is so frustrating", Upvotes: 10, CreatedAt: now.Add(-time.Hour)}, true},
		{"keyword in description", RawItem{Title: "Invoices", Description: "Looking for a better tool", Upvotes: 5, CreatedAt: now}, true},
		{"low engagement", RawItem{Title: "Big problem", Upvotes: 4, CreatedAt: now}, false},
		{"too old", RawItem{Title: "Big problem", Upvotes: 50, CreatedAt: now.Add(-72 * time.Hour)}, false},
		{"no keyword", RawItem{Title: "Show off my weekend", Upvotes: 50, CreatedAt: now}, false},
		{"missing timestamp passes age check", RawItem{Title: "I need help", Upvotes: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Allows(tt.item))
		})
	}
}

func TestMatchesAnyIsCaseInsensitive(t *testing.T) {
	assert.True(t, MatchesAny("ASK HN: anything", HackerNewsKeywords))
	assert.False(t, MatchesAny("Launch day", HackerNewsKeywords))
}

func TestFilterForOverrides(t *testing.T) {
	f := filterFor(sources.FeedConfig{MinEngagement: 20, MaxAgeDays: 3, Keywords: []string{"crm"}}, Filter{MinEngagement: 5})

	assert.Equal(t, 20, f.MinEngagement)
	assert.Equal(t, 72*time.Hour, f.MaxAge)
	assert.Equal(t, []string{"crm"}, f.Keywords)
}

func TestStripHTML(t *testing.T) {
	got := stripHTML(`I keep doing this <i>by hand</i>.<p>Is there a tool &amp; a <a href="https://x.io">service</a>?`)
	assert.Equal(t, "I keep doing this by hand.\n\nIs there a tool & a service?", got)
	assert.Equal(t, "", stripHTML(""))
}
