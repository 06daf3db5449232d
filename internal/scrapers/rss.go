package scrapers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
	"github.com/mmcdole/gofeed"
)

// RSSScraper collects entries from any RSS or Atom feed
type RSSScraper struct {
	base
	parser *gofeed.Parser
	filter Filter
}

// NewRSSScraper creates a generic feed scraper for def.URL
func NewRSSScraper(def sources.Definition, httpClient *http.Client, logger *slog.Logger) *RSSScraper {
	parser := gofeed.NewParser()
	parser.Client = httpClient

	return &RSSScraper{
		base:   base{def: def, logger: logger},
		parser: parser,
		filter: filterFor(def.Config, Filter{
			MaxAge:   7 * 24 * time.Hour,
			Keywords: PainKeywords,
		}),
	}
}

// FetchRaw parses the feed and returns entries matching the relevance filter
func (r *RSSScraper) FetchRaw(ctx context.Context) ([]RawItem, error) {
	if r.def.URL == "" {
		return nil, fmt.Errorf("rss source %q has no url", r.def.Name)
	}

	feed, err := r.parser.ParseURLWithContext(r.def.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	limit := r.def.Config.Limit
	var items []RawItem
	for _, entry := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}

		id := entry.GUID
		if id == "" {
			id = entry.Link
		}

		description := entry.Description
		if description == "" {
			description = entry.Content
		}

		item := RawItem{
			ID:          id,
			Title:       entry.Title,
			Description: stripHTML(description),
			URL:         entry.Link,
			Extra: map[string]any{
				"feed": feed.Title,
			},
		}
		switch {
		case entry.PublishedParsed != nil:
			item.CreatedAt = entry.PublishedParsed.UTC()
		case entry.UpdatedParsed != nil:
			item.CreatedAt = entry.UpdatedParsed.UTC()
		}
		if entry.Author != nil && entry.Author.Name != "" {
			item.Extra["author"] = entry.Author.Name
		}

		if r.filter.Allows(item) {
			items = append(items, item)
		}
	}

	return items, nil
}
