package scrapers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
	"golang.org/x/time/rate"
)

const (
	hackerNewsDefaultAPIBase = "https://hacker-news.firebaseio.com/v0"
	hackerNewsDefaultLimit   = 20
	hackerNewsItemURL        = "https://news.ycombinator.com/item?id=%d"
)

// HackerNewsScraper collects Ask HN and top stories from the Firebase API
type HackerNewsScraper struct {
	base
	apiBase    string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
	filter     Filter
}

// NewHackerNewsScraper creates a HackerNews scraper. Item requests are paced
// at one every 100ms.
func NewHackerNewsScraper(def sources.Definition, httpClient *http.Client, logger *slog.Logger) *HackerNewsScraper {
	apiBase := def.Config.APIBase
	if apiBase == "" {
		apiBase = hackerNewsDefaultAPIBase
	}
	limit := def.Config.Limit
	if limit <= 0 {
		limit = hackerNewsDefaultLimit
	}

	return &HackerNewsScraper{
		base:       base{def: def, logger: logger},
		apiBase:    strings.TrimRight(apiBase, "/"),
		limit:      limit,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		filter: filterFor(def.Config, Filter{
			MinEngagement: 10,
			Keywords:      HackerNewsKeywords,
		}),
	}
}

type hnItem struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
}

// FetchRaw fetches the Ask HN and top story lists. It only fails when both lists fail.
func (h *HackerNewsScraper) FetchRaw(ctx context.Context) ([]RawItem, error) {
	seen := make(map[string]struct{})
	var items []RawItem
	var errs []error

	for _, list := range []string{"askstories", "topstories"} {
		stories, err := h.fetchList(ctx, list)
		if err != nil {
			h.logger.Error("Failed to fetch HackerNews list", "list", list, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, s := range stories {
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			items = append(items, s)
		}
		h.logger.Info("Fetched relevant HackerNews stories", "list", list, "count", len(stories))
	}

	if len(errs) == 2 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (h *HackerNewsScraper) fetchList(ctx context.Context, list string) ([]RawItem, error) {
	var ids []int64
	if err := h.getJSON(ctx, fmt.Sprintf("%s/%s.json", h.apiBase, list), &ids); err != nil {
		return nil, err
	}
	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}

	var stories []RawItem
	for _, id := range ids {
		if err := h.limiter.Wait(ctx); err != nil {
			h.logger.Warn("HackerNews fetch budget exhausted, keeping partial list",
				"list", list, "fetched", len(stories), "error", err)
			break
		}

		story, err := h.fetchItem(ctx, id)
		if err != nil {
			h.logger.Warn("Failed to fetch HackerNews item", "item_id", id, "error", err)
			continue
		}
		if story != nil && h.filter.Allows(*story) {
			stories = append(stories, *story)
		}
	}
	return stories, nil
}

func (h *HackerNewsScraper) fetchItem(ctx context.Context, id int64) (*RawItem, error) {
	var item *hnItem
	if err := h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.apiBase, id), &item); err != nil {
		return nil, err
	}
	if item == nil || item.Type != "story" {
		return nil, nil
	}

	discussion := fmt.Sprintf(hackerNewsItemURL, item.ID)
	link := item.URL
	if link == "" {
		link = discussion
	}

	story := &RawItem{
		ID:          itoa(item.ID),
		Title:       item.Title,
		Description: stripHTML(item.Text),
		URL:         link,
		Upvotes:     item.Score,
		Comments:    item.Descendants,
		Extra: map[string]any{
			"by":     item.By,
			"hn_url": discussion,
		},
	}
	if item.Time > 0 {
		story.CreatedAt = time.Unix(item.Time, 0).UTC()
	}
	return story, nil
}

func (h *HackerNewsScraper) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hackernews returned status %d for %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
