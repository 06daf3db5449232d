package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
)

const (
	redditDefaultAPIBase = "https://oauth.reddit.com"
	redditDefaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	redditDefaultLimit   = 100
)

// RedditCredentials are the OAuth client credentials for the Reddit API
type RedditCredentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// RedditScraper collects top posts from a set of subreddits
type RedditScraper struct {
	base
	creds      RedditCredentials
	apiBase    string
	authURL    string
	httpClient *http.Client
	filter     Filter
}

// NewRedditScraper creates a Reddit scraper. Without credentials the scraper
// disables itself and contributes no items.
func NewRedditScraper(def sources.Definition, creds RedditCredentials, httpClient *http.Client, logger *slog.Logger) *RedditScraper {
	apiBase := def.Config.APIBase
	if apiBase == "" {
		apiBase = redditDefaultAPIBase
	}
	authURL := def.Config.AuthURL
	if authURL == "" {
		authURL = redditDefaultAuthURL
	}

	return &RedditScraper{
		base:       base{def: def, logger: logger},
		creds:      creds,
		apiBase:    strings.TrimRight(apiBase, "/"),
		authURL:    authURL,
		httpClient: httpClient,
		filter: filterFor(def.Config, Filter{
			MinEngagement: 5,
			MaxAge:        2 * 24 * time.Hour,
			Keywords:      PainKeywords,
		}),
	}
}

type redditToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// FetchRaw fetches the top posts of every configured subreddit. A failing
// subreddit is logged and skipped.
func (r *RedditScraper) FetchRaw(ctx context.Context) ([]RawItem, error) {
	if r.creds.ClientID == "" || r.creds.ClientSecret == "" {
		r.logger.Warn("Reddit API credentials not configured, skipping", "source", r.def.Name)
		return nil, nil
	}

	token, err := r.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timeFilter := r.def.Config.TimeFilter
	if timeFilter == "" {
		timeFilter = "day"
	}
	limit := r.def.Config.Limit
	if limit <= 0 {
		limit = redditDefaultLimit
	}

	var items []RawItem
	for _, sub := range r.def.Config.Subreddits {
		posts, err := r.fetchSubreddit(ctx, token, sub, timeFilter, limit)
		if err != nil {
			r.logger.Error("Failed to fetch subreddit", "subreddit", sub, "error", err)
			continue
		}

		kept := 0
		for _, p := range posts {
			item := RawItem{
				ID:          p.ID,
				Title:       p.Title,
				Description: p.Selftext,
				URL:         "https://reddit.com" + p.Permalink,
				Upvotes:     p.Score,
				Comments:    p.NumComments,
				CreatedAt:   time.Unix(int64(p.CreatedUTC), 0).UTC(),
				Extra: map[string]any{
					"subreddit": sub,
					"author":    authorOrDeleted(p.Author),
				},
			}
			if r.filter.Allows(item) {
				items = append(items, item)
				kept++
			}
		}
		r.logger.Info("Fetched subreddit", "subreddit", sub, "count", kept)
	}

	return items, nil
}

func (r *RedditScraper) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(r.creds.ClientID, r.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", r.creds.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request reddit token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("reddit token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var token redditToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode reddit token: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("reddit token endpoint returned an empty token")
	}
	return token.AccessToken, nil
}

func (r *RedditScraper) fetchSubreddit(ctx context.Context, token, sub, timeFilter string, limit int) ([]redditPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/top?t=%s&limit=%d&raw_json=1", r.apiBase, url.PathEscape(sub), url.QueryEscape(timeFilter), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.creds.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func authorOrDeleted(author string) string {
	if author == "" {
		return "[deleted]"
	}
	return author
}
