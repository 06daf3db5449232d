package scrapers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
)

const (
	productHuntDefaultAPIBase = "https://api.producthunt.com/v2/api/graphql"
	productHuntDefaultLimit   = 20
)

const productHuntQuery = `query TopPosts($first: Int!) {
  posts(order: VOTES, first: $first) {
    edges {
      node {
        id
        name
        tagline
        description
        url
        votesCount
        commentsCount
        createdAt
        topics { edges { node { name } } }
      }
    }
  }
}`

// ProductHuntScraper collects the top launches from the Product Hunt GraphQL API
type ProductHuntScraper struct {
	base
	apiKey     string
	endpoint   string
	limit      int
	httpClient *http.Client
	filter     Filter
}

// NewProductHuntScraper creates a Product Hunt scraper. Without an API key
// the scraper disables itself and contributes no items.
func NewProductHuntScraper(def sources.Definition, apiKey string, httpClient *http.Client, logger *slog.Logger) *ProductHuntScraper {
	endpoint := def.Config.APIBase
	if endpoint == "" {
		endpoint = productHuntDefaultAPIBase
	}
	limit := def.Config.Limit
	if limit <= 0 {
		limit = productHuntDefaultLimit
	}

	return &ProductHuntScraper{
		base:       base{def: def, logger: logger},
		apiKey:     apiKey,
		endpoint:   endpoint,
		limit:      limit,
		httpClient: httpClient,
		filter:     filterFor(def.Config, Filter{}),
	}
}

type productHuntRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node productHuntPost `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type productHuntPost struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Tagline       string    `json:"tagline"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	VotesCount    int       `json:"votesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	Topics        struct {
		Edges []struct {
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"topics"`
}

// FetchRaw fetches the top launches ordered by votes
func (p *ProductHuntScraper) FetchRaw(ctx context.Context) ([]RawItem, error) {
	if p.apiKey == "" {
		p.logger.Warn("Product Hunt API key not configured, skipping", "source", p.def.Name)
		return nil, nil
	}

	body, err := json.Marshal(productHuntRequest{
		Query:     productHuntQuery,
		Variables: map[string]any{"first": p.limit},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product hunt returned status %d", resp.StatusCode)
	}

	var result productHuntResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("product hunt query failed: %s", result.Errors[0].Message)
	}

	var items []RawItem
	for _, edge := range result.Data.Posts.Edges {
		post := edge.Node

		topics := make([]string, 0, len(post.Topics.Edges))
		for _, t := range post.Topics.Edges {
			topics = append(topics, t.Node.Name)
		}

		description := post.Description
		if description == "" {
			description = post.Tagline
		}

		item := RawItem{
			ID:          post.ID,
			Title:       fmt.Sprintf("PH: %s - %s", post.Name, post.Tagline),
			Description: description,
			URL:         post.URL,
			Upvotes:     post.VotesCount,
			Comments:    post.CommentsCount,
			CreatedAt:   post.CreatedAt,
			Extra: map[string]any{
				"topics":      topics,
				"source_type": "product_launch",
			},
		}
		if p.filter.Allows(item) {
			items = append(items, item)
		}
	}

	p.logger.Info("Fetched Product Hunt launches", "count", len(items))
	return items, nil
}
