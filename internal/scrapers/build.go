package scrapers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
)

// Credentials are the API keys handed to the feeds that need them
type Credentials struct {
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	ProductHuntAPIKey  string
}

// Build creates one scraper per active registry entry, in registry order.
// Every scraper shares an HTTP client bounded by timeout.
func Build(registry *sources.Registry, creds Credentials, timeout time.Duration, logger *slog.Logger) []Scraper {
	httpClient := &http.Client{Timeout: timeout}

	var scrapers []Scraper
	for _, def := range registry.Active() {
		switch def.Type {
		case sources.TypeReddit:
			scrapers = append(scrapers, NewRedditScraper(def, RedditCredentials{
				ClientID:     creds.RedditClientID,
				ClientSecret: creds.RedditClientSecret,
				UserAgent:    creds.RedditUserAgent,
			}, httpClient, logger))
		case sources.TypeHackerNews:
			scrapers = append(scrapers, NewHackerNewsScraper(def, httpClient, logger))
		case sources.TypeProductHunt:
			scrapers = append(scrapers, NewProductHuntScraper(def, creds.ProductHuntAPIKey, httpClient, logger))
		case sources.TypeRSS:
			scrapers = append(scrapers, NewRSSScraper(def, httpClient, logger))
		default:
			logger.Warn("Unknown source type, skipping", "source", def.Name, "type", def.Type)
		}
	}
	return scrapers
}
