// Package scrapers collects raw candidate items from external feeds.
//
// Every feed type implements Scraper. Scrape wraps a single fetch so that a
// failing feed contributes an empty result instead of an error, leaving the
// sibling feeds of a run unaffected.
package scrapers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
	"github.com/jimdaga/opportunity-finder/internal/sources"
)

// RawItem is an item as returned by a feed, after relevance filtering
type RawItem struct {
	ID          string
	Title       string
	Description string
	URL         string
	Upvotes     int
	Comments    int
	CreatedAt   time.Time
	Extra       map[string]any
}

// Normalized is the feed-independent shape persisted as a RawCandidate
type Normalized struct {
	ExternalID  string
	Title       string
	Description string
	URL         string
	Metadata    models.CandidateMetadata
}

// Scraper is implemented by every feed type
type Scraper interface {
	// Definition returns the registry entry the scraper was built from
	Definition() sources.Definition
	// FetchRaw calls the feed and returns relevant items.
	// Implementations must honor ctx for every outbound call.
	FetchRaw(ctx context.Context) ([]RawItem, error)
	// Normalize maps a raw item onto the persisted shape
	Normalize(item RawItem) Normalized
}

// Result is the outcome of one Scrape call. Items is never nil; it is empty when Err is set.
type Result struct {
	Source  sources.Definition
	Items   []Normalized
	Err     error
	Elapsed time.Duration
}

// Scrape fetches and normalizes one feed. It never returns an error or
// panics: failures are logged with the source name and reduced to an
// empty result.
func Scrape(ctx context.Context, s Scraper, logger *slog.Logger) (res Result) {
	def := s.Definition()
	res = Result{Source: def, Items: []Normalized{}}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Items = []Normalized{}
			res.Err = fmt.Errorf("scraper panicked: %v", r)
			res.Elapsed = time.Since(start)
			logger.Error("Scrape failed", "source", def.Name, "error", res.Err)
		}
	}()

	logger.Info("Starting scrape", "source", def.Name, "type", def.Type)

	raw, err := s.FetchRaw(ctx)
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		logger.Error("Scrape failed", "source", def.Name, "error", err, "elapsed", res.Elapsed)
		return res
	}

	items := make([]Normalized, 0, len(raw))
	for _, item := range raw {
		n := s.Normalize(item)
		n.ExternalID = boundExternalID(n.ExternalID)
		if n.ExternalID == "" {
			logger.Debug("Skipping item without external id", "source", def.Name, "title", n.Title)
			continue
		}
		items = append(items, n)
	}

	res.Items = items
	res.Elapsed = time.Since(start)
	logger.Info("Scrape completed", "source", def.Name, "count", len(items), "elapsed", res.Elapsed)
	return res
}

// NormalizeItem is the default RawItem to Normalized mapping shared by all feeds
func NormalizeItem(item RawItem) Normalized {
	meta := models.CandidateMetadata{
		Upvotes:  item.Upvotes,
		Comments: item.Comments,
		Extra:    item.Extra,
	}
	if !item.CreatedAt.IsZero() {
		meta.CreatedAt = item.CreatedAt.UTC().Format(time.RFC3339)
	}

	return Normalized{
		ExternalID:  boundExternalID(item.ID),
		Title:       item.Title,
		Description: item.Description,
		URL:         item.URL,
		Metadata:    meta,
	}
}

// MaxExternalIDLength is the longest external id stored verbatim
const MaxExternalIDLength = 255

// boundExternalID replaces ids longer than MaxExternalIDLength with their
// sha256 hex digest, which is stable across runs.
func boundExternalID(id string) string {
	if len(id) <= MaxExternalIDLength {
		return id
	}
	sum := sha256.Sum256([]byte(id))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// base carries the registry entry and logger shared by every feed type
type base struct {
	def    sources.Definition
	logger *slog.Logger
}

func (b base) Definition() sources.Definition { return b.def }

func (b base) Normalize(item RawItem) Normalized { return NormalizeItem(item) }

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
