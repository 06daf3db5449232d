package scrapers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	base
	items []RawItem
	err   error
	panic bool
}

func (f *fakeScraper) FetchRaw(ctx context.Context) ([]RawItem, error) {
	if f.panic {
		panic("boom")
	}
	return f.items, f.err
}

func newFake(name string) *fakeScraper {
	return &fakeScraper{base: base{def: sources.Definition{Name: name, Type: sources.TypeRSS}, logger: discardLogger()}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestScrapeFailureYieldsEmptyResult(t *testing.T) {
	logger, buf := captureLogger()
	s := newFake("Broken")
	s.err = errors.New("connection refused")

	res := Scrape(context.Background(), s, logger)

	require.Error(t, res.Err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Contains(t, buf.String(), "Scrape failed")
	assert.Contains(t, buf.String(), "source=Broken")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestScrapeRecoversPanic(t *testing.T) {
	logger, buf := captureLogger()
	s := newFake("Panicky")
	s.panic = true

	res := Scrape(context.Background(), s, logger)

	require.Error(t, res.Err)
	assert.Empty(t, res.Items)
	assert.Contains(t, buf.String(), "source=Panicky")
}

func TestScrapeNormalizesAndSkipsMissingIDs(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	s := newFake("Feed")
	s.items = []RawItem{
		{ID: "a1", Title: "First", Upvotes: 12, Comments: 3, CreatedAt: created, Extra: map[string]any{"author": "x"}},
		{ID: "", Title: "No id"},
	}

	res := Scrape(context.Background(), s, discardLogger())

	require.NoError(t, res.Err)
	require.Len(t, res.Items, 1)
	item := res.Items[0]
	assert.Equal(t, "a1", item.ExternalID)
	assert.Equal(t, 12, item.Metadata.Upvotes)
	assert.Equal(t, 3, item.Metadata.Comments)
	assert.Equal(t, "2024-03-01T11:00:00Z", item.Metadata.CreatedAt)
	assert.Equal(t, "x", item.Metadata.Extra["author"])
}

func TestBuildSkipsInactiveSources(t *testing.T) {
	off := false
	registry := sources.NewRegistry()
	require.NoError(t, registry.Register(sources.Definition{Name: "HN", Type: sources.TypeHackerNews}))
	require.NoError(t, registry.Register(sources.Definition{Name: "Blog", Type: sources.TypeRSS, URL: "http://example.com/feed", Active: &off}))
	require.NoError(t, registry.Register(sources.Definition{Name: "PH", Type: sources.TypeProductHunt}))

	built := Build(registry, Credentials{}, time.Second, discardLogger())

	require.Len(t, built, 2)
	assert.Equal(t, "HN", built[0].Definition().Name)
	assert.IsType(t, &HackerNewsScraper{}, built[0])
	assert.IsType(t, &ProductHuntScraper{}, built[1])
}

func TestScrapeDigestsLongExternalIDs(t *testing.T) {
	long := "https://example.com/feed/item?" + strings.Repeat("q=1&", 80)
	s := newFake("Feed")
	s.items = []RawItem{{ID: long, Title: "Long guid"}, {ID: "short", Title: "Short"}}

	first := Scrape(context.Background(), s, discardLogger())
	second := Scrape(context.Background(), s, discardLogger())

	require.Len(t, first.Items, 2)
	id := first.Items[0].ExternalID
	assert.LessOrEqual(t, len(id), MaxExternalIDLength)
	assert.True(t, strings.HasPrefix(id, "sha256:"))
	assert.Equal(t, id, second.Items[0].ExternalID)
	assert.Equal(t, "short", first.Items[1].ExternalID)
	assert.Equal(t, id, NormalizeItem(RawItem{ID: long}).ExternalID)
}
