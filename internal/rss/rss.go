// Package rss collects headlines from RSS and Atom feeds.
package rss

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/shelldash/internal/logging"
)

const (
	// ShellLimit is the headline limit of the rss command.
	ShellLimit = 10
	// APILimit is the headline limit of the HTTP endpoint.
	APILimit = 15

	DefaultTimeout     = 20 * time.Second
	DefaultConcurrency = 4
)

// Item is one headline.
type Item struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client      *http.Client
	concurrency int
	logger      *zap.Logger
}

// NewFetcher creates a Fetcher. A nil logger disables logging.
func NewFetcher(logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		concurrency: DefaultConcurrency,
		logger:      logging.OrNop(logger),
	}
}

// Headlines fetches every feed, takes up to limit entries from each, and
// returns them merged in feed order, deduplicated by (title, link) and
// truncated to limit. A failing feed is skipped.
func (f *Fetcher) Headlines(ctx context.Context, feeds []string, limit int) []Item {
	if limit <= 0 || len(feeds) == 0 {
		return []Item{}
	}

	perFeed := make([][]Item, len(feeds))
	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, feedURL := range feeds {
		g.Go(func() error {
			items, err := f.fetch(ctx, feedURL, limit)
			if err != nil {
				f.logger.Warn("rss feed skipped", zap.String("feed", feedURL), zap.Error(err))
				return nil
			}
			perFeed[i] = items
			return nil
		})
	}
	_ = g.Wait()

	return merge(perFeed, limit)
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string, limit int) ([]Item, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = feedURL
	}

	entries := feed.Items
	if len(entries) > limit {
		entries = entries[:limit]
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		items = append(items, Item{Title: e.Title, Link: e.Link, Source: source})
	}
	return items, nil
}

type itemKey struct {
	title, link string
}

func merge(perFeed [][]Item, limit int) []Item {
	seen := make(map[itemKey]struct{})
	out := make([]Item, 0, limit)
	for _, items := range perFeed {
		for _, it := range items {
			k := itemKey{it.Title, it.Link}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, it)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
