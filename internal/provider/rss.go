package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/domain"
)

// RSSFetcher pulls raw items from a list of RSS feeds. One bad feed is
// logged and skipped; the fetch fails only when every feed fails.
type RSSFetcher struct {
	parser  *gofeed.Parser
	sources []Source
}

func NewRSSFetcher(sources []Source) *RSSFetcher {
	return &RSSFetcher{
		parser:  gofeed.NewParser(),
		sources: sources,
	}
}

func (f *RSSFetcher) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	var items []domain.RawItem
	okCount := 0
	var lastErr error

	for _, src := range f.sources {
		feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			slog.Warn("Failed to parse RSS feed", "source", src.Name, "url", src.URL, "error", err)
			lastErr = err
			continue
		}

		for _, it := range feed.Items {
			items = append(items, rawFromFeedItem(it, src))
		}
		okCount++
		slog.Debug("Loaded feed", "source", src.Name, "items", len(feed.Items))
	}

	if okCount == 0 && lastErr != nil {
		return nil, apperr.NewProvider(lastErr)
	}

	slog.Info("RSS fetch completed", "feeds_ok", okCount, "feeds_total", len(f.sources), "items", len(items))
	return items, nil
}

func rawFromFeedItem(it *gofeed.Item, src Source) domain.RawItem {
	raw := domain.RawItem{
		Title:       it.Title,
		Description: it.Description,
		Content:     it.Content,
		Link:        it.Link,
		Category:    src.Category,
		SourceName:  src.Name,
	}

	if it.Image != nil {
		raw.ImageURL = it.Image.URL
	}
	if it.PublishedParsed != nil {
		raw.PubDate = *it.PublishedParsed
	} else {
		raw.PubDate = time.Now()
	}
	if raw.Category == "" && len(it.Categories) > 0 {
		raw.Category = it.Categories[0]
	}

	return raw
}
