package ingest

import (
	"context"

	"github.com/mmcdole/gofeed"

	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/types"
)

// RSSSource pulls articles from a set of feed URLs. One feed failing does
// not stop the others.
type RSSSource struct {
	feeds  []string
	parser *gofeed.Parser
}

func NewRSSSource(feeds []string) *RSSSource {
	return &RSSSource{feeds: feeds, parser: gofeed.NewParser()}
}

func (s *RSSSource) Name() string { return "rss" }

func (s *RSSSource) Fetch(ctx context.Context, maxArticles int) ([]types.RawArticle, error) {
	var articles []types.RawArticle

	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to fetch feed", err, "feed", feedURL)
			continue
		}

		for _, item := range feed.Items {
			if maxArticles > 0 && len(articles) >= maxArticles {
				return articles, nil
			}
			if item.Title == "" {
				continue
			}

			body := item.Content
			if body == "" {
				body = item.Description
			}

			articles = append(articles, types.RawArticle{
				URL:         item.Link,
				Title:       item.Title,
				Body:        body,
				PublishedAt: item.PublishedParsed,
				Source:      feed.Title,
			})
		}
	}
	return articles, nil
}
