package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/textnorm"
	"sentiment-trader/internal/types"
)

// ScraperSource scrapes financial news portals for a set of tickers.
type ScraperSource struct {
	tickers []string
	sites   []scrapeSite
	timeout time.Duration
}

// scrapeSite is one portal's search page plus the CSS selectors that locate
// articles on it.
type scrapeSite struct {
	Name       string
	BaseURL    string
	SearchPath string // "{symbol}" is replaced with the lowercased ticker
	Selectors  articleSelectors
	RateLimit  time.Duration
}

type articleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Content          string
	PublishedAt      string
}

func NewScraperSource(tickers []string, timeout time.Duration) *ScraperSource {
	return &ScraperSource{
		tickers: tickers,
		sites:   defaultSites(),
		timeout: timeout,
	}
}

func defaultSites() []scrapeSite {
	return []scrapeSite{
		{
			Name:       "MoneyControl",
			BaseURL:    "https://www.moneycontrol.com",
			SearchPath: "/news/tags/{symbol}.html",
			Selectors: articleSelectors{
				ArticleContainer: "li.clearfix",
				Title:            "h2 a, h3 a",
				URL:              "h2 a, h3 a",
				Content:          "p",
				PublishedAt:      "span.ago",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "EconomicTimes",
			BaseURL:    "https://economictimes.indiatimes.com",
			SearchPath: "/topic/{symbol}",
			Selectors: articleSelectors{
				ArticleContainer: "div.story-box",
				Title:            "a",
				URL:              "a",
				Content:          "p",
				PublishedAt:      "time",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

func (s *ScraperSource) Name() string { return "scraper" }

// Fetch scrapes every site for every ticker. A failing site is logged and
// skipped.
func (s *ScraperSource) Fetch(ctx context.Context, maxArticles int) ([]types.RawArticle, error) {
	perQuery := maxArticles
	if n := len(s.tickers) * len(s.sites); n > 0 && maxArticles > 0 {
		perQuery = maxArticles / n
		if perQuery < 1 {
			perQuery = 1
		}
	}

	var articles []types.RawArticle
	for _, ticker := range s.tickers {
		for _, site := range s.sites {
			found, err := s.scrapeSite(ctx, site, ticker, perQuery)
			if err != nil {
				logger.ErrorWithErr(ctx, "Failed to scrape site", err, "site", site.Name, "ticker", ticker)
				continue
			}
			articles = append(articles, found...)
			time.Sleep(site.RateLimit)
		}
	}

	logger.Info(ctx, "Scraping completed", "tickers", len(s.tickers), "articles", len(articles))
	return articles, nil
}

func (s *ScraperSource) scrapeSite(ctx context.Context, site scrapeSite, ticker string, maxArticles int) ([]types.RawArticle, error) {
	var articles []types.RawArticle

	c := colly.NewCollector(
		colly.AllowedDomains(hostOf(site.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(site.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := strings.TrimSpace(e.ChildText(site.Selectors.Title))
		if title == "" {
			return
		}
		articleURL := e.ChildAttr(site.Selectors.URL, "href")
		if articleURL == "" {
			return
		}
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = site.BaseURL + articleURL
		}

		articles = append(articles, types.RawArticle{
			URL:         articleURL,
			Title:       title,
			Body:        strings.TrimSpace(e.ChildText(site.Selectors.Content)),
			PublishedAt: textnorm.ParseTimestamp(strings.TrimSpace(e.ChildText(site.Selectors.PublishedAt))),
			Source:      site.Name,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "site", site.Name, "url", r.Request.URL.String())
	})

	searchURL := site.BaseURL + strings.ReplaceAll(site.SearchPath, "{symbol}", strings.ToLower(ticker))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return articles, nil
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	return u.Host
}
