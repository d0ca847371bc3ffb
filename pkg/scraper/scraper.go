package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"docquery/internal/errs"
	"docquery/internal/models"
)

type ScraperConfig struct {
	RateLimit  float64 // requests per second
	Timeout    time.Duration
	OnProgress func(url string)
}

type Scraper struct {
	config  ScraperConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config ScraperConfig) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func New() *Scraper {
	return NewWithConfig(ScraperConfig{})
}

// FetchArticle downloads one page and extracts its main readable text
// into a Document. Failures are network errors the caller may skip.
func (s *Scraper) FetchArticle(ctx context.Context, urlStr string) (models.Document, error) {
	if s.config.OnProgress != nil {
		s.config.OnProgress(urlStr)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return models.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return models.Document{}, fmt.Errorf("building request for %s: %v: %w", urlStr, err, errs.ErrNetwork)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("fetching %s: %v: %w", urlStr, err, errs.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Document{}, fmt.Errorf("fetching %s: status %d: %w", urlStr, resp.StatusCode, errs.ErrNetwork)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.Document{}, fmt.Errorf("parsing %s: %v: %w", urlStr, err, errs.ErrNetwork)
	}

	content := s.extractMainContent(doc)
	title := strings.TrimSpace(doc.Find("title").Text())

	return models.Document{
		ID:      urlStr,
		Source:  urlStr,
		Title:   title,
		Content: content,
		Metadata: map[string]interface{}{
			"url":          urlStr,
			"contentType":  resp.Header.Get("Content-Type"),
			"lastModified": resp.Header.Get("Last-Modified"),
		},
	}, nil
}

func (s *Scraper) extractMainContent(doc *goquery.Document) string {
	// Prefer a recognizable article container over the whole body.
	selectors := []string{
		"main",
		"article",
		".content",
		"#content",
		".post",
		"#post",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}

	if content == "" {
		content = doc.Find("body").Text()
	}

	return s.cleanContent(content)
}

func (s *Scraper) cleanContent(content string) string {
	noisePatterns := []string{
		"Cookie Policy",
		"Accept Cookies",
		"Privacy Policy",
		"Terms of Service",
	}
	for _, pattern := range noisePatterns {
		content = strings.ReplaceAll(content, pattern, " ")
	}

	return strings.Join(strings.Fields(content), " ")
}
