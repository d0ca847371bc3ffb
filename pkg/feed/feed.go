// Package feed expands RSS feed endpoints into individual article links.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"docquery/internal/errs"
)

type Expander struct {
	parser *gofeed.Parser
}

func New(client *http.Client) *Expander {
	parser := gofeed.NewParser()
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	parser.Client = client

	return &Expander{parser: parser}
}

// ArticleLinks fetches one feed and returns the link of every item in
// document order. Items without a link are dropped.
func (e *Expander) ArticleLinks(ctx context.Context, feedURL string) ([]string, error) {
	parsed, err := e.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %v: %w", feedURL, err, errs.ErrNetwork)
	}

	var links []string
	for _, item := range parsed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return links, nil
}
