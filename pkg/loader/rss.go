package loader

import (
	"context"
	"fmt"

	"docquery/internal/errs"
	"docquery/internal/models"
	"docquery/pkg/urlstore"
)

// LoadRSS expands every RSS entry into article links, appends newly
// discovered links to the article list (deduplicated by exact URL) and
// persists it, then fetches every article entry, old and new, into one
// Document per page. A single unreachable URL never aborts the run.
func (l *Loader) LoadRSS(ctx context.Context) ([]models.Document, error) {
	feeds, err := l.config.URLs.Load(urlstore.KindRSS)
	if err != nil {
		return nil, err
	}

	var discovered []string
	for _, entry := range feeds {
		links, err := l.config.Feeds.ArticleLinks(ctx, entry.URL)
		if err != nil {
			l.warnf("skipping feed %s: %v\n", entry.URL, err)
			continue
		}
		discovered = append(discovered, links...)
	}

	added, err := l.config.URLs.Append(urlstore.KindArticles, discovered)
	if err != nil {
		return nil, err
	}
	if added > 0 {
		l.infof("discovered %d new article URL(s)\n", added)
	}

	articles, err := l.config.URLs.Load(urlstore.KindArticles)
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	for _, entry := range articles {
		doc, err := l.config.Pages.FetchArticle(ctx, entry.URL)
		if err != nil {
			l.warnf("skipping article %s: %v\n", entry.URL, err)
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no reachable articles to index: %w", errs.ErrIngestion)
	}
	return docs, nil
}
