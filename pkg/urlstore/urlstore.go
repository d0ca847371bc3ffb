// Package urlstore reads and writes the two JSON documents that record
// source URLs: the RSS feed list and the article list. Both share the
// shape {"urls": [{"url": "..."}]}.
package urlstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docquery/internal/errs"
	"docquery/internal/models"
)

type Kind string

const (
	KindRSS      Kind = "rss"
	KindArticles Kind = "articles"
)

type Store struct {
	rssPath     string
	articlePath string
}

func New(rssPath, articlePath string) *Store {
	return &Store{
		rssPath:     rssPath,
		articlePath: articlePath,
	}
}

func (s *Store) path(kind Kind) (string, error) {
	switch kind {
	case KindRSS:
		return s.rssPath, nil
	case KindArticles:
		return s.articlePath, nil
	default:
		return "", fmt.Errorf("unknown URL list kind %q: %w", kind, errs.ErrConfiguration)
	}
}

// Load returns the ordered URL entries of the given list.
func (s *Store) Load(kind Kind) ([]models.URLEntry, error) {
	path, err := s.path(kind)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", path, err, errs.ErrConfiguration)
	}

	var list models.URLList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding %s: %v: %w", path, err, errs.ErrConfiguration)
	}

	for i, entry := range list.URLs {
		if entry.URL == "" {
			return nil, fmt.Errorf("%s: entry %d has an empty url: %w", path, i, errs.ErrConfiguration)
		}
	}

	return list.URLs, nil
}

// Save overwrites the list wholesale, creating the file and its parent
// directory if absent. The write goes through a temp file and rename so
// a crash never leaves a truncated document behind.
func (s *Store) Save(kind Kind, entries []models.URLEntry) error {
	path, err := s.path(kind)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %v: %w", filepath.Dir(path), err, errs.ErrConfiguration)
	}

	if entries == nil {
		entries = []models.URLEntry{}
	}
	data, err := json.MarshalIndent(models.URLList{URLs: entries}, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %v: %w", tmp, err, errs.ErrConfiguration)
	}
	return os.Rename(tmp, path)
}

// Append adds the given URLs to the list, skipping any already present
// by exact match, and saves. Returns how many entries were added.
// Appending to a missing list starts from an empty one.
func (s *Store) Append(kind Kind, urls []string) (int, error) {
	entries, err := s.Load(kind)
	if err != nil {
		path, _ := s.path(kind)
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			entries = nil
		} else {
			return 0, err
		}
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.URL] = true
	}

	added := 0
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		entries = append(entries, models.URLEntry{URL: u})
		seen[u] = true
		added++
	}

	if added == 0 {
		return 0, nil
	}
	return added, s.Save(kind, entries)
}
