package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docquery/internal/errs"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First</title>
      <link>https://example.com/articles/1</link>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.com/articles/2</link>
    </item>
    <item>
      <title>No link item</title>
    </item>
  </channel>
</rss>`

func TestArticleLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	e := New(srv.Client())
	links, err := e.ArticleLinks(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/articles/1",
		"https://example.com/articles/2",
	}, links)
}

func TestArticleLinksUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(srv.Client())
	_, err := e.ArticleLinks(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNetwork))
}

func TestArticleLinksMalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer srv.Close()

	e := New(srv.Client())
	_, err := e.ArticleLinks(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNetwork))
}
