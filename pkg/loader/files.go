package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"

	"docquery/internal/errs"
	"docquery/internal/models"
)

// LoadFiles reads every PDF in the documents directory (non-recursive)
// and returns one Document per file, pages concatenated. Unreadable or
// corrupt files are skipped with a warning; zero loadable documents is
// an ingestion error.
func (l *Loader) LoadFiles(ctx context.Context) ([]models.Document, error) {
	entries, err := os.ReadDir(l.config.DocumentsDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", l.config.DocumentsDir, err, errs.ErrIngestion)
	}

	var docs []models.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(l.config.DocumentsDir, entry.Name())
		doc, err := l.loadPDF(ctx, path)
		if err != nil {
			l.warnf("skipping %s: %v\n", path, err)
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no readable PDF documents in %s: %w", l.config.DocumentsDir, errs.ErrIngestion)
	}
	return docs, nil
}

// parsePDF converts the parser's panics on malformed files into errors.
func parsePDF(ctx context.Context, r io.ReaderAt, size int64) (pages []schema.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return documentloaders.NewPDF(r, size).Load(ctx)
}

func (l *Loader) loadPDF(ctx context.Context, path string) (models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("open: %v: %w", err, errs.ErrIngestion)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Document{}, fmt.Errorf("stat: %v: %w", err, errs.ErrIngestion)
	}

	pages, err := parsePDF(ctx, f, info.Size())
	if err != nil {
		return models.Document{}, fmt.Errorf("parse: %v: %w", err, errs.ErrIngestion)
	}

	var content strings.Builder
	for i, page := range pages {
		if i > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(page.PageContent)
	}

	name := filepath.Base(path)
	return models.Document{
		ID:      name,
		Source:  path,
		Title:   name,
		Content: content.String(),
		Metadata: map[string]interface{}{
			"file_name": name,
			"pages":     len(pages),
		},
	}, nil
}
