// Package loader produces the raw document corpus for an indexing run,
// either from PDF files on disk or from the persisted RSS/article URL
// lists. A bad source item is skipped with a warning; the run goes on.
package loader

import (
	"io"
	"os"

	"github.com/fatih/color"

	"docquery/pkg/feed"
	"docquery/pkg/scraper"
	"docquery/pkg/urlstore"
)

type LoaderConfig struct {
	DocumentsDir string
	URLs         *urlstore.Store
	Feeds        *feed.Expander
	Pages        *scraper.Scraper

	// Warnings about skipped items go here. Defaults to os.Stderr.
	Diag io.Writer
}

type Loader struct {
	config LoaderConfig
	warnf  func(format string, a ...interface{})
	infof  func(format string, a ...interface{})
}

func NewWithConfig(config LoaderConfig) *Loader {
	if config.Diag == nil {
		config.Diag = os.Stderr
	}
	warn := color.New(color.FgYellow)
	info := color.New(color.FgCyan)

	return &Loader{
		config: config,
		warnf: func(format string, a ...interface{}) {
			warn.Fprintf(config.Diag, format, a...)
		},
		infof: func(format string, a ...interface{}) {
			info.Fprintf(config.Diag, format, a...)
		},
	}
}
