package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Workbook fetches sheets by logical name.
type Workbook struct {
	Resolver *Resolver
	Fetcher  Fetcher

	close func()
}

// Options selects how a workbook is reached.
type Options struct {
	BaseURL         string
	DirectoryGID    string
	DirectorySource string // "csv" (default) or "pubhtml"
	FetchMode       string // "http" (default) or "browser"
	CacheBust       bool
}

// Open builds a workbook from opts. Close releases the headless browser
// when FetchMode is "browser".
func Open(opts Options, logger *zap.Logger) (*Workbook, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	wb := &Workbook{}
	switch opts.FetchMode {
	case "", "http":
		wb.Fetcher = NewHTTPFetcher(opts.BaseURL, opts.CacheBust)
	case "browser":
		b := NewBrowserFetcher(opts.BaseURL, opts.CacheBust, logger)
		wb.Fetcher = b
		wb.close = b.Close
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", opts.FetchMode)
	}

	var source DirectorySource
	switch opts.DirectorySource {
	case "", "csv":
		source = &CSVDirectory{Fetcher: wb.Fetcher, GID: opts.DirectoryGID}
	case "pubhtml":
		source = NewHTMLDirectory(opts.BaseURL)
	default:
		wb.Close()
		return nil, fmt.Errorf("unknown directory source %q", opts.DirectorySource)
	}
	wb.Resolver = NewResolver(source, logger)

	return wb, nil
}

// Close releases the fetcher's resources
func (w *Workbook) Close() {
	if w.close != nil {
		w.close()
	}
}

// Sheet resolves name and downloads its CSV export.
func (w *Workbook) Sheet(ctx context.Context, name string) (string, error) {
	gid, err := w.Resolver.Resolve(ctx, name)
	if err != nil {
		return "", err
	}
	body, err := w.Fetcher.Fetch(ctx, gid)
	if err != nil {
		return "", fmt.Errorf("fetch sheet %q: %w", name, err)
	}
	return body, nil
}

// Names lists the sheets in the workbook directory.
func (w *Workbook) Names(ctx context.Context) ([]string, error) {
	return w.Resolver.List(ctx)
}

// Reset drops the cached directory so the next lookup refetches it.
func (w *Workbook) Reset() {
	w.Resolver.Reset()
}
