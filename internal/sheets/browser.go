package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	// BrowserUserAgent for headless requests
	BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval spaces out browser loads of the workbook
	MinRequestInterval = 2 * time.Second
)

// BrowserFetcher loads sheet exports through a headless Chrome. It is slower
// than HTTPFetcher and is meant for networks where plain HTTP clients are blocked.
type BrowserFetcher struct {
	baseURL   string
	cacheBust bool
	logger    *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewBrowserFetcher creates a headless browser fetcher for the workbook at baseURL
func NewBrowserFetcher(baseURL string, cacheBust bool, logger *zap.Logger) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(BrowserUserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		baseURL:   baseURL,
		cacheBust: cacheBust,
		logger:    logger,
		interval:  MinRequestInterval,
		allocCtx:  allocCtx,
		cancel:    cancel,
	}
}

// Close releases the browser allocator
func (b *BrowserFetcher) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// Fetch loads the sheet export and returns the page text.
func (b *BrowserFetcher) Fetch(ctx context.Context, gid string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lastRequest.IsZero() {
		if wait := b.interval - time.Since(b.lastRequest); wait > 0 {
			b.logger.Debug("rate limiting browser fetch", zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	defer func() { b.lastRequest = time.Now() }()

	var bust time.Time
	if b.cacheBust {
		bust = time.Now()
	}
	sheetURL := SheetURL(b.baseURL, gid, bust)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(b.allocCtx)
	defer cancelBrowser()

	// chromedp contexts do not inherit the caller's deadline
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	var text string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(sheetURL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Text(`body`, &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", &TransportError{URL: sheetURL, Err: fmt.Errorf("chromedp: %w", err)}
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gid %s: %w", gid, ErrEmptyBody)
	}
	return text, nil
}
