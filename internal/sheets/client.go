package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// UserAgent sent with every sheet request
const UserAgent = "rinkboard/1.0"

// Fetcher downloads the CSV export of one sheet.
type Fetcher interface {
	Fetch(ctx context.Context, gid string) (string, error)
}

// HTTPFetcher downloads sheet exports from the published workbook.
type HTTPFetcher struct {
	HTTP      *http.Client
	BaseURL   string
	CacheBust bool
	UserAgent string

	now func() time.Time
}

// NewHTTPFetcher creates a fetcher for the workbook published at baseURL
func NewHTTPFetcher(baseURL string, cacheBust bool) *HTTPFetcher {
	return &HTTPFetcher{
		HTTP:      &http.Client{Timeout: 20 * time.Second},
		BaseURL:   baseURL,
		CacheBust: cacheBust,
		UserAgent: UserAgent,
		now:       time.Now,
	}
}

// SheetURL builds the CSV export URL for a sheet. A non-zero bust time adds
// the _t parameter so intermediate caches do not serve a stale export.
func SheetURL(baseURL, gid string, bust time.Time) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Sprintf("%s?gid=%s&single=true&output=csv", baseURL, url.QueryEscape(gid))
	}

	q := u.Query()
	q.Set("gid", gid)
	q.Set("single", "true")
	q.Set("output", "csv")
	if !bust.IsZero() {
		q.Set("_t", strconv.FormatInt(bust.UnixMilli(), 10))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// URL returns the export URL this fetcher would request for gid.
func (f *HTTPFetcher) URL(gid string) string {
	var bust time.Time
	if f.CacheBust {
		now := f.now
		if now == nil {
			now = time.Now
		}
		bust = now()
	}
	return SheetURL(f.BaseURL, gid, bust)
}

// Fetch downloads the CSV body of the sheet identified by gid.
func (f *HTTPFetcher) Fetch(ctx context.Context, gid string) (string, error) {
	sheetURL := f.URL(gid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sheetURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("Cache-Control", "no-cache")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return "", &TransportError{URL: sheetURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: sheetURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{URL: sheetURL, Status: resp.StatusCode}
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gid %s: %w", gid, ErrEmptyBody)
	}
	return text, nil
}
