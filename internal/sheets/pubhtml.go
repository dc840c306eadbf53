package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const sheetButtonPrefix = "sheet-button-"

// HTMLDirectory reads the directory from the tab menu of the workbook's
// "pubhtml" page instead of a dedicated directory sheet.
type HTMLDirectory struct {
	HTTP *http.Client
	URL  string
}

// NewHTMLDirectory derives the pubhtml URL from the workbook's CSV base URL
// (".../pub" becomes ".../pubhtml").
func NewHTMLDirectory(baseURL string) *HTMLDirectory {
	return &HTMLDirectory{
		HTTP: &http.Client{Timeout: 20 * time.Second},
		URL:  strings.TrimSuffix(baseURL, "/") + "html",
	}
}

// LoadDirectory downloads and parses the pubhtml page.
func (h *HTMLDirectory) LoadDirectory(ctx context.Context) (*Directory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := h.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{URL: h.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: h.URL, Status: resp.StatusCode}
	}

	return ParseDirectoryHTML(resp.Body)
}

// ParseDirectoryHTML extracts sheet names and gids from the tab menu
// (<li id="sheet-button-GID"><a>Name</a></li>).
func ParseDirectoryHTML(r io.Reader) (*Directory, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	dir := NewDirectory()
	doc.Find(`#sheet-menu li[id^="` + sheetButtonPrefix + `"]`).Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		gid := strings.TrimPrefix(id, sheetButtonPrefix)
		dir.Add(s.Text(), gid)
	})

	if dir.Len() == 0 {
		return nil, ErrNoMappings
	}
	return dir, nil
}
