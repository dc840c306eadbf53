package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestSheetURL(t *testing.T) {
	raw := SheetURL("https://example.com/pub", "123", time.UnixMilli(1700000000000))
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if q.Get("gid") != "123" || q.Get("single") != "true" || q.Get("output") != "csv" {
		t.Errorf("unexpected query: %s", u.RawQuery)
	}
	if q.Get("_t") != "1700000000000" {
		t.Errorf("cache buster: got %q", q.Get("_t"))
	}

	plain, _ := url.Parse(SheetURL("https://example.com/pub", "0", time.Time{}))
	if plain.Query().Has("_t") {
		t.Errorf("zero bust time should omit _t: %s", plain)
	}
}

func TestHTTPFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/csv" {
			t.Errorf("accept header: got %q", r.Header.Get("Accept"))
		}
		switch r.URL.Query().Get("gid") {
		case "ok":
			w.Write([]byte("Sheets,GID\nstandings,0\n"))
		case "blank":
			w.Write([]byte("  \n"))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/pub", true)
	ctx := context.Background()

	body, err := f.Fetch(ctx, "ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "Sheets,GID\nstandings,0\n" {
		t.Errorf("body: got %q", body)
	}

	if _, err := f.Fetch(ctx, "blank"); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("blank body: want ErrEmptyBody, got %v", err)
	}

	_, err = f.Fetch(ctx, "missing")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want TransportError, got %v", err)
	}
	if te.Status != http.StatusNotFound {
		t.Errorf("status: want 404, got %d", te.Status)
	}
}

func TestHTTPFetcherNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher(base, false).Fetch(context.Background(), "0")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want TransportError, got %v", err)
	}
	if te.Status != 0 || te.Err == nil {
		t.Errorf("expected wrapped network error, got %+v", te)
	}
}
