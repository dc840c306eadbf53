package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

const pubHTML = `<html><body>
<div id="top-bar"><ul id="sheet-menu">
  <li id="sheet-button-26105431"><a href="#">Sheets</a></li>
  <li id="sheet-button-0"><a href="#">standings</a></li>
  <li id="sheet-button-123"><a href="#">Week 1</a></li>
  <li id="sheet-button-854028421"><a href="#"> Bruins </a></li>
  <li class="switcherItem"><a href="#">not a tab</a></li>
</ul></div>
</body></html>`

func TestParseDirectoryHTML(t *testing.T) {
	dir, err := ParseDirectoryHTML(strings.NewReader(pubHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"standings", "Week 1", "Bruins"}
	if got := dir.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("names: want %q, got %q", want, got)
	}
	if gid, _ := dir.Lookup("Bruins"); gid != "854028421" {
		t.Errorf("Bruins gid: got %q", gid)
	}

	if _, err := ParseDirectoryHTML(strings.NewReader("<html></html>")); !errors.Is(err, ErrNoMappings) {
		t.Errorf("want ErrNoMappings, got %v", err)
	}
}

func TestHTMLDirectoryLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pubhtml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(pubHTML))
	}))
	defer srv.Close()

	src := NewHTMLDirectory(srv.URL + "/pub")
	r := NewResolver(src, nil)

	gid, err := r.Resolve(context.Background(), "Week 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gid != "123" {
		t.Errorf("want 123, got %s", gid)
	}
}
