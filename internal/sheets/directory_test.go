package sheets

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubFetcher serves canned bodies by gid and counts calls.
type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  atomic.Int32

	entered chan struct{}
	release chan struct{}
}

func (s *stubFetcher) Fetch(ctx context.Context, gid string) (string, error) {
	s.calls.Add(1)
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[gid]; err != nil {
		return "", err
	}
	body, ok := s.bodies[gid]
	if !ok {
		return "", &TransportError{URL: gid, Status: 404}
	}
	return body, nil
}

const directoryCSV = "Sheets,GID\nstandings,0\nWeek 1,123\n,999\nSheets,1\nBruins,\n"

func newTestResolver(f *stubFetcher) *Resolver {
	return NewResolver(&CSVDirectory{Fetcher: f, GID: "dir"}, nil)
}

func TestParseDirectory(t *testing.T) {
	dir, err := ParseDirectory(directoryCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := dir.Names(); !reflect.DeepEqual(got, []string{"standings", "Week 1"}) {
		t.Errorf("names: got %q", got)
	}

	if _, err := ParseDirectory("Sheets,GID\n,\n"); !errors.Is(err, ErrNoMappings) {
		t.Errorf("want ErrNoMappings, got %v", err)
	}
	if _, err := ParseDirectory("   "); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("want ErrEmptyBody, got %v", err)
	}
}

func TestResolverResolveAndUnknown(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"dir": directoryCSV}}
	r := newTestResolver(f)
	ctx := context.Background()

	gid, err := r.Resolve(ctx, "Week 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gid != "123" {
		t.Errorf("Week 1: want 123, got %s", gid)
	}

	_, err = r.Resolve(ctx, "unknown")
	var ue *UnknownSheetError
	if !errors.As(err, &ue) {
		t.Fatalf("want UnknownSheetError, got %v", err)
	}
	if !reflect.DeepEqual(ue.Known, []string{"standings", "Week 1"}) {
		t.Errorf("known names: got %q", ue.Known)
	}
	if !strings.Contains(err.Error(), "standings, Week 1") {
		t.Errorf("error should list known names: %v", err)
	}

	// lookups after the first are served from the cache
	if _, err := r.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("directory fetches: want 1, got %d", n)
	}
}

func TestResolverFailureNotCached(t *testing.T) {
	f := &stubFetcher{
		bodies: map[string]string{"dir": directoryCSV},
		errs:   map[string]error{"dir": ErrEmptyBody},
	}
	r := newTestResolver(f)
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "standings"); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("want ErrEmptyBody, got %v", err)
	}
	if r.Loaded() {
		t.Fatal("failed load must not populate the cache")
	}

	f.mu.Lock()
	delete(f.errs, "dir")
	f.mu.Unlock()

	if gid, err := r.Resolve(ctx, "standings"); err != nil || gid != "0" {
		t.Fatalf("retry: got %q, %v", gid, err)
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("fetches: want 2, got %d", n)
	}
}

func TestResolverNoMappings(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"dir": "Sheets,GID\n"}}
	_, err := newTestResolver(f).List(context.Background())
	if !errors.Is(err, ErrNoMappings) {
		t.Fatalf("want ErrNoMappings, got %v", err)
	}
}

func TestResolverReset(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"dir": directoryCSV}}
	r := newTestResolver(f)
	ctx := context.Background()

	if _, err := r.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	r.Reset()
	if r.Loaded() {
		t.Fatal("reset should drop the cache")
	}

	f.mu.Lock()
	f.bodies["dir"] = "Sheets,GID\nstandings,0\nWeek 2,456\n"
	f.mu.Unlock()

	gid, err := r.Resolve(ctx, "Week 2")
	if err != nil || gid != "456" {
		t.Fatalf("after reset: got %q, %v", gid, err)
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("fetches: want 2, got %d", n)
	}
}

func TestResolverConcurrentCallersShareFetch(t *testing.T) {
	f := &stubFetcher{
		bodies:  map[string]string{"dir": directoryCSV},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	r := newTestResolver(f)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(ctx, "standings")
			errs <- err
		}()
	}

	<-f.entered
	close(f.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("caller error: %v", err)
		}
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("directory fetches: want 1, got %d", n)
	}
}

func TestResolverCancelledCallerDoesNotFailOthers(t *testing.T) {
	f := &stubFetcher{
		bodies:  map[string]string{"dir": directoryCSV},
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	r := newTestResolver(f)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(first, "standings")
		firstErr <- err
	}()
	<-f.entered

	type result struct {
		gid string
		err error
	}
	second := make(chan result, 1)
	go func() {
		gid, err := r.Resolve(context.Background(), "standings")
		second <- result{gid, err}
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller: want context.Canceled, got %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	close(f.release)

	res := <-second
	if res.err != nil || res.gid != "0" {
		t.Fatalf("live caller: got %q, %v", res.gid, res.err)
	}
	if !r.Loaded() {
		t.Error("the shared load should still populate the cache")
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("directory fetches: want 1, got %d", n)
	}
}

func TestResolverCallerAfterResetStartsNewLoad(t *testing.T) {
	f := &stubFetcher{
		bodies:  map[string]string{"dir": directoryCSV},
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	r := newTestResolver(f)
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() {
		_, err := r.List(ctx)
		errs <- err
	}()
	<-f.entered

	r.Reset()
	go func() {
		_, err := r.List(ctx)
		errs <- err
	}()

	select {
	case <-f.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("caller after Reset joined the earlier load instead of fetching again")
	}
	close(f.release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Errorf("caller error: %v", err)
		}
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("directory fetches: want 2, got %d", n)
	}
	if !r.Loaded() {
		t.Error("the post-Reset load should populate the cache")
	}
}

func TestWorkbookSheet(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"dir": directoryCSV,
		"123": "Week,1,Date,5/4/2025\n",
	}}
	wb := &Workbook{Resolver: newTestResolver(f), Fetcher: f}

	body, err := wb.Sheet(context.Background(), "Week 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(body, "Week,1") {
		t.Errorf("body: got %q", body)
	}

	var ue *UnknownSheetError
	if _, err := wb.Sheet(context.Background(), "Week 9"); !errors.As(err, &ue) {
		t.Errorf("want UnknownSheetError, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	wb, err := Open(Options{BaseURL: "https://example.com/pub", DirectoryGID: "1", CacheBust: true}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer wb.Close()
	if _, ok := wb.Fetcher.(*HTTPFetcher); !ok {
		t.Errorf("default fetcher: got %T", wb.Fetcher)
	}
	if _, ok := wb.Resolver.source.(*CSVDirectory); !ok {
		t.Errorf("default directory source: got %T", wb.Resolver.source)
	}

	wb, err = Open(Options{BaseURL: "https://example.com/pub", DirectorySource: "pubhtml"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := wb.Resolver.source.(*HTMLDirectory); !ok {
		t.Errorf("pubhtml directory source: got %T", wb.Resolver.source)
	}

	if _, err := Open(Options{FetchMode: "fax"}, nil); err == nil {
		t.Error("expected an error for an unknown fetch mode")
	}
	if _, err := Open(Options{DirectorySource: "ldap"}, nil); err == nil {
		t.Error("expected an error for an unknown directory source")
	}
}
