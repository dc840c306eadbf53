package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// headerSentinel is the directory sheet's own header label; rows carrying it
// are never treated as mappings.
const headerSentinel = "Sheets"

// directoryLoadTimeout bounds a shared directory load.
const directoryLoadTimeout = time.Minute

// Directory is an ordered mapping of sheet names to gids.
type Directory struct {
	names []string
	gids  map[string]string
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{gids: make(map[string]string)}
}

// Add records name -> gid unless either is empty or name is the header
// sentinel. A repeated name keeps its first position and takes the newer gid.
func (d *Directory) Add(name, gid string) bool {
	name = strings.Trim(strings.TrimSpace(name), `"`)
	gid = strings.Trim(strings.TrimSpace(gid), `"`)
	if name == "" || gid == "" || name == headerSentinel {
		return false
	}
	if _, ok := d.gids[name]; !ok {
		d.names = append(d.names, name)
	}
	d.gids[name] = gid
	return true
}

// Lookup returns the gid for name.
func (d *Directory) Lookup(name string) (string, bool) {
	gid, ok := d.gids[name]
	return gid, ok
}

// Names returns sheet names in directory order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Len returns the number of mappings
func (d *Directory) Len() int {
	return len(d.names)
}

// Map returns a copy of the mappings.
func (d *Directory) Map() map[string]string {
	out := make(map[string]string, len(d.gids))
	for k, v := range d.gids {
		out[k] = v
	}
	return out
}

// ParseDirectory parses the directory sheet CSV. The first line is the
// header; each later row contributes its first two columns.
func ParseDirectory(csvText string) (*Directory, error) {
	if strings.TrimSpace(csvText) == "" {
		return nil, ErrEmptyBody
	}

	dir := NewDirectory()
	for i, line := range SplitLines(csvText) {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		parts := ParseLine(line)
		if len(parts) < 2 {
			continue
		}
		dir.Add(parts[0], parts[1])
	}

	if dir.Len() == 0 {
		return nil, ErrNoMappings
	}
	return dir, nil
}

// DirectorySource loads the sheet directory.
type DirectorySource interface {
	LoadDirectory(ctx context.Context) (*Directory, error)
}

// CSVDirectory reads the directory from the CSV export of a fixed sheet.
type CSVDirectory struct {
	Fetcher Fetcher
	GID     string
}

// LoadDirectory fetches and parses the directory sheet.
func (c *CSVDirectory) LoadDirectory(ctx context.Context) (*Directory, error) {
	body, err := c.Fetcher.Fetch(ctx, c.GID)
	if err != nil {
		return nil, fmt.Errorf("fetch directory sheet: %w", err)
	}
	dir, err := ParseDirectory(body)
	if err != nil {
		return nil, fmt.Errorf("parse directory sheet: %w", err)
	}
	return dir, nil
}

// Resolver maps logical sheet names to gids. The directory is loaded on
// first use and memoized until Reset; failed loads are not cached.
type Resolver struct {
	source DirectorySource
	logger *zap.Logger

	group singleflight.Group

	mu         sync.RWMutex
	dir        *Directory
	generation uint64
}

// NewResolver creates a resolver backed by source
func NewResolver(source DirectorySource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source: source,
		logger: logger,
	}
}

// Resolve returns the gid for a sheet name.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	dir, err := r.directory(ctx)
	if err != nil {
		return "", err
	}

	gid, ok := dir.Lookup(name)
	if !ok {
		r.logger.Warn("sheet not found in mappings",
			zap.String("sheet", name),
			zap.Strings("available", dir.Names()),
		)
		return "", &UnknownSheetError{Name: name, Known: dir.Names()}
	}
	return gid, nil
}

// List returns every known sheet name in directory order.
func (r *Resolver) List(ctx context.Context) ([]string, error) {
	dir, err := r.directory(ctx)
	if err != nil {
		return nil, err
	}
	return dir.Names(), nil
}

// Mappings returns a copy of the full name -> gid table.
func (r *Resolver) Mappings(ctx context.Context) (map[string]string, error) {
	dir, err := r.directory(ctx)
	if err != nil {
		return nil, err
	}
	return dir.Map(), nil
}

// Reset drops the cached directory; the next call reloads it. A load that is
// in flight when Reset is called does not repopulate the cache.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dir = nil
	r.generation++
	r.logger.Info("sheet mappings reset")
}

// Loaded reports whether the directory is cached.
func (r *Resolver) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dir != nil
}

func (r *Resolver) directory(ctx context.Context) (*Directory, error) {
	r.mu.RLock()
	dir, generation := r.dir, r.generation
	r.mu.RUnlock()
	if dir != nil {
		return dir, nil
	}

	// Concurrent callers share one load per generation. The load is detached
	// from any single caller so one caller giving up does not fail the rest.
	ch := r.group.DoChan(fmt.Sprintf("directory:%d", generation), func() (interface{}, error) {
		r.mu.RLock()
		cached := r.dir
		r.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), directoryLoadTimeout)
		defer cancel()

		r.logger.Info("fetching sheet mappings")
		loaded, err := r.source.LoadDirectory(loadCtx)
		if err != nil {
			r.logger.Error("failed to fetch sheet mappings", zap.Error(err))
			return nil, err
		}

		r.mu.Lock()
		if r.generation == generation {
			r.dir = loaded
		}
		r.mu.Unlock()

		r.logger.Info("sheet mappings loaded", zap.Int("sheets", loaded.Len()))
		return loaded, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.logger.Debug("joined in-flight sheet mapping fetch")
		}
		return res.Val.(*Directory), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
