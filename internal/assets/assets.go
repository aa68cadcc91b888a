// Package assets resolves model sources to local files or remote URLs and
// caches fetched bytes.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/assetdeck/internal/logger"
)

// ErrNotFound is returned when a source resolves to nothing.
var ErrNotFound = errors.New("asset not found")

// DefaultModel is the source used when none is configured.
const DefaultModel = "/model.glb"

// Location is a resolved source. Exactly one of Path and URL is set.
type Location struct {
	Path string
	URL  string
}

// Remote reports whether the location must be fetched over HTTP.
func (l Location) Remote() bool {
	return l.URL != ""
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Manager resolves sources against a list of asset roots.
type Manager struct {
	roots  []string
	client *http.Client
	cache  *Cache
	group  singleflight.Group
	mu     sync.RWMutex

	flightMu sync.Mutex
	flights  map[string]*flight
}

// flight is one shared download. It runs under its own context, cancelled
// only once every caller waiting on it has given up.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewManager creates a manager with an HTTP client limited by timeout.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		client:  &http.Client{Timeout: timeout},
		cache:   NewCache(),
		flights: make(map[string]*flight),
	}
}

// AddRoot adds a directory searched for relative sources.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return fmt.Errorf("expanding root %s: %w", dir, err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return fmt.Errorf("adding root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, expanded)
	m.mu.Unlock()

	return nil
}

// Resolve maps source to a location. URLs pass through. Other sources are
// tried as given, then relative to each root; a leading "/" is treated as
// root-relative when the absolute path does not exist.
func (m *Manager) Resolve(source string) (Location, error) {
	if source == "" {
		return Location{}, fmt.Errorf("empty source: %w", ErrNotFound)
	}
	if IsRemote(source) {
		return Location{URL: source}, nil
	}

	path, err := homedir.Expand(source)
	if err != nil {
		return Location{}, fmt.Errorf("expanding %s: %w", source, err)
	}
	if isFile(path) {
		return Location{Path: path}, nil
	}

	rel := strings.TrimPrefix(filepath.ToSlash(path), "/")

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.roots[i], filepath.FromSlash(rel))
		if isFile(candidate) {
			return Location{Path: candidate}, nil
		}
	}

	return Location{}, fmt.Errorf("%s: %w", source, ErrNotFound)
}

// Fetch downloads url, serving repeated requests from the cache. Concurrent
// fetches of the same url share one request. Cancelling ctx abandons only
// this caller's wait; the request keeps running while anyone else waits on it.
func (m *Manager) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := m.cache.Get(url); ok {
		return data, nil
	}

	fctx := m.join(ctx, url)
	defer m.leave(url)

	ch := m.group.DoChan(url, func() (interface{}, error) {
		return m.download(fctx, url)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("shared in-flight fetch", zap.String("url", url))
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching %s: %w", url, ctx.Err())
	}
}

// join registers a waiter for url and returns the download context.
func (m *Manager) join(ctx context.Context, url string) context.Context {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	f, ok := m.flights[url]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		m.flights[url] = f
	}
	f.waiters++
	return f.ctx
}

// leave drops a waiter. The last one out cancels the download and makes the
// next Fetch start a fresh request instead of joining the cancelled one.
func (m *Manager) leave(url string) {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	f := m.flights[url]
	if f == nil {
		return
	}
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	delete(m.flights, url)
	m.group.Forget(url)
}

func (m *Manager) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetching %s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	m.cache.Set(url, data)
	logger.Debug("fetched asset",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)))
	return data, nil
}

// Close drops the roots and the cache.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
	m.client.CloseIdleConnections()
}

// Cache returns the byte cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Cache is a simple in-memory cache for fetched assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
