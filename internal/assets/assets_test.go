package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://cdn.example.com/a.glb", true},
		{"http://localhost/a.glb", true},
		{"/model.glb", false},
		{"models/a.glb", false},
		{"httpmodel.glb", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.source); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writeFile(t, filepath.Join(low, "model.glb"), []byte("low"))
	writeFile(t, filepath.Join(low, "only-low.glb"), []byte("low"))
	writeFile(t, filepath.Join(high, "model.glb"), []byte("high"))
	direct := filepath.Join(t.TempDir(), "direct.glb")
	writeFile(t, direct, []byte("direct"))

	m := NewManager(time.Second)
	if err := m.AddRoot(low); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRoot(high); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		source string
		want   Location
		err    error
	}{
		{"url passes through", "https://x/a.glb", Location{URL: "https://x/a.glb"}, nil},
		{"existing path", direct, Location{Path: direct}, nil},
		{"root relative prefers last root", "/model.glb", Location{Path: filepath.Join(high, "model.glb")}, nil},
		{"falls back to earlier root", "only-low.glb", Location{Path: filepath.Join(low, "only-low.glb")}, nil},
		{"missing", "nope.glb", Location{}, ErrNotFound},
		{"empty", "", Location{}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Resolve(tt.source)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAddRootRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	writeFile(t, file, nil)

	m := NewManager(time.Second)
	if err := m.AddRoot(file); err == nil {
		t.Error("AddRoot accepted a regular file")
	}
	if err := m.AddRoot(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("AddRoot accepted a missing directory")
	}
}

func TestFetchCaches(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Path == "/missing.glb" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/broken.glb" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("glTF"))
	}))
	defer srv.Close()

	m := NewManager(time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		data, err := m.Fetch(ctx, srv.URL+"/a.glb")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(data) != "glTF" {
			t.Errorf("data = %q", data)
		}
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
	if hits, _ := m.Cache().Stats(); hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}

	if _, err := m.Fetch(ctx, srv.URL+"/missing.glb"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
	if _, err := m.Fetch(ctx, srv.URL+"/broken.glb"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("broken err = %v, want non-NotFound error", err)
	}
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(5 * time.Second)
	if _, err := m.Fetch(ctx, srv.URL+"/slow.glb"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFetchSurvivesAbandonedCaller(t *testing.T) {
	var requests int32
	arrived := make(chan struct{}, 4)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		arrived <- struct{}{}
		select {
		case <-release:
			w.Write([]byte("glTF"))
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	m := NewManager(5 * time.Second)
	url := srv.URL + "/a.glb"

	stale, cancel := context.WithCancel(context.Background())
	staleErr := make(chan error, 1)
	go func() {
		_, err := m.Fetch(stale, url)
		staleErr <- err
	}()
	<-arrived

	type result struct {
		data []byte
		err  error
	}
	live := make(chan result, 1)
	go func() {
		data, err := m.Fetch(context.Background(), url)
		live <- result{data, err}
	}()

	// Let the live caller join the in-flight request before the stale one leaves.
	deadline := time.Now().Add(2 * time.Second)
	for {
		m.flightMu.Lock()
		n := 0
		if f := m.flights[url]; f != nil {
			n = f.waiters
		}
		m.flightMu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("second caller never joined the fetch")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-staleErr; !errors.Is(err, context.Canceled) {
		t.Errorf("stale err = %v, want context.Canceled", err)
	}

	close(release)
	got := <-live
	if got.err != nil {
		t.Fatalf("live fetch failed: %v", got.err)
	}
	if string(got.data) != "glTF" {
		t.Errorf("data = %q", got.data)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestFetchAfterAbandonedRequestStartsFresh(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			<-r.Context().Done()
			return
		}
		w.Write([]byte("glTF"))
	}))
	defer srv.Close()

	m := NewManager(5 * time.Second)
	url := srv.URL + "/b.glb"

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := m.Fetch(ctx, url); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("first fetch err = %v, want deadline exceeded", err)
	}

	data, err := m.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if string(data) != "glTF" {
		t.Errorf("data = %q", data)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("a"); ok {
		t.Error("empty cache returned a value")
	}
	c.Set("a", []byte{1})
	if d, ok := c.Get("a"); !ok || len(d) != 1 {
		t.Errorf("Get = %v, %v", d, ok)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats = %d, %d; want 1, 1", hits, misses)
	}
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("Clear kept data")
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.glb")
	other := filepath.Join(dir, "other.glb")
	writeFile(t, path, []byte("v1"))

	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	writeFile(t, other, []byte("ignored"))
	writeFile(t, path, []byte("v2"))

	select {
	case got := <-w.Changed():
		if filepath.Base(got) != "model.glb" {
			t.Errorf("changed = %s, want model.glb", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}
