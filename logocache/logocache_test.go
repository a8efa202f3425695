// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package logocache_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/creachadair/flatjson/logocache"
)

type logoServer struct {
	mu   sync.Mutex
	hits map[string]int
}

func (s *logoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.mu.Unlock()
	if strings.HasPrefix(r.URL.Path, "/missing") {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "PNG data for %s", r.URL.Path)
}

func (s *logoServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newTestCache(t *testing.T) (*logocache.Cache, *logoServer, string) {
	t.Helper()
	ls := &logoServer{hits: make(map[string]int)}
	srv := httptest.NewServer(ls)
	t.Cleanup(srv.Close)

	c, err := logocache.New(filepath.Join(t.TempDir(), "logos"), srv.Client())
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	return c, ls, srv.URL
}

func TestGet(t *testing.T) {
	c, ls, base := newTestCache(t)
	ctx := context.Background()
	url := base + "/a.png"

	if c.Has(url) {
		t.Fatal("Has: empty cache reports an entry")
	}
	for i := 0; i < 3; i++ {
		data, err := c.Get(ctx, url)
		if err != nil {
			t.Fatalf("Get %d: unexpected error: %v", i, err)
		}
		if got, want := string(data), "PNG data for /a.png"; got != want {
			t.Errorf("Get %d: got %q, want %q", i, got, want)
		}
	}
	if n := ls.count("/a.png"); n != 1 {
		t.Errorf("Server saw %d requests, want 1", n)
	}

	// The entry on disk is compressed, not the original bytes.
	raw, err := os.ReadFile(c.Path(url))
	if err != nil {
		t.Fatalf("Reading entry: %v", err)
	}
	if bytes.Contains(raw, []byte("PNG data")) {
		t.Errorf("Entry is not compressed: %q", raw)
	}

	if _, err := c.Get(ctx, base+"/missing.png"); err == nil {
		t.Error("Get missing: got nil, want error")
	}
}

func TestCorruptEntry(t *testing.T) {
	c, ls, base := newTestCache(t)
	url := base + "/b.png"
	if err := os.WriteFile(c.Path(url), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("Writing entry: %v", err)
	}
	data, err := c.Get(context.Background(), url)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got, want := string(data), "PNG data for /b.png"; got != want {
		t.Errorf("Get: got %q, want %q", got, want)
	}
	if n := ls.count("/b.png"); n != 1 {
		t.Errorf("Server saw %d requests, want 1", n)
	}
}

func TestPrefetch(t *testing.T) {
	c, ls, base := newTestCache(t)
	var urls []string
	for i := range 10 {
		urls = append(urls, fmt.Sprintf("%s/logo%d.png", base, i))
	}
	urls = append(urls, "", urls[0])

	if err := c.Prefetch(context.Background(), urls); err != nil {
		t.Fatalf("Prefetch: unexpected error: %v", err)
	}
	for i, url := range urls[:10] {
		if !c.Has(url) {
			t.Errorf("Has %q: got false, want true", url)
		}
		if n := ls.count(fmt.Sprintf("/logo%d.png", i)); n == 0 {
			t.Errorf("Logo %d was not fetched", i)
		}
	}

	if err := c.Prefetch(context.Background(), []string{base + "/missing.png"}); err == nil {
		t.Error("Prefetch missing: got nil, want error")
	}
}

func TestKey(t *testing.T) {
	a, b := logocache.Key("http://x/a.png"), logocache.Key("http://x/b.png")
	if a == b {
		t.Errorf("Key: distinct URLs share key %q", a)
	}
	if len(a) != 16 {
		t.Errorf("Key: got %q, want 16 hex digits", a)
	}
	if _, err := logocache.New("", nil); err == nil {
		t.Error("New with empty dir: got nil, want error")
	}
}
