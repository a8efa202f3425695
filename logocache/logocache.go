// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package logocache implements an on-disk cache of channel logo images.
//
// Each entry is stored in a single file named by the xxhash of its URL, and
// compressed with Zstandard.
package logocache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/creachadair/flatjson/internal/logging"
)

const (
	fileExt     = ".zst"
	maxLogoSize = 2 << 20
	maxPrefetch = 4
	dirPerm     = 0o755
	filePerm    = 0o644
)

var encoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("create zstd encoder: %v", err))
		}
		return enc
	},
}

var decoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("create zstd decoder: %v", err))
		}
		return dec
	},
}

// A Cache stores logo images in a directory. It is safe for concurrent use.
type Cache struct {
	dir    string
	client *http.Client
}

// New constructs a Cache in dir, creating the directory if necessary.  If
// client is nil, http.DefaultClient is used to fetch missing entries.
func New(dir string, client *http.Client) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Cache{dir: dir, client: client}, nil
}

// Key returns the cache key for url.
func Key(url string) string { return fmt.Sprintf("%016x", xxhash.Sum64String(url)) }

// Path returns the path of the file that holds the entry for url.
func (c *Cache) Path(url string) string { return filepath.Join(c.dir, Key(url)+fileExt) }

// Has reports whether c has an entry for url.
func (c *Cache) Has(url string) bool {
	_, err := os.Stat(c.Path(url))
	return err == nil
}

// Get returns the image data for url, fetching and storing it if c does not
// already have it.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	data, err := c.load(url)
	if err == nil {
		return data, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		logging.FromContext(ctx).Warn("discarding cache entry", logging.FieldURL, url, logging.FieldError, err)
	}

	data, err = c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.store(url, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Prefetch ensures c has entries for each of urls, fetching up to four at a
// time. Empty URLs are skipped. It reports the first error encountered.
func (c *Cache) Prefetch(ctx context.Context, urls []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPrefetch)
	for _, url := range urls {
		if url == "" || c.Has(url) {
			continue
		}
		g.Go(func() error {
			_, err := c.Get(ctx, url)
			return err
		})
	}
	return g.Wait()
}

func (c *Cache) load(url string) ([]byte, error) {
	raw, err := os.ReadFile(c.Path(url))
	if err != nil {
		return nil, err
	}
	dec := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(dec)
	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", Key(url), err)
	}
	return data, nil
}

func (c *Cache) store(url string, data []byte) error {
	enc := encoderPool.Get().(*zstd.Encoder)
	packed := enc.EncodeAll(data, nil)
	encoderPool.Put(enc)

	// Write to a temporary file and rename, so that concurrent readers never
	// see a partial entry.
	f, err := os.CreateTemp(c.dir, Key(url)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store logo: %w", err)
	}
	_, werr := f.Write(packed)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("store logo: %w", err)
	}
	if err := os.Chmod(f.Name(), filePerm); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("store logo: %w", err)
	}
	if err := os.Rename(f.Name(), c.Path(url)); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("store logo: %w", err)
	}
	return nil
}

func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch logo: %w", err)
	}
	rsp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch logo: %w", err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch logo %s: status %d", url, rsp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(rsp.Body, maxLogoSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch logo %s: %w", url, err)
	} else if len(data) > maxLogoSize {
		return nil, fmt.Errorf("fetch logo %s: image exceeds %d bytes", url, maxLogoSize)
	}
	return data, nil
}
