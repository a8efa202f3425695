// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package poll fetches a URL at a fixed interval and hands each response
// body to a callback.
package poll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/creachadair/flatjson/internal/logging"
)

// MaxBodySize is the largest response body a Poller will read.
const MaxBodySize = 4 << 20

// NewClient returns an HTTP client with the given timeout whose transport
// requests and transparently decodes compressed responses.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(http.DefaultTransport),
	}
}

// A Poller fetches URL every Interval and calls Handle with the body of each
// successful response.
type Poller struct {
	Client   *http.Client // if nil, use NewClient(30 * time.Second)
	URL      string
	Header   http.Header // additional request headers
	Interval time.Duration

	// Handle is called with the body of each successful response.  The body
	// is not retained by the poller and may be kept by Handle.
	Handle func(ctx context.Context, body []byte) error
}

// StatusError reports an HTTP response with a status other than 200 OK.
type StatusError struct {
	URL    string
	Status int
}

func (s *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d %s", s.URL, s.Status, http.StatusText(s.Status))
}

func (p *Poller) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return NewClient(30 * time.Second)
}

// Fetch performs a single request and returns the response body.
func (p *Poller) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	for key, vals := range p.Header {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}
	rsp, err := p.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(rsp.Body, MaxBodySize))
		return nil, &StatusError{URL: p.URL, Status: rsp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(rsp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.URL, err)
	} else if len(body) > MaxBodySize {
		return nil, fmt.Errorf("fetch %s: response exceeds %d bytes", p.URL, MaxBodySize)
	}
	return body, nil
}

// Once fetches the URL and, if that succeeds, calls Handle with the body.
func (p *Poller) Once(ctx context.Context) error {
	body, err := p.Fetch(ctx)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("fetched", logging.FieldURL, p.URL, logging.FieldBytes, len(body))
	if p.Handle == nil {
		return nil
	}
	return p.Handle(ctx, body)
}

// Run polls immediately and then once per interval until ctx ends.  Errors
// from individual polls are logged and do not stop the loop. Run returns the
// error that ended ctx.
func (p *Poller) Run(ctx context.Context) error {
	if p.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	log := logging.FromContext(ctx)
	t := time.NewTicker(p.Interval)
	defer t.Stop()
	for {
		if err := p.Once(ctx); err != nil && ctx.Err() == nil {
			log.Warn("poll failed", logging.FieldURL, p.URL, logging.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
