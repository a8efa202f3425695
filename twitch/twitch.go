// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package twitch extracts live stream status from the JSON response of the
// Twitch streams endpoint, and tracks which watched channels have come
// online between polls.
package twitch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/creachadair/flatjson"
)

// DefaultBaseURL is the streams endpoint polled when no other is configured.
const DefaultBaseURL = "https://api.twitch.tv/kraken/streams"

// Size limits for the token store used by Decode. The store starts small and
// doubles until the response fits or the limit is reached.
const (
	initialTokens = 1024
	maxTokens     = 1 << 16
)

// ErrIncomplete is reported by Decode when the response ends before the
// document is complete.
var ErrIncomplete = errors.New("incomplete response")

// A Stream describes one live stream reported by the endpoint.
type Stream struct {
	Name        string // login name of the channel, e.g., "handmadehero"
	DisplayName string // display name of the channel
	Game        string // current game, possibly empty
	Logo        string // URL of the channel logo, possibly empty
}

// Label returns the display name of s, or its login name if it has none.
func (s Stream) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// StreamsURL returns the URL to query base for the streams of channels.
func StreamsURL(base string, channels []string) string {
	esc := make([]string, len(channels))
	for i, c := range channels {
		esc[i] = url.QueryEscape(c)
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "channel=" + strings.Join(esc, ",")
}

// Decode reports the live streams described by a streams response.  Streams
// with no channel name are omitted.
//
// If the response is malformed or truncated, Decode reports an error along
// with whatever streams could be recovered from the portion before the error.
func Decode(buf []byte) ([]Stream, error) {
	p := flatjson.NewParser(make([]flatjson.Token, initialTokens))
	for {
		if _, st := p.Parse(buf); st != flatjson.NotEnoughTokens {
			break
		}
		if p.Cap() >= maxTokens {
			return nil, fmt.Errorf("decode streams: %w", p.Err())
		}
		if err := p.Grow(make([]flatjson.Token, 2*p.Cap())); err != nil {
			return nil, fmt.Errorf("decode streams: %w", err)
		}
	}

	var err error
	switch p.Status() {
	case flatjson.Success:
	case flatjson.InvalidCharacter:
		err = fmt.Errorf("decode streams: %w", p.Err())
	default:
		err = fmt.Errorf("decode streams: %w at offset %d", ErrIncomplete, p.Offset())
	}
	return extract(buf, p.Tokens()), err
}

// extract walks toks for the members of interest:
//
//	{"streams": [{"game": G, "channel": {"name": N, "display_name": D, "logo": L}}]}
func extract(buf []byte, toks flatjson.Tokens) []Stream {
	var out []Stream
	for it := toks.Root(); it.Valid(); it = it.Next() {
		v, ok := it.Peek()
		if !ok || v.Kind != flatjson.Array || !flatjson.TextEquals(buf, it.Token(), "streams") {
			continue
		}
		for elt := toks.Children(it.PeekIndex()); elt.Valid(); elt = elt.Next() {
			if elt.Token().Kind != flatjson.Object {
				continue
			}
			if s := decodeStream(buf, toks, elt.Index()); s.Name != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func decodeStream(buf []byte, toks flatjson.Tokens, i int) Stream {
	var s Stream
	for it := toks.Children(i); it.Valid(); it = it.Next() {
		key := it.Token()
		val, ok := it.Peek()
		if !ok {
			continue
		}
		switch {
		case val.Kind == flatjson.String && flatjson.TextEquals(buf, key, "game"):
			s.Game = text(buf, val)
		case val.Kind == flatjson.Object && flatjson.TextEquals(buf, key, "channel"):
			for ch := toks.Children(it.PeekIndex()); ch.Valid(); ch = ch.Next() {
				k := ch.Token()
				v, ok := ch.Peek()
				if !ok || v.Kind != flatjson.String {
					continue
				}
				switch {
				case flatjson.TextEquals(buf, k, "name"):
					s.Name = text(buf, v)
				case flatjson.TextEquals(buf, k, "display_name"):
					s.DisplayName = text(buf, v)
				case flatjson.TextEquals(buf, k, "logo"):
					s.Logo = text(buf, v)
				}
			}
		}
	}
	return s
}

// text returns the decoded text of a string token, or its raw text if it has
// a malformed escape.
func text(buf []byte, tok flatjson.Token) string {
	if dec, err := tok.Unquote(buf); err == nil {
		return string(dec)
	}
	return string(tok.Text(buf))
}
