// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatjson

import (
	"bytes"
	"errors"
	"fmt"
)

// A Parser scans a JSON buffer in a single left-to-right pass and records the
// tokens it finds in a caller-provided store. The Parser never allocates
// tokens: when the store is full, parsing stops with status NotEnoughTokens
// and may be resumed after a call to Grow.
//
// A Parser does not validate the grammar of its input. It checks only that
// brackets are balanced and that bare literals are printable ASCII.
type Parser struct {
	store  []Token
	n      int   // number of tokens written
	at     int   // offset of the next unscanned byte
	parent int   // index of the current parent, or NoParent
	open   []int // indexes of containers not yet closed, innermost last
	tail   bool  // the last token is a literal that ran to the end of input
	status Status
	err    error
}

// NewParser constructs a Parser that writes tokens into store.  The length of
// store is the capacity of the parser; its previous contents are ignored.
func NewParser(store []Token) *Parser {
	return &Parser{store: store, parent: NoParent, status: Initialized}
}

// Parse tokenizes buf into store and returns the tokens written along with the
// final status of the parser.
func Parse(buf []byte, store []Token) (Tokens, Status) {
	p := NewParser(store)
	_, st := p.Parse(buf)
	return p.Tokens(), st
}

// Parse scans buf from the current offset, appending tokens to the store.  It
// returns the total number of tokens in the store, including any written by
// previous calls, and the status of the parser.
//
// Scanning stops at the end of buf or at the first NUL byte. Once the status
// is InvalidCharacter, further calls do nothing. If the status is
// NotEnoughTokens, call Grow before calling Parse again on the same buffer.
//
// String escapes are not interpreted: a string ends at the next quotation mark
// regardless of any preceding backslash. A string with no closing quotation
// mark is not recorded, and the status remains Initialized.
//
// To continue an incomplete parse, call Parse again with a buffer that extends
// the previous one. A literal that ran to the end of the previous buffer is
// extended in place if the new buffer continues it.
func (p *Parser) Parse(buf []byte) (int, Status) {
	switch p.status {
	case Uninitialized:
		p.parent, p.status = NoParent, Initialized
	case NotEnoughTokens, InvalidCharacter:
		return p.n, p.status
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if p.tail && p.at < len(buf) {
		p.tail = false
		if !isPrimitiveEnd(buf[p.at]) {
			end, ok := p.scanLiteral(buf, p.at)
			if !ok {
				return p.n, p.status
			}
			p.store[p.n-1].End = end
			p.at = end
			p.tail = end == len(buf)
		}
	}

	for p.at < len(buf) {
		switch c := buf[p.at]; c {
		case '\t', '\r', '\n', ' ':
			p.at++

		case ':':
			// The next value belongs to the key just scanned.
			p.parent = p.n - 1
			p.at++

		case ',':
			p.resync()
			p.at++

		case '{', '[':
			kind := Object
			if c == '[' {
				kind = Array
			}
			i, ok := p.add(Token{Kind: kind, Start: p.at, End: -1})
			if !ok {
				return p.n, p.status
			}
			p.open = append(p.open, i)
			p.parent = i
			p.at++

		case '}', ']':
			if !p.closeContainer(c) {
				return p.n, p.status
			}
			p.at++

		case '"':
			n := bytes.IndexByte(buf[p.at+1:], '"')
			if n < 0 {
				return p.n, p.status // unterminated
			}
			end := p.at + 1 + n
			if _, ok := p.add(Token{Kind: String, Start: p.at + 1, End: end}); !ok {
				return p.n, p.status
			}
			p.at = end + 1

		default:
			if !p.scanPrimitive(buf) {
				return p.n, p.status
			}
		}
	}
	if len(p.open) == 0 {
		p.status = Success
	}
	return p.n, p.status
}

// scanPrimitive records a bare literal beginning at the current offset.
func (p *Parser) scanPrimitive(buf []byte) bool {
	end, ok := p.scanLiteral(buf, p.at)
	if !ok {
		return false
	}
	if _, ok := p.add(Token{Kind: Primitive, Start: p.at, End: end}); !ok {
		return false
	}
	p.at = end
	p.tail = end == len(buf)
	return true
}

// scanLiteral reports the end of the literal text beginning at pos.
func (p *Parser) scanLiteral(buf []byte, pos int) (int, bool) {
	end := pos
	for end < len(buf) && !isPrimitiveEnd(buf[end]) {
		if b := buf[end]; b < ' ' || b > '~' {
			p.at = end
			p.failf("invalid byte %q in literal", b)
			return 0, false
		}
		end++
	}
	return end, true
}

// closeContainer closes the innermost open container, which must match the
// closing bracket c.
func (p *Parser) closeContainer(c byte) bool {
	want := Object
	if c == ']' {
		want = Array
	}
	k := len(p.open)
	if k == 0 {
		p.failf("unmatched %q", c)
		return false
	}
	i := p.open[k-1]
	if got := p.store[i].Kind; got != want {
		p.failf("%q does not close %v at offset %d", c, got, p.store[i].Start)
		return false
	}
	p.store[i].End = p.at + 1
	p.open = p.open[:k-1]
	p.parent = p.store[i].Parent
	return true
}

// resync restores the current parent to the innermost open container after
// the value of an object member is complete.
func (p *Parser) resync() {
	if p.parent == NoParent || p.store[p.parent].Kind.IsContainer() {
		return
	}
	if k := len(p.open); k > 0 {
		p.parent = p.open[k-1]
	} else {
		p.parent = p.store[p.parent].Parent
	}
}

// add appends tok to the store as a child of the current parent, and reports
// its index. If the store is full, add sets the status and reports false.
func (p *Parser) add(tok Token) (int, bool) {
	if p.n >= len(p.store) {
		p.status = NotEnoughTokens
		p.err = fmt.Errorf("%w: store holds %d (offset %d)", ErrNotEnoughTokens, len(p.store), p.at)
		return 0, false
	}
	tok.Parent = p.parent
	if p.parent != NoParent {
		p.store[p.parent].Size++
	}
	p.store[p.n] = tok
	p.n++
	return p.n - 1, true
}

func (p *Parser) failf(msg string, args ...any) {
	p.status = InvalidCharacter
	p.err = &SyntaxError{Pos: p.at, Message: fmt.Sprintf(msg, args...)}
}

// Grow replaces the token store of p with store, which must be large enough
// to hold the tokens already written. If p stopped for lack of tokens, it is
// made ready to resume from the offset where it stopped.
func (p *Parser) Grow(store []Token) error {
	if len(store) < p.n {
		return fmt.Errorf("store of %d cannot hold %d tokens", len(store), p.n)
	}
	copy(store, p.store[:p.n])
	p.store = store
	if p.status == NotEnoughTokens {
		p.status, p.err = Initialized, nil
	}
	return nil
}

// Reset discards all parser state so that p can scan a new buffer into the
// same store.
func (p *Parser) Reset() {
	*p = Parser{store: p.store, open: p.open[:0], parent: NoParent, status: Initialized}
}

// Tokens returns the tokens written so far. The result shares storage with
// the store, and is only valid until the next call to Grow or Reset.
func (p *Parser) Tokens() Tokens { return Tokens(p.store[:p.n]) }

// Len reports the number of tokens written so far.
func (p *Parser) Len() int { return p.n }

// Cap reports the capacity of the current token store.
func (p *Parser) Cap() int { return len(p.store) }

// Offset reports the offset of the next byte to be scanned.
func (p *Parser) Offset() int { return p.at }

// Depth reports the number of containers that are open.
func (p *Parser) Depth() int { return len(p.open) }

// Status reports the current status of p.
func (p *Parser) Status() Status { return p.status }

// Err reports the error that stopped the parser, if any. For a syntax error
// the concrete type is *SyntaxError; for a full store the error wraps
// ErrNotEnoughTokens.
func (p *Parser) Err() error { return p.err }

// IsNotEnoughTokens reports whether err indicates a full token store.
func IsNotEnoughTokens(err error) bool { return errors.Is(err, ErrNotEnoughTokens) }

func isPrimitiveEnd(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == ',' || b == ']' || b == '}'
}
