// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatjson

import (
	"errors"
	"fmt"

	"github.com/creachadair/flatjson/internal/escape"

	"go4.org/mem"
)

// Kind is the type of a token in the token store.
type Kind byte

// Constants defining the valid Kind values.
const (
	Undefined Kind = iota // zero value; marks an unused slot
	Object                // { ... }
	Array                 // [ ... ]
	String                // quoted string, without quotes
	Primitive             // number, true, false, null, or other bare literal
)

var kindStr = [...]string{
	Undefined: "undefined",
	Object:    "object",
	Array:     "array",
	String:    "string",
	Primitive: "primitive",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return fmt.Sprintf("Kind(%d)", v)
	}
	return kindStr[v]
}

// IsContainer reports whether k is Object or Array.
func (k Kind) IsContainer() bool { return k == Object || k == Array }

// NoParent is the Parent value of a token at the top level of the input.
const NoParent = -1

// A Token is a single lexical unit of a JSON document. Tokens do not hold a
// copy of their text: Start and End are byte offsets into the buffer that was
// parsed, and that buffer must outlive any use of the token's text.
type Token struct {
	Kind Kind

	// For a String, Start and End bound the text between the quotes.  For an
	// Object or Array, they span from the open bracket to one past the close
	// bracket. End is -1 while a container is still open.
	Start, End int

	// Size counts the tokens appended with this token as their parent.  For an
	// Object this is the number of keys, for an Array the number of elements.
	// A key token has Size 1 once its value has been scanned.
	Size int

	// Parent is the index in the token store of the enclosing token, or
	// NoParent. The value of an object member is parented to its key.
	Parent int
}

// IsOpen reports whether t is a container that has not been closed.
func (t Token) IsOpen() bool { return t.Kind.IsContainer() && t.End < 0 }

// Span returns the location span of t in its source buffer.
func (t Token) Span() Span { return Span{Pos: t.Start, End: t.End} }

// Text returns a view of the bytes of buf spanned by t, or nil if t does not
// describe a valid span of buf. The result shares storage with buf.
func (t Token) Text(buf []byte) []byte {
	if !t.within(buf) {
		return nil
	}
	return buf[t.Start:t.End]
}

func (t Token) within(buf []byte) bool {
	return t.Start >= 0 && t.End >= t.Start && t.End <= len(buf)
}

// Unquote decodes the escape sequences in the text of a String token.  The
// scanner does not interpret escapes, so a string containing an escaped quote
// will already have been cut short at that quote.
func (t Token) Unquote(buf []byte) ([]byte, error) {
	if t.Kind != String {
		return nil, fmt.Errorf("token is %v, not string", t.Kind)
	}
	if !t.within(buf) {
		return nil, errors.New("token span out of range")
	}
	return escape.Unquote(mem.B(t.Text(buf)))
}

// Status reports the state of a Parser.
type Status byte

// Constants defining the valid Status values.
const (
	Uninitialized    Status = iota // parser not constructed with NewParser
	Initialized                    // ready, or input incomplete
	NotEnoughTokens                // token store is full; see Parser.Grow
	InvalidCharacter               // malformed input; parsing abandoned
	Success                        // the whole input was consumed
)

var statusStr = [...]string{
	Uninitialized:    "uninitialized",
	Initialized:      "initialized",
	NotEnoughTokens:  "not enough tokens",
	InvalidCharacter: "invalid character",
	Success:          "success",
}

func (s Status) String() string {
	v := int(s)
	if v >= len(statusStr) {
		return fmt.Sprintf("Status(%d)", v)
	}
	return statusStr[v]
}

// ErrNotEnoughTokens is reported by Parser.Err when the token store was
// exhausted before the input was fully scanned.
var ErrNotEnoughTokens = errors.New("not enough tokens")

// SyntaxError is the concrete type of errors reported for malformed input.
type SyntaxError struct {
	Pos     int // byte offset of the offending input
	Message string
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s (offset %d)", s.Message, s.Pos)
}
