// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatjson

import "go4.org/mem"

// Tokens is the filled portion of a token store, in scan order.
type Tokens []Token

// Root returns an iterator over the children of the token at index 0, which
// for a single JSON document is the outermost value. For an object, those are
// its keys.
func (ts Tokens) Root() Iterator { return ts.Children(NoParent) }

// Children returns an iterator over the tokens whose parent is the token at
// index parent. A negative parent is treated as 0.
//
// Each step of the iterator scans the store linearly, so visiting all the
// children of a token costs time proportional to the size of the store.
func (ts Tokens) Children(parent int) Iterator {
	if parent < 0 {
		parent = 0
	}
	return Iterator{ts: ts, parent: parent, pos: -1}.Next()
}

// Lookup returns the index of the value of the member named key among the
// children of parent, which should be an object.  It reports false if there
// is no such member, or if the member has no value.
func (ts Tokens) Lookup(buf []byte, parent int, key string) (int, bool) {
	for it := ts.Children(parent); it.Valid(); it = it.Next() {
		if tok := it.Token(); tok.Kind != String || !TextEquals(buf, tok, key) {
			continue
		}
		if v, ok := it.Peek(); ok && v.Parent == it.Index() {
			return it.PeekIndex(), true
		}
	}
	return -1, false
}

// An Iterator is a cursor over the children of a single token. An iterator is
// a value: Next returns a new iterator and does not modify its receiver.
//
//	for it := ts.Children(i); it.Valid(); it = it.Next() {
//	   log.Printf("child %d: %v", it.Index(), it.Token().Kind)
//	}
//
// An iterator reads but does not copy the token store, and must not be used
// after the store is modified.
type Iterator struct {
	ts     Tokens
	parent int
	pos    int
}

// Next returns an iterator positioned at the next child after it, or an
// invalid iterator if there are no further children.
func (it Iterator) Next() Iterator {
	for it.pos++; it.pos < len(it.ts); it.pos++ {
		if it.ts[it.pos].Parent == it.parent {
			break
		}
	}
	return it
}

// Valid reports whether it is positioned at a token.
func (it Iterator) Valid() bool { return it.pos >= 0 && it.pos < len(it.ts) }

// Index reports the index in the store of the current token.
func (it Iterator) Index() int { return it.pos }

// Parent reports the index of the token whose children it enumerates.
func (it Iterator) Parent() int { return it.parent }

// Token returns the current token. It panics if it is not valid.
func (it Iterator) Token() Token {
	if !it.Valid() {
		panic("flatjson: Token called on an invalid iterator")
	}
	return it.ts[it.pos]
}

// Peek returns the token immediately after the current one in the store,
// whether or not it is a sibling. For a key token, this is its value.  Peek
// reports false if the current token is the last in the store.
func (it Iterator) Peek() (Token, bool) {
	if i := it.PeekIndex(); i >= 0 {
		return it.ts[i], true
	}
	return Token{}, false
}

// PeekIndex returns the store index of the token reported by Peek, or -1.
func (it Iterator) PeekIndex() int {
	if !it.Valid() || it.pos+1 >= len(it.ts) {
		return -1
	}
	return it.pos + 1
}

// TextEquals reports whether the text of tok in buf is exactly s.  It does not
// copy or allocate. A token whose span does not lie within buf matches
// nothing.
func TextEquals(buf []byte, tok Token, s string) bool {
	if !tok.within(buf) {
		return false
	}
	return mem.B(buf[tok.Start:tok.End]).Equal(mem.S(s))
}
