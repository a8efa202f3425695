// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatjson_test

import (
	"testing"

	"github.com/creachadair/flatjson"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, input string) ([]byte, flatjson.Tokens) {
	t.Helper()
	buf := []byte(input)
	toks, st := flatjson.Parse(buf, make([]flatjson.Token, 64))
	if st != flatjson.Success {
		t.Fatalf("Parse %#q: got status %v", input, st)
	}
	return buf, toks
}

// texts collects the text of each token visited by it.
func texts(buf []byte, it flatjson.Iterator) []string {
	var out []string
	for ; it.Valid(); it = it.Next() {
		out = append(out, string(it.Token().Text(buf)))
	}
	return out
}

func TestIterator(t *testing.T) {
	buf, toks := mustParse(t, `{"name":"foo","game":"bar"}`)

	it := toks.Root()
	if !it.Valid() || it.Index() != 1 {
		t.Fatalf("Root: got index %d, want 1", it.Index())
	}
	if !flatjson.TextEquals(buf, it.Token(), "name") {
		t.Errorf("First key: got %q, want name", it.Token().Text(buf))
	}
	if v, ok := it.Peek(); !ok || v != toks[2] {
		t.Errorf("Peek: got %+v, %v; want %+v", v, ok, toks[2])
	}

	it = it.Next()
	if !it.Valid() || !flatjson.TextEquals(buf, it.Token(), "game") {
		t.Fatalf("Second key: got %+v", it)
	}
	if v, ok := it.Peek(); !ok || !flatjson.TextEquals(buf, v, "bar") {
		t.Errorf("Peek: got %q, want bar", v.Text(buf))
	}
	if it = it.Next(); it.Valid() {
		t.Errorf("Next: got index %d, want end", it.Index())
	}
	if it.Parent() != 0 {
		t.Errorf("Parent: got %d, want 0", it.Parent())
	}
}

func TestIteratorNested(t *testing.T) {
	buf, toks := mustParse(t, `{"a":{"b":1},"c":[2,"three",[4]],"d":"e"}`)

	if diff := cmp.Diff([]string{"a", "c", "d"}, texts(buf, toks.Root())); diff != "" {
		t.Errorf("Root keys: (-want, +got)\n%s", diff)
	}

	c, ok := toks.Lookup(buf, 0, "c")
	if !ok || toks[c].Kind != flatjson.Array {
		t.Fatalf("Lookup c: got %d, %v", c, ok)
	}
	if diff := cmp.Diff([]string{"2", "three", "[4]"}, texts(buf, toks.Children(c))); diff != "" {
		t.Errorf("Array elements: (-want, +got)\n%s", diff)
	}

	a, ok := toks.Lookup(buf, flatjson.NoParent, "a")
	if !ok {
		t.Fatal("Lookup a: not found")
	}
	b, ok := toks.Lookup(buf, a, "b")
	if !ok || string(toks[b].Text(buf)) != "1" {
		t.Errorf("Lookup b: got %d, %v", b, ok)
	}

	if i, ok := toks.Lookup(buf, 0, "nonesuch"); ok {
		t.Errorf("Lookup nonesuch: got %d, want not found", i)
	}
	// Values are not keys.
	if i, ok := toks.Lookup(buf, 0, "e"); ok {
		t.Errorf("Lookup e: got %d, want not found", i)
	}
	// An array element followed by a sibling is not a key.
	if i, ok := toks.Lookup(buf, c, "three"); ok {
		t.Errorf("Lookup three: got %d, want not found", i)
	}
}

func TestIteratorEmpty(t *testing.T) {
	var toks flatjson.Tokens
	it := toks.Root()
	if it.Valid() {
		t.Errorf("Root of empty store is valid at %d", it.Index())
	}
	if _, ok := it.Peek(); ok {
		t.Error("Peek of invalid iterator reported a token")
	}
	if got := it.PeekIndex(); got != -1 {
		t.Errorf("PeekIndex: got %d, want -1", got)
	}
	mtest.MustPanic(t, func() { it.Token() })

	_, toks = mustParse(t, `[]`)
	if it := toks.Root(); it.Valid() {
		t.Errorf("Root of empty array is valid at %d", it.Index())
	}
	if it := toks.Children(5); it.Valid() {
		t.Errorf("Children of out-of-range index is valid at %d", it.Index())
	}
}

func TestPeekLast(t *testing.T) {
	_, toks := mustParse(t, `[1,2]`)
	it := toks.Root().Next()
	if it.Index() != 2 {
		t.Fatalf("Index: got %d, want 2", it.Index())
	}
	if v, ok := it.Peek(); ok {
		t.Errorf("Peek at end: got %+v, want none", v)
	}
}

func TestTextEquals(t *testing.T) {
	buf, toks := mustParse(t, `{"game":"","gamer":"g"}`)
	tests := []struct {
		index int
		s     string
		want  bool
	}{
		{1, "game", true},
		{1, "gam", false},
		{1, "gamer", false},
		{1, "", false},
		{2, "", true},
		{2, "x", false},
		{3, "gamer", true},
		{4, "g", true},
		{0, `{"game":"","gamer":"g"}`, true},
	}
	for _, test := range tests {
		tk := toks[test.index]
		if got := flatjson.TextEquals(buf, tk, test.s); got != test.want {
			t.Errorf("TextEquals(%d, %q): got %v, want %v", test.index, test.s, got, test.want)
		}
		// Agreement with slicing the buffer directly.
		if got := string(buf[tk.Start:tk.End]) == test.s; got != test.want {
			t.Errorf("Slice %d == %q: got %v, want %v", test.index, test.s, got, test.want)
		}
	}

	// Spans outside the buffer match nothing.
	bad := []flatjson.Token{
		{Kind: flatjson.String, Start: 2, End: 100},
		{Kind: flatjson.String, Start: -1, End: 2},
		{Kind: flatjson.Object, Start: 0, End: -1},
	}
	for _, tk := range bad {
		if flatjson.TextEquals(buf, tk, "") {
			t.Errorf("TextEquals(%+v): got true, want false", tk)
		}
		if tk.Text(buf) != nil {
			t.Errorf("Text(%+v): got %q, want nil", tk, tk.Text(buf))
		}
	}
}
