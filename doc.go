// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package flatjson implements a non-allocating JSON tokenizer that records
// its output in a flat array, and an iterator to navigate that array as a
// tree.
//
// # Parsing
//
// The caller provides a fixed-size token store. The Parser scans the input
// once, from left to right, and appends one Token for each object, array,
// string and bare literal it finds. Each token records the byte span of its
// text and the index of its parent:
//
//	var store [256]flatjson.Token
//	toks, st := flatjson.Parse(input, store[:])
//	if st != flatjson.Success {
//	   log.Printf("Parse stopped: %v", st)
//	}
//
// If the store fills up, parsing stops with status NotEnoughTokens. The tokens
// already written remain valid. To continue, give the parser a larger store:
//
//	p := flatjson.NewParser(make([]flatjson.Token, 64))
//	for {
//	   if _, st := p.Parse(input); st != flatjson.NotEnoughTokens {
//	      break
//	   }
//	   p.Grow(make([]flatjson.Token, 2*p.Cap()))
//	}
//
// The parser does not decode string escapes, and a string ends at the first
// quotation mark whether or not it is preceded by a backslash. Use the
// Unquote method of a token to decode the escapes of a complete string.
//
// # Navigation
//
// Tokens are never linked to their children. Instead, an Iterator scans the
// store for tokens whose parent is a given index:
//
//	for it := toks.Root(); it.Valid(); it = it.Next() {
//	   key := it.Token()
//	   val, ok := it.Peek()
//	   if ok && flatjson.TextEquals(input, key, "name") {
//	      log.Printf("name is %q", val.Text(input))
//	   }
//	}
//
// Within an object, the parent of each key is the object, and the parent of
// each value is its key. Because the parser writes a value immediately after
// its key, the Peek method of an iterator positioned at a key returns the
// value in constant time.
//
// Tokens refer to the input by offset. The input buffer must not be modified
// while its tokens are in use.
package flatjson
