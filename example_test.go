// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatjson_test

import (
	"fmt"

	"github.com/creachadair/flatjson"
)

func Example() {
	input := []byte(`{"name": "handmadehero", "game": "Programming", "viewers": 412}`)

	var store [16]flatjson.Token
	toks, st := flatjson.Parse(input, store[:])
	fmt.Println("status:", st)

	for it := toks.Root(); it.Valid(); it = it.Next() {
		key := it.Token()
		val, ok := it.Peek()
		if !ok {
			continue
		}
		switch {
		case flatjson.TextEquals(input, key, "name"):
			fmt.Printf("name is %s\n", val.Text(input))
		case flatjson.TextEquals(input, key, "viewers"):
			fmt.Printf("viewers is %s (%v)\n", val.Text(input), val.Kind)
		}
	}
	// Output:
	// status: success
	// name is handmadehero
	// viewers is 412 (primitive)
}

func ExampleParser_Grow() {
	input := []byte(`[1, 2, 3, 4, 5, 6, 7, 8]`)

	p := flatjson.NewParser(make([]flatjson.Token, 2))
	for {
		n, st := p.Parse(input)
		fmt.Printf("%d tokens, %v\n", n, st)
		if st != flatjson.NotEnoughTokens {
			break
		}
		p.Grow(make([]flatjson.Token, 2*p.Cap()))
	}
	// Output:
	// 2 tokens, not enough tokens
	// 4 tokens, not enough tokens
	// 8 tokens, not enough tokens
	// 9 tokens, success
}

func ExampleTokens_Lookup() {
	input := []byte(`{"stream": {"channel": {"display_name": "Towelliee"}}}`)
	toks, _ := flatjson.Parse(input, make([]flatjson.Token, 16))

	i := flatjson.NoParent
	for _, key := range []string{"stream", "channel", "display_name"} {
		var ok bool
		if i, ok = toks.Lookup(input, i, key); !ok {
			fmt.Println("missing", key)
			return
		}
	}
	fmt.Println(string(toks[i].Text(input)))
	// Output:
	// Towelliee
}
