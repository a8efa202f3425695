// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatjson

import (
	"github.com/creachadair/flatjson/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src []byte) string { return string(escape.AppendQuote(nil, mem.B(src))) }

// Unquote decodes the escape sequences of src, the text of a string without
// its enclosing quotation marks. Invalid escapes are replaced by the Unicode
// replacement rune. Unquote reports an error for an incomplete escape.
func Unquote(src []byte) ([]byte, error) { return escape.Unquote(mem.B(src)) }
