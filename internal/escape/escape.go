// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON string text.
package escape

import (
	"errors"
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

const hexDigit = "0123456789abcdef"

// AppendQuote appends the JSON string encoding of src to dst, including the
// enclosing double quotation marks, and returns the extended slice.
func AppendQuote(dst []byte, src mem.RO) []byte {
	dst = append(dst, '"')
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if n == 0 {
			n = 1
		}
		switch {
		case r < ' ':
			if b := controlEsc[r]; b != 0 {
				dst = append(dst, '\\', b)
			} else {
				dst = append(dst, '\\', 'u', '0', '0', hexDigit[r>>4], hexDigit[r&15])
			}
		case r == '\\' || r == '"':
			dst = append(dst, '\\', byte(r))
		case r < utf8.RuneSelf:
			dst = append(dst, byte(r))
		case r == utf8.RuneError, r == '\u2028', r == '\u2029':
			dst = append(dst, '\\', 'u')
			dst = append(dst, hexDigit[r>>12&15], hexDigit[r>>8&15], hexDigit[r>>4&15], hexDigit[r&15])
		default:
			dst = utf8.AppendRune(dst, r)
		}
		src = src.SliceFrom(n)
	}
	return append(dst, '"')
}

// Unquote decodes the text of a JSON string, with the enclosing quotation
// marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. Invalid
// escapes are replaced by the Unicode replacement rune. Unquote reports an
// error for an incomplete escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	for {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dec, src), nil
		}
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		r, n := mem.DecodeRune(src)
		if n == 0 {
			n++
		}
		src = src.SliceFrom(n)

		switch r {
		case '"', '\\', '/':
			dec = append(dec, byte(r))
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			if src.Len() < 4 {
				return nil, errors.New("incomplete Unicode escape")
			}
			v, ok := parseHex4(src.SliceTo(4))
			if !ok {
				v = utf8.RuneError
			}
			dec = utf8.AppendRune(dec, v)
			src = src.SliceFrom(4)
		default:
			dec = utf8.AppendRune(dec, utf8.RuneError)
		}
	}
}

func parseHex4(data mem.RO) (rune, bool) {
	var v rune
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += rune(b - '0')
		case 'a' <= b && b <= 'f':
			v += rune(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += rune(b - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}
