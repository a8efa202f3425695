// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatjson

import (
	"bytes"
	"fmt"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// Locate reports the line and column of byte offset pos in buf.  An offset
// past the end of buf is clamped to the end.
func Locate(buf []byte, pos int) LineCol {
	pos = min(max(pos, 0), len(buf))
	head := buf[:pos]
	line := bytes.Count(head, []byte{'\n'})
	col := pos
	if i := bytes.LastIndexByte(head, '\n'); i >= 0 {
		col = pos - i - 1
	}
	return LineCol{Line: line + 1, Column: col}
}
