package internal

import "fmt"

// Position represents a location in template source.
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number, counted in runes
}

// String returns a human-readable position string.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// PositionAt calculates the Position of a byte offset in source.
// Offsets past the end are clamped to len(source).
func PositionAt(source string, offset int) Position {
	return Advance(source, Position{}, offset)
}

// Advance calculates the Position of offset by counting forward from, a
// Position previously computed for the same source. Offsets before from, or a
// zero from, are counted from the start of source.
func Advance(source string, from Position, offset int) Position {
	offset = min(max(offset, 0), len(source))
	if from.Line == 0 || from.Offset > offset {
		from = Position{Line: 1, Column: 1}
	}

	pos := from
	pos.Offset = offset
	for _, r := range source[from.Offset:offset] {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}
