package padla

import (
	"maps"
	"strings"
	"unicode/utf8"

	"github.com/JarvisCraft/padla-sub001/internal"
)

// Syntax is the delimiter configuration of a template dialect.
//
// A Syntax is treated as immutable once handed to an Engine or Registry:
// both keep their own deep copy.
type Syntax struct {
	// Prefix opens a placeholder. Default: '{'
	Prefix rune
	// Suffix closes a placeholder. Default: '}'
	Suffix rune
	// Delimiter separates the formatter name from its value. Default: ':'
	Delimiter rune
	// Escape suppresses the special meaning of the next rune. Default: '\'
	Escape rune
	// SpecialEscapes translates the rune after an escape in plain text
	// (never inside a placeholder body) to a control character.
	SpecialEscapes map[rune]rune
	// UnknownReplacement is produced for placeholders whose name has no formatter.
	UnknownReplacement string
}

// DefaultSpecialEscapes returns the default escape-letter translations.
func DefaultSpecialEscapes() map[rune]rune {
	return map[rune]rune{
		't': '\t',
		'b': '\b',
		'n': '\n',
		'r': '\r',
		'f': '\f',
	}
}

// DefaultSyntax returns the default syntax: {name:value} with \ escapes.
func DefaultSyntax() Syntax {
	return Syntax{
		Prefix:             DefaultPrefix,
		Suffix:             DefaultSuffix,
		Delimiter:          DefaultDelimiter,
		Escape:             DefaultEscape,
		SpecialEscapes:     DefaultSpecialEscapes(),
		UnknownReplacement: DefaultUnknownReplacement,
	}
}

// Clone returns a deep copy of the syntax.
func (s Syntax) Clone() Syntax {
	s.SpecialEscapes = maps.Clone(s.SpecialEscapes)
	return s
}

// Validate checks that all four syntax runes are set, valid and distinct.
func (s Syntax) Validate() error {
	fields := [...]struct {
		name string
		r    rune
	}{
		{FieldPrefix, s.Prefix},
		{FieldSuffix, s.Suffix},
		{FieldDelimiter, s.Delimiter},
		{FieldEscape, s.Escape},
	}

	for i, f := range fields {
		if f.r == 0 {
			return NewInvalidSyntaxError(ErrMsgZeroRune, f.name, f.r)
		}
		if !utf8.ValidRune(f.r) {
			return NewInvalidSyntaxError(ErrMsgInvalidRune, f.name, f.r)
		}
		for _, other := range fields[:i] {
			if other.r == f.r {
				return NewInvalidSyntaxError(ErrMsgDuplicateRune, f.name+","+other.name, f.r)
			}
		}
	}

	for from, to := range s.SpecialEscapes {
		if !utf8.ValidRune(from) || !utf8.ValidRune(to) {
			return NewInvalidSyntaxError(ErrMsgInvalidRune, FieldSpecial, from)
		}
	}
	return nil
}

// IsPlain reports whether source contains neither the prefix nor the escape rune.
// Plain sources format to themselves.
func (s Syntax) IsPlain(source string) bool {
	return !internal.NeedsScan(source, s.scanner())
}

// Quote escapes every prefix, suffix, delimiter and escape rune in text so that
// it formats to itself.
func (s Syntax) Quote(text string) string {
	if !strings.ContainsFunc(text, s.isMeta) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text) + 8)
	for _, r := range text {
		if s.isMeta(r) {
			sb.WriteRune(s.Escape)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s Syntax) isMeta(r rune) bool {
	return r == s.Prefix || r == s.Suffix || r == s.Delimiter || r == s.Escape
}

func (s Syntax) scanner() internal.Syntax {
	return internal.Syntax{
		Prefix:    s.Prefix,
		Suffix:    s.Suffix,
		Delimiter: s.Delimiter,
		Escape:    s.Escape,
		Specials:  s.SpecialEscapes,
	}
}
