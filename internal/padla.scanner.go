package internal

import (
	"strings"
	"unicode/utf8"
)

// Syntax is the scanner's view of the template syntax.
// Runes must be distinct and valid; callers validate before scanning.
type Syntax struct {
	Prefix    rune
	Suffix    rune
	Delimiter rune
	Escape    rune
	// Specials maps the rune following an escape in plain text to its replacement.
	Specials map[rune]rune
}

// Handler receives the segments recognised by Scan in source order.
// Adjacent Literal calls never happen: text between placeholders is reported once.
type Handler interface {
	Literal(text string)
	Placeholder(key, value string) error
}

// SkipHandler is an optional extension of Handler notified about text that
// looked like a placeholder or escape but was passed through as literal text.
type SkipHandler interface {
	Skipped(kind SkipKind, offset int)
}

// LocatingHandler is an optional extension of Handler told the offset of the
// prefix of each placeholder right before its Placeholder call.
type LocatingHandler interface {
	PlaceholderAt(offset int)
}

// SkipKind classifies text passed through literally.
type SkipKind int

// Skip kinds
const (
	SkipEmptyBody SkipKind = iota + 1
	SkipDelimiterFirst
	SkipUnterminated
	SkipTrailingEscape
)

// Skip kind names
const (
	SkipNameEmptyBody      = "EMPTY_BODY"
	SkipNameDelimiterFirst = "DELIMITER_FIRST"
	SkipNameUnterminated   = "UNTERMINATED"
	SkipNameTrailingEscape = "TRAILING_ESCAPE"
	SkipNameUnknown        = "UNKNOWN"
)

// String returns the name of the skip kind.
func (k SkipKind) String() string {
	switch k {
	case SkipEmptyBody:
		return SkipNameEmptyBody
	case SkipDelimiterFirst:
		return SkipNameDelimiterFirst
	case SkipUnterminated:
		return SkipNameUnterminated
	case SkipTrailingEscape:
		return SkipNameTrailingEscape
	default:
		return SkipNameUnknown
	}
}

// ScanState is one of the four scanner states.
type ScanState uint8

// Scanner states
const (
	StateNormal ScanState = iota
	StateInPlaceholder
	StateEscapingNormal
	StateEscapingInPlaceholder
)

// Scanner state names
const (
	StateNameNormal                = "NORMAL"
	StateNameInPlaceholder         = "IN_PLACEHOLDER"
	StateNameEscapingNormal        = "ESCAPING_NORMAL"
	StateNameEscapingInPlaceholder = "ESCAPING_IN_PLACEHOLDER"
)

// String returns the state name.
func (s ScanState) String() string {
	switch s {
	case StateInPlaceholder:
		return StateNameInPlaceholder
	case StateEscapingNormal:
		return StateNameEscapingNormal
	case StateEscapingInPlaceholder:
		return StateNameEscapingInPlaceholder
	default:
		return StateNameNormal
	}
}

// NeedsScan reports whether source contains a prefix or escape rune.
// Sources for which it returns false are plain text.
func NeedsScan(source string, syntax Syntax) bool {
	return strings.ContainsRune(source, syntax.Prefix) || strings.ContainsRune(source, syntax.Escape)
}

// Scan runs the placeholder state machine over source in a single pass.
//
// It returns untouched=true when source contains neither the prefix nor the
// escape rune; the handler then receives source itself as the only literal
// (nothing at all for an empty source). The first error returned by
// Handler.Placeholder stops the scan and is returned unchanged.
func Scan(source string, syntax Syntax, handler Handler) (untouched bool, err error) {
	if !NeedsScan(source, syntax) {
		if source != "" {
			handler.Literal(source)
		}
		return true, nil
	}

	s := scanner{
		source:  source,
		syntax:  syntax,
		handler: handler,
		delimAt: -1,
	}
	s.skips, _ = handler.(SkipHandler)
	s.locator, _ = handler.(LocatingHandler)
	return false, s.run()
}

type scanner struct {
	source  string
	syntax  Syntax
	handler Handler
	skips   SkipHandler
	locator LocatingHandler

	state ScanState
	// runStart is where the literal run not yet copied into pending begins.
	runStart int
	// pending holds literal text produced by escapes; it precedes source[runStart:].
	pending []byte
	// escapeAt is the offset of the escape that entered StateEscapingNormal.
	escapeAt int
	// openAt is the offset of the prefix that entered StateInPlaceholder.
	openAt int
	// delimAt is the offset of the first unescaped delimiter in the body, -1 if none.
	delimAt     int
	bodyEscaped bool
}

func (s *scanner) run() error {
	src := s.source
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		next := i + size

		switch s.state {
		case StateNormal:
			switch r {
			case s.syntax.Escape:
				s.pending = append(s.pending, src[s.runStart:i]...)
				s.escapeAt = i
				s.state = StateEscapingNormal
			case s.syntax.Prefix:
				s.openAt = i
				s.delimAt = -1
				s.bodyEscaped = false
				s.state = StateInPlaceholder
			}

		case StateEscapingNormal:
			if replacement, ok := s.syntax.Specials[r]; ok {
				s.pending = utf8.AppendRune(s.pending, replacement)
			} else {
				s.pending = append(s.pending, src[i:next]...)
			}
			s.runStart = next
			s.state = StateNormal

		case StateInPlaceholder:
			switch r {
			case s.syntax.Escape:
				s.bodyEscaped = true
				s.state = StateEscapingInPlaceholder
			case s.syntax.Delimiter:
				if s.delimAt < 0 {
					s.delimAt = i
				}
			case s.syntax.Suffix:
				if err := s.closePlaceholder(i, next); err != nil {
					return err
				}
			}

		case StateEscapingInPlaceholder:
			s.state = StateInPlaceholder
		}

		i = next
	}

	s.finish()
	return nil
}

// closePlaceholder resolves the body between the prefix at s.openAt and the
// suffix at offset at. Invalid bodies stay part of the current literal run.
func (s *scanner) closePlaceholder(at, next int) error {
	s.state = StateNormal
	bodyStart := s.openAt + utf8.RuneLen(s.syntax.Prefix)

	if at == bodyStart {
		s.skip(SkipEmptyBody, s.openAt)
		return nil
	}
	if s.delimAt == bodyStart {
		s.skip(SkipDelimiterFirst, s.openAt)
		return nil
	}

	var key, value string
	if s.delimAt < 0 {
		key = s.unescape(s.source[bodyStart:at])
	} else {
		key = s.unescape(s.source[bodyStart:s.delimAt])
		value = s.unescape(s.source[s.delimAt+utf8.RuneLen(s.syntax.Delimiter) : at])
	}

	s.flush(s.openAt)
	s.runStart = next
	if s.locator != nil {
		s.locator.PlaceholderAt(s.openAt)
	}
	return s.handler.Placeholder(key, value)
}

// unescape drops body escapes, keeping the escaped rune verbatim.
func (s *scanner) unescape(raw string) string {
	if !s.bodyEscaped || !strings.ContainsRune(raw, s.syntax.Escape) {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	escaping := false
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if !escaping && r == s.syntax.Escape {
			escaping = true
		} else {
			escaping = false
			sb.WriteString(raw[i : i+size])
		}
		i += size
	}
	return sb.String()
}

// flush reports pending plus source[runStart:end] as one literal.
func (s *scanner) flush(end int) {
	if len(s.pending) == 0 {
		if end > s.runStart {
			s.handler.Literal(s.source[s.runStart:end])
		}
		return
	}

	s.pending = append(s.pending, s.source[s.runStart:end]...)
	s.handler.Literal(string(s.pending))
	s.pending = s.pending[:0]
}

func (s *scanner) finish() {
	switch s.state {
	case StateEscapingNormal:
		s.skip(SkipTrailingEscape, s.escapeAt)
		s.runStart = s.escapeAt
	case StateInPlaceholder, StateEscapingInPlaceholder:
		s.skip(SkipUnterminated, s.openAt)
	}
	s.flush(len(s.source))
	s.state = StateNormal
}

func (s *scanner) skip(kind SkipKind, offset int) {
	if s.skips != nil {
		s.skips.Skipped(kind, offset)
	}
}
