package padla

import (
	"github.com/JarvisCraft/padla-sub001/internal"
)

// Position represents a location in template source.
type Position = internal.Position

// PlaceholderInfo describes one recognised placeholder.
type PlaceholderInfo struct {
	Key      string   `json:"key"`
	Value    string   `json:"value,omitempty"`
	Position Position `json:"position"`
}

// Diagnostic describes text that looked like syntax but was kept literally.
type Diagnostic struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Position Position `json:"position"`
}

// Report is the result of Inspect.
type Report struct {
	Placeholders []PlaceholderInfo `json:"placeholders"`
	Diagnostics  []Diagnostic      `json:"diagnostics"`
	// Plain is true when the source has neither prefix nor escape runes.
	Plain bool `json:"plain"`
}

// Keys returns the distinct placeholder keys in order of first appearance.
func (r *Report) Keys() []string {
	seen := make(map[string]struct{}, len(r.Placeholders))
	keys := make([]string, 0, len(r.Placeholders))
	for _, p := range r.Placeholders {
		if _, ok := seen[p.Key]; ok {
			continue
		}
		seen[p.Key] = struct{}{}
		keys = append(keys, p.Key)
	}
	return keys
}

// HasDiagnostics returns true if any text was kept literally.
func (r *Report) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// Diagnostic messages keyed by skip kind
const (
	DiagMsgEmptyBody      = "empty placeholder body is kept as literal text"
	DiagMsgDelimiterFirst = "placeholder body starting with the delimiter is kept as literal text"
	DiagMsgUnterminated   = "unterminated placeholder is kept as literal text"
	DiagMsgTrailingEscape = "trailing escape character is kept as literal text"
)

// Inspect scans source and reports its placeholders and the malformed
// constructs passed through as literal text. It never fails.
func Inspect(source string, syntax Syntax) *Report {
	h := inspectHandler{source: source}
	untouched, _ := internal.Scan(source, syntax.scanner(), &h)
	h.report.Plain = untouched
	if h.report.Placeholders == nil {
		h.report.Placeholders = []PlaceholderInfo{}
	}
	if h.report.Diagnostics == nil {
		h.report.Diagnostics = []Diagnostic{}
	}
	return &h.report
}

type inspectHandler struct {
	source string
	at     int
	last   Position
	report Report
}

func (h *inspectHandler) Literal(string) {}

func (h *inspectHandler) PlaceholderAt(offset int) {
	h.at = offset
}

func (h *inspectHandler) Placeholder(key, value string) error {
	h.report.Placeholders = append(h.report.Placeholders, PlaceholderInfo{
		Key:      key,
		Value:    value,
		Position: h.position(h.at),
	})
	return nil
}

func (h *inspectHandler) Skipped(kind internal.SkipKind, offset int) {
	h.report.Diagnostics = append(h.report.Diagnostics, Diagnostic{
		Kind:     kind.String(),
		Message:  diagnosticMessage(kind),
		Position: h.position(offset),
	})
}

// position continues counting from the previous position; offsets mostly arrive in order.
func (h *inspectHandler) position(offset int) Position {
	h.last = internal.Advance(h.source, h.last, offset)
	return h.last
}

func diagnosticMessage(kind internal.SkipKind) string {
	switch kind {
	case internal.SkipEmptyBody:
		return DiagMsgEmptyBody
	case internal.SkipDelimiterFirst:
		return DiagMsgDelimiterFirst
	case internal.SkipUnterminated:
		return DiagMsgUnterminated
	default:
		return DiagMsgTrailingEscape
	}
}
