package padla

import (
	"strings"

	"github.com/JarvisCraft/padla-sub001/internal"
)

// Format evaluates source against target in one pass without building a model.
//
// Placeholders are resolved through registry at the moment they are reached;
// names without a formatter produce syntax.UnknownReplacement. Malformed
// placeholders are kept as literal text. A source containing neither the
// prefix nor the escape rune is returned as is. syntax must be valid.
func Format[T any](source string, target T, syntax Syntax, registry *Registry[T]) (string, error) {
	if registry == nil {
		return "", NewNilArgumentError(ArgRegistry)
	}

	h := formatHandler[T]{
		target:   target,
		registry: registry,
		unknown:  syntax.UnknownReplacement,
		size:     len(source),
	}
	if _, err := internal.Scan(source, syntax.scanner(), &h); err != nil {
		return "", err
	}
	return h.result(), nil
}

// Parse scans source and appends its literal and placeholder segments to builder.
//
// Placeholder segments look their formatter up in registry on every Text call,
// so later registry changes are visible to already built models.
func Parse[T any](source string, syntax Syntax, registry *Registry[T], builder Builder[T]) error {
	if builder == nil {
		return NewNilArgumentError(ArgBuilder)
	}
	if registry == nil {
		return NewNilArgumentError(ArgRegistry)
	}

	h := parseHandler[T]{
		builder:  builder,
		registry: registry,
		unknown:  syntax.UnknownReplacement,
	}
	_, err := internal.Scan(source, syntax.scanner(), &h)
	return err
}

// formatHandler writes scanned segments straight to the output.
type formatHandler[T any] struct {
	target   T
	registry *Registry[T]
	unknown  string
	size     int

	// first is returned without copying when it is the only part.
	first string
	parts int
	sb    strings.Builder
}

func (h *formatHandler[T]) Literal(text string) {
	h.write(text)
}

func (h *formatHandler[T]) Placeholder(key, value string) error {
	text, err := resolve(h.registry, key, value, h.unknown, h.target)
	if err != nil {
		return err
	}
	h.write(text)
	return nil
}

func (h *formatHandler[T]) write(text string) {
	switch h.parts {
	case 0:
		h.first = text
	case 1:
		h.sb.Grow(max(h.size, len(h.first)+len(text)))
		h.sb.WriteString(h.first)
		h.sb.WriteString(text)
	default:
		h.sb.WriteString(text)
	}
	h.parts++
}

func (h *formatHandler[T]) result() string {
	if h.parts <= 1 {
		return h.first
	}
	return h.sb.String()
}

// parseHandler forwards scanned segments to a builder.
type parseHandler[T any] struct {
	builder  Builder[T]
	registry *Registry[T]
	unknown  string
}

func (h *parseHandler[T]) Literal(text string) {
	h.builder.AppendLiteral(text)
}

func (h *parseHandler[T]) Placeholder(key, value string) error {
	h.builder.AppendDynamic(&placeholderModel[T]{
		registry: h.registry,
		key:      key,
		value:    value,
		unknown:  h.unknown,
	})
	return nil
}

// placeholderModel resolves one placeholder against the live registry.
type placeholderModel[T any] struct {
	registry *Registry[T]
	key      string
	value    string
	unknown  string
}

func (m *placeholderModel[T]) Text(target T) (string, error) {
	return resolve(m.registry, m.key, m.value, m.unknown, target)
}

func (m *placeholderModel[T]) IsDynamic() bool { return true }

func (m *placeholderModel[T]) MinLength() (int, bool) { return 0, false }

func (m *placeholderModel[T]) MaxLength() (int, bool) { return 0, false }

func resolve[T any](registry *Registry[T], key, value, unknown string, target T) (string, error) {
	formatter, ok := registry.Get(key)
	if !ok {
		return unknown, nil
	}
	return formatter.Format(value, target)
}
