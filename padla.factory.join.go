package padla

import "strings"

// joinStackParts is the number of dynamic results kept on the stack.
const joinStackParts = 8

type joinFactory[T any] struct{}

// JoinFactory returns the two-pass backend: dynamic segments are evaluated
// first, then the output is written into one buffer of the exact final size.
func JoinFactory[T any]() TextModelFactory[T] {
	return joinFactory[T]{}
}

func (joinFactory[T]) Name() string { return BackendJoin }

func (joinFactory[T]) NewBuilder() Builder[T] {
	return newSegmentBuilder[T](compileJoin[T])
}

func (joinFactory[T]) Empty() TextModel[T] { return Constant[T]("") }

type joinModel[T any] struct {
	segments []segment[T]
	static   int
	dynamics int
	bounds
}

func compileJoin[T any](segments []segment[T]) TextModel[T] {
	if m, ok := compileStatic(segments); ok {
		return m
	}
	static, b := measure(segments)
	m := &joinModel[T]{segments: segments, static: static, bounds: b}
	for _, s := range segments {
		if !s.isLiteral() {
			m.dynamics++
		}
	}
	return m
}

func (m *joinModel[T]) Text(target T) (string, error) {
	var stack [joinStackParts]string
	parts := stack[:0]
	if m.dynamics > joinStackParts {
		parts = make([]string, 0, m.dynamics)
	}

	size := m.static
	for _, s := range m.segments {
		if s.isLiteral() {
			continue
		}
		text, err := s.dynamic.Text(target)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
		size += len(text)
	}

	var sb strings.Builder
	sb.Grow(size)
	next := 0
	for _, s := range m.segments {
		if s.isLiteral() {
			sb.WriteString(s.literal)
			continue
		}
		sb.WriteString(parts[next])
		next++
	}
	return sb.String(), nil
}

func (m *joinModel[T]) IsDynamic() bool { return true }
