package padla

import "strings"

type segmentFactory[T any] struct{}

// SegmentFactory returns the interpreted backend: models walk their segment
// list on every Text call.
func SegmentFactory[T any]() TextModelFactory[T] {
	return segmentFactory[T]{}
}

func (segmentFactory[T]) Name() string { return BackendSegment }

func (segmentFactory[T]) NewBuilder() Builder[T] {
	return newSegmentBuilder[T](compileSegments[T])
}

func (segmentFactory[T]) Empty() TextModel[T] { return Constant[T]("") }

// segmentModel evaluates its segments in order into a presized builder.
type segmentModel[T any] struct {
	segments []segment[T]
	static   int
	bounds
}

func compileSegments[T any](segments []segment[T]) TextModel[T] {
	if m, ok := compileStatic(segments); ok {
		return m
	}
	static, b := measure(segments)
	return &segmentModel[T]{segments: segments, static: static, bounds: b}
}

func (m *segmentModel[T]) Text(target T) (string, error) {
	var sb strings.Builder
	sb.Grow(m.sizeHint(m.static))
	for _, s := range m.segments {
		if s.isLiteral() {
			sb.WriteString(s.literal)
			continue
		}
		text, err := s.dynamic.Text(target)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func (m *segmentModel[T]) IsDynamic() bool { return true }

// compileStatic handles models without dynamic segments. Builders coalesce
// literals, so such models have at most one segment.
func compileStatic[T any](segments []segment[T]) (TextModel[T], bool) {
	switch {
	case len(segments) == 0:
		return Constant[T](""), true
	case len(segments) == 1 && segments[0].isLiteral():
		return Constant[T](segments[0].literal), true
	default:
		return nil, false
	}
}
