package padla

import "strings"

type closureFactory[T any] struct{}

// ClosureFactory returns the compiling backend: each model is turned into a
// single function specialised for its segment shape.
func ClosureFactory[T any]() TextModelFactory[T] {
	return closureFactory[T]{}
}

func (closureFactory[T]) Name() string { return BackendClosure }

func (closureFactory[T]) NewBuilder() Builder[T] {
	return newSegmentBuilder[T](compileClosure[T])
}

func (closureFactory[T]) Empty() TextModel[T] { return Constant[T]("") }

type textFunc[T any] func(target T) (string, error)

// appendFunc writes one segment of a general-shape model.
type appendFunc[T any] func(sb *strings.Builder, target T) error

type closureModel[T any] struct {
	text textFunc[T]
	bounds
}

func compileClosure[T any](segments []segment[T]) TextModel[T] {
	if m, ok := compileStatic(segments); ok {
		return m
	}
	_, b := measure(segments)
	return &closureModel[T]{text: compileShape(segments, b), bounds: b}
}

func (m *closureModel[T]) Text(target T) (string, error) { return m.text(target) }

func (m *closureModel[T]) IsDynamic() bool { return true }

// compileShape picks a specialised function for the common shapes
// dyn, lit+dyn, dyn+lit and lit+dyn+lit; anything else runs a chain of appenders.
func compileShape[T any](segments []segment[T], b bounds) textFunc[T] {
	switch len(segments) {
	case 1:
		return segments[0].dynamic.Text
	case 2:
		if segments[0].isLiteral() {
			return wrapDynamic(segments[0].literal, segments[1].dynamic, "")
		}
		if segments[1].isLiteral() {
			return wrapDynamic("", segments[0].dynamic, segments[1].literal)
		}
	case 3:
		if segments[0].isLiteral() && !segments[1].isLiteral() && segments[2].isLiteral() {
			return wrapDynamic(segments[0].literal, segments[1].dynamic, segments[2].literal)
		}
	}
	return chain(segments, b)
}

func wrapDynamic[T any](prefix string, model TextModel[T], suffix string) textFunc[T] {
	return func(target T) (string, error) {
		text, err := model.Text(target)
		if err != nil {
			return "", err
		}
		return prefix + text + suffix, nil
	}
}

func chain[T any](segments []segment[T], b bounds) textFunc[T] {
	static, _ := measure(segments)
	size := b.sizeHint(static)

	appenders := make([]appendFunc[T], len(segments))
	for i, s := range segments {
		if s.isLiteral() {
			appenders[i] = appendLiteral[T](s.literal)
		} else {
			appenders[i] = appendDynamic(s.dynamic)
		}
	}

	return func(target T) (string, error) {
		var sb strings.Builder
		sb.Grow(size)
		for _, appendTo := range appenders {
			if err := appendTo(&sb, target); err != nil {
				return "", err
			}
		}
		return sb.String(), nil
	}
}

func appendLiteral[T any](text string) appendFunc[T] {
	return func(sb *strings.Builder, _ T) error {
		sb.WriteString(text)
		return nil
	}
}

func appendDynamic[T any](model TextModel[T]) appendFunc[T] {
	return func(sb *strings.Builder, target T) error {
		text, err := model.Text(target)
		if err != nil {
			return err
		}
		sb.WriteString(text)
		return nil
	}
}
