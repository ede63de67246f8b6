package padla

import "slices"

// compileFunc turns coalesced segments into a model. It owns the slice it receives.
type compileFunc[T any] func(segments []segment[T]) TextModel[T]

// segmentBuilder is the Builder shared by all backends; only compile differs.
type segmentBuilder[T any] struct {
	segments []segment[T]
	compile  compileFunc[T]

	// pending is the literal not yet appended to segments.
	pending    string
	hasPending bool
	// buf holds pending once a second literal has been coalesced into it.
	buf      []byte
	buffered bool

	released bool
}

func newSegmentBuilder[T any](compile compileFunc[T]) *segmentBuilder[T] {
	return &segmentBuilder[T]{compile: compile}
}

func (b *segmentBuilder[T]) AppendLiteral(text string) {
	b.checkReleased()
	if text == "" {
		return
	}

	switch {
	case !b.hasPending:
		b.pending, b.hasPending = text, true
	case !b.buffered:
		b.buf = append(append(b.buf[:0], b.pending...), text...)
		b.buffered = true
	default:
		b.buf = append(b.buf, text...)
	}
}

func (b *segmentBuilder[T]) AppendDynamic(model TextModel[T]) {
	b.checkReleased()
	if model == nil {
		panic(PanicMsgNilModel)
	}

	if !model.IsDynamic() {
		var zero T
		if text, err := model.Text(zero); err == nil {
			b.AppendLiteral(text)
			return
		}
	}

	b.flushLiteral()
	b.segments = append(b.segments, segment[T]{dynamic: model})
}

func (b *segmentBuilder[T]) Clear() {
	b.checkReleased()
	clear(b.segments)
	b.segments = b.segments[:0]
	b.pending, b.hasPending = "", false
	b.buf, b.buffered = b.buf[:0], false
}

func (b *segmentBuilder[T]) Len() int {
	b.checkReleased()
	if b.hasPending {
		return len(b.segments) + 1
	}
	return len(b.segments)
}

func (b *segmentBuilder[T]) Build() TextModel[T] {
	b.checkReleased()
	segments := make([]segment[T], len(b.segments), b.Len())
	copy(segments, b.segments)
	if b.hasPending {
		segments = append(segments, segment[T]{literal: b.pendingText()})
	}
	return b.compile(segments)
}

func (b *segmentBuilder[T]) BuildAndRelease() TextModel[T] {
	b.checkReleased()
	b.flushLiteral()
	segments := slices.Clip(b.segments)

	b.segments = nil
	b.buf = nil
	b.released = true
	return b.compile(segments)
}

func (b *segmentBuilder[T]) pendingText() string {
	if b.buffered {
		return string(b.buf)
	}
	return b.pending
}

func (b *segmentBuilder[T]) flushLiteral() {
	if !b.hasPending {
		return
	}
	b.segments = append(b.segments, segment[T]{literal: b.pendingText()})
	b.pending, b.hasPending = "", false
	b.buf, b.buffered = b.buf[:0], false
}

func (b *segmentBuilder[T]) checkReleased() {
	if b.released {
		panic(PanicMsgBuilderReleased)
	}
}
