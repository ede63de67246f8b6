package padla

// TextModel is a compiled template.
//
// A TextModel is immutable once built and safe for concurrent Text calls.
// A model whose IsDynamic reports false must produce the same text for every target.
type TextModel[T any] interface {
	// Text evaluates the model against target.
	Text(target T) (string, error)
	// IsDynamic reports whether the output depends on the target or on registry state.
	IsDynamic() bool
	// MinLength returns a lower bound of the output length in bytes, if known.
	MinLength() (int, bool)
	// MaxLength returns an upper bound of the output length in bytes, if known.
	MaxLength() (int, bool)
}

// Builder accumulates literal and dynamic segments of a TextModel.
//
// A Builder is single-writer and not safe for concurrent use. Adjacent
// literals are coalesced into one segment. After BuildAndRelease every method
// panics.
type Builder[T any] interface {
	// AppendLiteral appends literal text. Empty text is ignored.
	AppendLiteral(text string)
	// AppendDynamic appends a model evaluated at Text time.
	// Models that are not dynamic are inlined as literals.
	AppendDynamic(model TextModel[T])
	// Clear resets the builder, retaining allocated capacity.
	Clear()
	// Len returns the number of segments accumulated so far.
	Len() int
	// Build returns a model of the current segments; the builder stays usable.
	Build() TextModel[T]
	// BuildAndRelease returns a model that adopts the builder's storage.
	BuildAndRelease() TextModel[T]
}

// TextModelFactory creates builders for one text model backend.
// All backends produce identical output for identical input.
type TextModelFactory[T any] interface {
	// Name returns the backend name.
	Name() string
	// NewBuilder returns an empty builder.
	NewBuilder() Builder[T]
	// Empty returns the model producing "".
	Empty() TextModel[T]
}

// bounds holds static length bounds of a model.
type bounds struct {
	min, max           int
	minKnown, maxKnown bool
}

func exactBounds(n int) bounds {
	return bounds{min: n, max: n, minKnown: true, maxKnown: true}
}

func (b bounds) MinLength() (int, bool) {
	if !b.minKnown {
		return 0, false
	}
	return b.min, true
}

func (b bounds) MaxLength() (int, bool) {
	if !b.maxKnown {
		return 0, false
	}
	return b.max, true
}

// sizeHint is the best buffer size to preallocate before evaluation.
func (b bounds) sizeHint(static int) int {
	if b.minKnown && b.min > static {
		return b.min
	}
	return static
}

// constantModel is a model of fixed text.
type constantModel[T any] struct {
	text string
}

// Constant returns a non-dynamic model producing text.
func Constant[T any](text string) TextModel[T] {
	return constantModel[T]{text: text}
}

func (m constantModel[T]) Text(T) (string, error) { return m.text, nil }

func (m constantModel[T]) IsDynamic() bool { return false }

func (m constantModel[T]) MinLength() (int, bool) { return len(m.text), true }

func (m constantModel[T]) MaxLength() (int, bool) { return len(m.text), true }

// String returns the constant text.
func (m constantModel[T]) String() string { return m.text }

// funcModel is a dynamic model backed by a function.
type funcModel[T any] struct {
	fn func(target T) (string, error)
}

// DynamicFunc returns a dynamic model of unknown length evaluated by fn.
func DynamicFunc[T any](fn func(target T) (string, error)) TextModel[T] {
	return funcModel[T]{fn: fn}
}

func (m funcModel[T]) Text(target T) (string, error) { return m.fn(target) }

func (m funcModel[T]) IsDynamic() bool { return true }

func (m funcModel[T]) MinLength() (int, bool) { return 0, false }

func (m funcModel[T]) MaxLength() (int, bool) { return 0, false }

// boundedModel attaches static length bounds to a dynamic model.
type boundedModel[T any] struct {
	TextModel[T]
	bounds
}

// Bounded returns model with the given output length bounds.
// A negative min or max marks that bound as unknown.
func Bounded[T any](model TextModel[T], minLen, maxLen int) TextModel[T] {
	b := bounds{
		min:      minLen,
		max:      maxLen,
		minKnown: minLen >= 0,
		maxKnown: maxLen >= 0 && maxLen >= minLen,
	}
	return boundedModel[T]{TextModel: model, bounds: b}
}

func (m boundedModel[T]) MinLength() (int, bool) { return m.bounds.MinLength() }

func (m boundedModel[T]) MaxLength() (int, bool) { return m.bounds.MaxLength() }

// segment is one literal or dynamic unit of a model.
type segment[T any] struct {
	literal string
	dynamic TextModel[T]
}

func (s segment[T]) isLiteral() bool { return s.dynamic == nil }

// measure returns the total literal length and the bounds of segments.
func measure[T any](segments []segment[T]) (static int, b bounds) {
	b.minKnown, b.maxKnown = true, true
	for _, s := range segments {
		if s.isLiteral() {
			static += len(s.literal)
			continue
		}
		if n, ok := s.dynamic.MinLength(); ok && b.minKnown {
			b.min += n
		} else {
			b.minKnown = false
		}
		if n, ok := s.dynamic.MaxLength(); ok && b.maxKnown {
			b.max += n
		} else {
			b.maxKnown = false
		}
	}
	b.min += static
	b.max += static
	return static, b
}
