package padla

// Formatter produces the replacement text of a placeholder.
//
// value is the text after the delimiter ("" when the placeholder has none),
// target is the per-call object passed to Format or TextModel.Text.
// Errors are returned to the caller unchanged.
type Formatter[T any] interface {
	Format(value string, target T) (string, error)
}

// FormatterFunc adapts an ordinary function to the Formatter interface.
type FormatterFunc[T any] func(value string, target T) (string, error)

// Format calls f(value, target).
func (f FormatterFunc[T]) Format(value string, target T) (string, error) {
	return f(value, target)
}

// StaticFormatter returns a Formatter that always produces text.
func StaticFormatter[T any](text string) Formatter[T] {
	return FormatterFunc[T](func(string, T) (string, error) {
		return text, nil
	})
}

// ValueFormatter returns a Formatter that echoes the placeholder value.
func ValueFormatter[T any]() Formatter[T] {
	return FormatterFunc[T](func(value string, _ T) (string, error) {
		return value, nil
	})
}

func isNilFormatter[T any](f Formatter[T]) bool {
	if f == nil {
		return true
	}
	fn, ok := f.(FormatterFunc[T])
	return ok && fn == nil
}
