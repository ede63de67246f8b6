package padla

// backendNames lists the built-in backends in a stable order.
var backendNames = []string{BackendClosure, BackendJoin, BackendSegment}

// Factory returns the built-in backend registered under name.
func Factory[T any](name string) (TextModelFactory[T], error) {
	switch name {
	case BackendSegment:
		return SegmentFactory[T](), nil
	case BackendClosure:
		return ClosureFactory[T](), nil
	case BackendJoin:
		return JoinFactory[T](), nil
	default:
		return nil, NewUnknownBackendError(name)
	}
}

// MustFactory is like Factory but panics on an unknown name.
func MustFactory[T any](name string) TextModelFactory[T] {
	f, err := Factory[T](name)
	if err != nil {
		panic(err)
	}
	return f
}

// Factories returns every built-in backend.
func Factories[T any]() []TextModelFactory[T] {
	factories := make([]TextModelFactory[T], 0, len(backendNames))
	for _, name := range backendNames {
		factories = append(factories, MustFactory[T](name))
	}
	return factories
}

// FactoryNames returns the names of the built-in backends in sorted order.
func FactoryNames() []string {
	names := make([]string, len(backendNames))
	copy(names, backendNames)
	return names
}
