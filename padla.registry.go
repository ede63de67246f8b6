package padla

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Registry maps placeholder names to formatters.
// It is safe for concurrent use; lookups always see a complete entry.
type Registry[T any] struct {
	formatters map[string]Formatter[T]
	escape     rune
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewRegistry creates an empty registry. Names containing escape are rejected by Add.
func NewRegistry[T any](escape rune, logger *zap.Logger) *Registry[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated, zap.String(LogFieldEscape, string(escape)))
	return &Registry[T]{
		formatters: make(map[string]Formatter[T]),
		escape:     escape,
		logger:     logger,
	}
}

// Add registers formatter under name, replacing any previous formatter.
// The registry is left unchanged when an error is returned.
func (r *Registry[T]) Add(name string, formatter Formatter[T]) error {
	if name == "" {
		return NewEmptyFormatterNameError()
	}
	if strings.ContainsRune(name, r.escape) {
		return NewFormatterNameEscapeError(name, r.escape)
	}
	if isNilFormatter(formatter) {
		return NewNilFormatterError(name)
	}

	r.mu.Lock()
	_, replaced := r.formatters[name]
	r.formatters[name] = formatter
	r.mu.Unlock()

	if replaced {
		r.logger.Debug(LogMsgFormatterReplaced, zap.String(LogFieldName, name))
	} else {
		r.logger.Debug(LogMsgFormatterAdded, zap.String(LogFieldName, name))
	}
	return nil
}

// AddFunc registers fn under name.
func (r *Registry[T]) AddFunc(name string, fn func(value string, target T) (string, error)) error {
	if fn == nil {
		return NewNilFormatterError(name)
	}
	return r.Add(name, FormatterFunc[T](fn))
}

// MustAdd registers formatter and panics on error.
func (r *Registry[T]) MustAdd(name string, formatter Formatter[T]) {
	if err := r.Add(name, formatter); err != nil {
		panic(err)
	}
}

// Get returns the formatter registered under name.
func (r *Registry[T]) Get(name string) (Formatter[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formatter, exists := r.formatters[name]
	return formatter, exists
}

// Remove unregisters name and returns the formatter it held.
func (r *Registry[T]) Remove(name string) (Formatter[T], bool) {
	r.mu.Lock()
	formatter, exists := r.formatters[name]
	delete(r.formatters, name)
	r.mu.Unlock()

	if exists {
		r.logger.Debug(LogMsgFormatterRemoved, zap.String(LogFieldName, name))
	}
	return formatter, exists
}

// Has checks if a formatter is registered for name.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.formatters[name]
	return exists
}

// Names returns all registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Count returns the number of registered formatters.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.formatters)
}

// Escape returns the escape rune names are checked against.
func (r *Registry[T]) Escape() rune {
	return r.escape
}
