package padla

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine is the main entry point of padla.
// It binds a syntax, a formatter registry and a text model backend, and keeps
// named compiled templates.
type Engine[T any] struct {
	syntax    Syntax
	registry  *Registry[T]
	factory   TextModelFactory[T]
	templates map[string]TextModel[T]
	tmplMu    sync.RWMutex
	logger    *zap.Logger
}

// New creates a new Engine with the given options.
func New[T any](opts ...Option) (*Engine[T], error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}
	if config.unknown != nil {
		config.syntax.UnknownReplacement = *config.unknown
	}
	if err := config.syntax.Validate(); err != nil {
		return nil, err
	}

	factory, err := Factory[T](config.backend)
	if err != nil {
		return nil, err
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldBackend, factory.Name()),
		zap.String(LogFieldPrefix, string(config.syntax.Prefix)),
		zap.String(LogFieldSuffix, string(config.syntax.Suffix)),
		zap.String(LogFieldDelimiter, string(config.syntax.Delimiter)),
		zap.String(LogFieldEscape, string(config.syntax.Escape)),
	)

	return &Engine[T]{
		syntax:    config.syntax,
		registry:  NewRegistry[T](config.syntax.Escape, logger),
		factory:   factory,
		templates: make(map[string]TextModel[T]),
		logger:    logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew[T any](opts ...Option) *Engine[T] {
	engine, err := New[T](opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Format evaluates source against target without compiling it.
func (e *Engine[T]) Format(source string, target T) (string, error) {
	return Format(source, target, e.syntax, e.registry)
}

// Parse compiles source with the engine's backend.
// The returned model can be evaluated many times, concurrently.
func (e *Engine[T]) Parse(source string) (TextModel[T], error) {
	return e.ParseWith(source, e.factory)
}

// MustParse compiles source and panics on error.
func (e *Engine[T]) MustParse(source string) TextModel[T] {
	model, err := e.Parse(source)
	if err != nil {
		panic(err)
	}
	return model
}

// ParseWith compiles source with the given backend.
func (e *Engine[T]) ParseWith(source string, factory TextModelFactory[T]) (TextModel[T], error) {
	if factory == nil {
		return nil, NewNilArgumentError(ArgFactory)
	}

	start := time.Now()
	builder := factory.NewBuilder()
	if err := Parse(source, e.syntax, e.registry, builder); err != nil {
		return nil, err
	}
	segments := builder.Len()
	model := builder.BuildAndRelease()

	e.logger.Debug(LogMsgTemplateCompiled,
		zap.Int(LogFieldSourceLength, len(source)),
		zap.Int(LogFieldSegments, segments),
		zap.String(LogFieldBackend, factory.Name()),
		zap.Duration(LogFieldDuration, time.Since(start)),
	)
	return model, nil
}

// ParseInto appends the segments of source to builder.
func (e *Engine[T]) ParseInto(source string, builder Builder[T]) error {
	return Parse(source, e.syntax, e.registry, builder)
}

// Inspect lists the placeholders and diagnostics of source.
func (e *Engine[T]) Inspect(source string) *Report {
	return Inspect(source, e.syntax)
}

// Register adds a formatter under name, replacing any previous one.
func (e *Engine[T]) Register(name string, formatter Formatter[T]) error {
	return e.registry.Add(name, formatter)
}

// RegisterFunc adds fn as the formatter for name.
func (e *Engine[T]) RegisterFunc(name string, fn func(value string, target T) (string, error)) error {
	return e.registry.AddFunc(name, fn)
}

// MustRegister adds a formatter and panics if registration fails.
func (e *Engine[T]) MustRegister(name string, formatter Formatter[T]) {
	e.registry.MustAdd(name, formatter)
}

// Unregister removes the formatter for name.
// Returns true if a formatter existed and was removed.
func (e *Engine[T]) Unregister(name string) bool {
	_, removed := e.registry.Remove(name)
	return removed
}

// Registry returns the engine's formatter registry.
func (e *Engine[T]) Registry() *Registry[T] {
	return e.registry
}

// Syntax returns a copy of the engine's syntax.
func (e *Engine[T]) Syntax() Syntax {
	return e.syntax.Clone()
}

// Factory returns the engine's text model backend.
func (e *Engine[T]) Factory() TextModelFactory[T] {
	return e.factory
}

// RegisterTemplate compiles source and stores it under name, replacing any
// previous template of that name.
func (e *Engine[T]) RegisterTemplate(name, source string) error {
	if name == "" {
		return NewInvalidTemplateNameError(name)
	}

	model, err := e.Parse(source)
	if err != nil {
		return NewCompileError(name, err)
	}

	e.tmplMu.Lock()
	e.templates[name] = model
	e.tmplMu.Unlock()
	return nil
}

// MustRegisterTemplate registers a template and panics on error.
func (e *Engine[T]) MustRegisterTemplate(name, source string) {
	if err := e.RegisterTemplate(name, source); err != nil {
		panic(err)
	}
}

// UnregisterTemplate removes a registered template by name.
// Returns true if the template existed and was removed, false otherwise.
func (e *Engine[T]) UnregisterTemplate(name string) bool {
	e.tmplMu.Lock()
	defer e.tmplMu.Unlock()

	_, exists := e.templates[name]
	delete(e.templates, name)
	return exists
}

// GetTemplate retrieves a registered template by name.
func (e *Engine[T]) GetTemplate(name string) (TextModel[T], bool) {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	model, exists := e.templates[name]
	return model, exists
}

// HasTemplate checks if a template is registered with the given name.
func (e *Engine[T]) HasTemplate(name string) bool {
	_, exists := e.GetTemplate(name)
	return exists
}

// ListTemplates returns all registered template names in sorted order.
func (e *Engine[T]) ListTemplates() []string {
	e.tmplMu.RLock()
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	e.tmplMu.RUnlock()

	sort.Strings(names)
	return names
}

// TemplateCount returns the number of registered templates.
func (e *Engine[T]) TemplateCount() int {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	return len(e.templates)
}

// ExecuteTemplate evaluates the registered template name against target.
func (e *Engine[T]) ExecuteTemplate(name string, target T) (string, error) {
	model, ok := e.GetTemplate(name)
	if !ok {
		return "", NewTemplateNotFoundError(name)
	}
	return model.Text(target)
}
