package padla

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	syntax  Syntax
	backend string
	unknown *string
	logger  *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		syntax:  DefaultSyntax(),
		backend: DefaultBackend,
		logger:  nil,
	}
}

// WithSyntax sets the template syntax. The engine keeps a copy.
// Default: DefaultSyntax()
func WithSyntax(syntax Syntax) Option {
	return func(c *engineConfig) {
		c.syntax = syntax.Clone()
	}
}

// WithDelimiters sets the prefix, suffix and delimiter runes.
// Zero runes keep the current value.
func WithDelimiters(prefix, suffix, delimiter rune) Option {
	return func(c *engineConfig) {
		if prefix != 0 {
			c.syntax.Prefix = prefix
		}
		if suffix != 0 {
			c.syntax.Suffix = suffix
		}
		if delimiter != 0 {
			c.syntax.Delimiter = delimiter
		}
	}
}

// WithEscape sets the escape rune.
// Default: '\'
func WithEscape(escape rune) Option {
	return func(c *engineConfig) {
		if escape != 0 {
			c.syntax.Escape = escape
		}
	}
}

// WithBackend selects the text model backend by name.
// Default: "closure"
func WithBackend(name string) Option {
	return func(c *engineConfig) {
		c.backend = name
	}
}

// WithUnknownReplacement sets the text produced for placeholders without a formatter.
// It is applied after WithSyntax regardless of option order.
// Default: "<?>"
func WithUnknownReplacement(text string) Option {
	return func(c *engineConfig) {
		c.unknown = &text
	}
}

// WithLogger sets the logger for the engine and its registry.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
