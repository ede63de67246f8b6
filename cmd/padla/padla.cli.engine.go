package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	padla "github.com/JarvisCraft/padla-sub001"
)

// data is the render target: the decoded JSON object.
type data = map[string]any

// engineConfig holds the flags shared by commands that build an engine
type engineConfig struct {
	syntaxPath string
	backend    string
	verbose    bool
}

// newEngine builds an engine from the syntax file, PADLA_* overrides and the
// built-in formatters.
func newEngine(ctx context.Context, cfg engineConfig, stderr io.Writer) (*padla.Engine[data], error) {
	syntax, err := loadSyntax(ctx, cfg.syntaxPath)
	if err != nil {
		return nil, err
	}

	opts := []padla.Option{padla.WithSyntax(syntax)}
	if cfg.backend != "" {
		opts = append(opts, padla.WithBackend(cfg.backend))
	}
	if cfg.verbose {
		opts = append(opts, padla.WithLogger(newLogger(stderr)))
	}

	engine, err := padla.New[data](opts...)
	if err != nil {
		return nil, err
	}
	registerFormatters(engine)
	return engine, nil
}

func loadSyntax(ctx context.Context, path string) (padla.Syntax, error) {
	syntax := padla.DefaultSyntax()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return padla.Syntax{}, err
		}
		if syntax, err = padla.LoadSyntaxYAML(bytes.NewReader(content)); err != nil {
			return padla.Syntax{}, err
		}
	}
	return padla.LoadSyntaxEnv(ctx, syntax, nil)
}

func newLogger(stderr io.Writer) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(stderr), zapcore.DebugLevel)
	return zap.New(core)
}

func registerFormatters(engine *padla.Engine[data]) {
	engine.MustRegister(FormatterVar, padla.FormatterFunc[data](formatVar))
	engine.MustRegister(FormatterUpper, padla.FormatterFunc[data](func(value string, target data) (string, error) {
		text, err := formatVar(value, target)
		return strings.ToUpper(text), err
	}))
	engine.MustRegister(FormatterLower, padla.FormatterFunc[data](func(value string, target data) (string, error) {
		text, err := formatVar(value, target)
		return strings.ToLower(text), err
	}))
	engine.MustRegister(FormatterEnv, padla.FormatterFunc[data](formatEnv))
}

// formatVar resolves "path" or "path|default" against the data.
func formatVar(value string, target data) (string, error) {
	path, def, hasDefault := strings.Cut(value, DefaultValueSeparator)
	v, ok := lookupPath(target, path)
	if !ok {
		if hasDefault {
			return def, nil
		}
		return "", fmt.Errorf(FmtNamedError, ErrMsgVariableNotFound, path)
	}
	return stringify(v)
}

// formatEnv resolves "NAME" or "NAME|default" against the process environment.
func formatEnv(value string, _ data) (string, error) {
	name, def, hasDefault := strings.Cut(value, DefaultValueSeparator)
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	if hasDefault {
		return def, nil
	}
	return "", fmt.Errorf(FmtNamedError, ErrMsgEnvNotFound, name)
}

func lookupPath(target data, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = target
	for _, key := range strings.Split(path, PathSeparator) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[key]; !ok {
			return nil, false
		}
	}
	return current, true
}

func stringify(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		encoded, err := json.Marshal(x)
		if err != nil {
			return "", errors.Join(errors.New(ErrMsgInvalidJSON), err)
		}
		return string(encoded), nil
	}
}
