package padla

import (
	"errors"
	"sort"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine[person] {
	t.Helper()
	engine, err := New[person](opts...)
	require.NoError(t, err)
	require.NoError(t, engine.RegisterFunc("test", func(value string, p person) (string, error) {
		if value == "name" {
			return p.Name, nil
		}
		return "", nil
	}))
	engine.MustRegister("echo", ValueFormatter[person]())
	return engine
}

func TestNew_Defaults(t *testing.T) {
	engine, err := New[person]()
	require.NoError(t, err)

	assert.Equal(t, DefaultBackend, engine.Factory().Name())
	assert.Equal(t, DefaultSyntax(), engine.Syntax())
	assert.Equal(t, 0, engine.Registry().Count())
}

func TestNew_Options(t *testing.T) {
	custom := DefaultSyntax()
	custom.Prefix, custom.Suffix = '[', ']'

	engine, err := New[person](
		WithUnknownReplacement("?"),
		WithSyntax(custom),
		WithDelimiters(0, 0, '='),
		WithEscape('~'),
		WithBackend(BackendJoin),
	)
	require.NoError(t, err)

	s := engine.Syntax()
	assert.Equal(t, '[', s.Prefix)
	assert.Equal(t, ']', s.Suffix)
	assert.Equal(t, '=', s.Delimiter)
	assert.Equal(t, '~', s.Escape)
	assert.Equal(t, "?", s.UnknownReplacement)
	assert.Equal(t, BackendJoin, engine.Factory().Name())
	assert.Equal(t, '~', engine.Registry().Escape())

	custom.SpecialEscapes['z'] = 'y'
	_, changed := engine.Syntax().SpecialEscapes['z']
	assert.False(t, changed)
}

func TestNew_Errors(t *testing.T) {
	_, err := New[person](WithDelimiters('{', '{', 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgDuplicateRune)

	_, err = New[person](WithBackend("bytecode"))
	require.Error(t, err)
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	backend, ok := customErr.GetMetadata(MetaKeyBackend)
	assert.True(t, ok)
	assert.Equal(t, "bytecode", backend)

	assert.Panics(t, func() { MustNew[person](WithEscape(':')) })
}

func TestEngine_FormatAndParseAgree(t *testing.T) {
	for _, backend := range FactoryNames() {
		t.Run(backend, func(t *testing.T) {
			engine := newTestEngine(t, WithBackend(backend))

			for _, source := range conformanceSources {
				formatted, err := engine.Format(source, testPerson)
				require.NoError(t, err)

				model, err := engine.Parse(source)
				require.NoError(t, err)
				text, err := model.Text(testPerson)
				require.NoError(t, err)

				assert.Equal(t, formatted, text, source)
			}
		})
	}
}

func TestEngine_ParseWith(t *testing.T) {
	engine := newTestEngine(t)

	for _, factory := range Factories[person]() {
		model, err := engine.ParseWith("Dear {test:name}", factory)
		require.NoError(t, err)
		assertText(t, model, "Dear World")
	}

	_, err := engine.ParseWith("x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNilArgument)
}

func TestEngine_ParseInto(t *testing.T) {
	engine := newTestEngine(t)
	builder := engine.Factory().NewBuilder()

	require.NoError(t, engine.ParseInto("Hi ", builder))
	require.NoError(t, engine.ParseInto("{test:name}", builder))
	builder.AppendLiteral("!")

	assertText(t, builder.BuildAndRelease(), "Hi World!")
}

func TestEngine_RegisterUnregister(t *testing.T) {
	engine := newTestEngine(t)
	model := engine.MustParse("{late:x}")

	assertText(t, model, DefaultUnknownReplacement)
	require.NoError(t, engine.Register("late", StaticFormatter[person]("now")))
	assertText(t, model, "now")

	assert.True(t, engine.Unregister("late"))
	assert.False(t, engine.Unregister("late"))
	assertText(t, model, DefaultUnknownReplacement)

	assert.Error(t, engine.Register(`bad\name`, ValueFormatter[person]()))
}

func TestEngine_NamedTemplates(t *testing.T) {
	engine := newTestEngine(t)

	require.NoError(t, engine.RegisterTemplate("greet", "Hello {test:name}"))
	engine.MustRegisterTemplate("bye", "Bye {test:name}")

	assert.True(t, engine.HasTemplate("greet"))
	assert.Equal(t, 2, engine.TemplateCount())
	assert.Equal(t, []string{"bye", "greet"}, engine.ListTemplates())

	text, err := engine.ExecuteTemplate("greet", testPerson)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)

	assert.True(t, engine.UnregisterTemplate("greet"))
	assert.False(t, engine.UnregisterTemplate("greet"))

	_, err = engine.ExecuteTemplate("greet", testPerson)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	assert.Error(t, engine.RegisterTemplate("", "x"))
	assert.Panics(t, func() { engine.MustRegisterTemplate("", "x") })
}

func TestEngine_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine := newTestEngine(t, WithLogger(zap.New(core)))

	_, err := engine.Parse("a{echo:b}c")
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage(LogMsgEngineCreated).Len())
	compiled := logs.FilterMessage(LogMsgTemplateCompiled).All()
	require.Len(t, compiled, 1)
	assert.Equal(t, int64(3), compiled[0].ContextMap()[LogFieldSegments])
	assert.Equal(t, DefaultBackend, compiled[0].ContextMap()[LogFieldBackend])

	names := engine.Registry().Names()
	assert.True(t, sort.StringsAreSorted(names))
}
