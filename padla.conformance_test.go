package padla

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conformanceSources exercise every scanner transition and model shape.
var conformanceSources = []string{
	"",
	"plain",
	"{test:name}",
	"Hello {test:name}",
	"{test:name}!",
	"Hello {test:name}!",
	"{echo:a}{echo:b}{echo:c}",
	"a{echo:1}b{echo:2}c{echo:3}d{echo:4}e{echo:5}f{echo:6}g{echo:7}h{echo:8}i{echo:9}j",
	`\{test:name} {unknown:v} {} {:x} \n\t\r\b\f {echo:HH\:mm}`,
	"unterminated {echo:x",
	`trailing\`,
	"héllo {echo:wörld}",
}

// TestFactories_Conformance runs the shared behaviour checks against every backend.
func TestFactories_Conformance(t *testing.T) {
	for _, factory := range Factories[person]() {
		t.Run(factory.Name(), func(t *testing.T) {
			runConformance(t, factory)
		})
	}
}

func runConformance(t *testing.T, factory TextModelFactory[person]) {
	t.Run("empty", func(t *testing.T) {
		model := factory.Empty()
		text, err := model.Text(testPerson)
		require.NoError(t, err)
		assert.Equal(t, "", text)
		assert.False(t, model.IsDynamic())
		assertBounds(t, model, 0, true, 0, true)
	})

	t.Run("empty builder", func(t *testing.T) {
		model := factory.NewBuilder().Build()
		text, err := model.Text(testPerson)
		require.NoError(t, err)
		assert.Equal(t, "", text)
		assert.False(t, model.IsDynamic())
	})

	t.Run("round trip matches Format", func(t *testing.T) {
		registry := newTestRegistry(t)
		syntax := DefaultSyntax()

		for _, source := range conformanceSources {
			expected, err := Format(source, testPerson, syntax, registry)
			require.NoError(t, err)

			builder := factory.NewBuilder()
			require.NoError(t, Parse(source, syntax, registry, builder))

			built, err := builder.Build().Text(testPerson)
			require.NoError(t, err)
			assert.Equal(t, expected, built, "Build: %q", source)

			released, err := builder.BuildAndRelease().Text(testPerson)
			require.NoError(t, err)
			assert.Equal(t, expected, released, "BuildAndRelease: %q", source)
		}
	})

	t.Run("plain source keeps its storage", func(t *testing.T) {
		registry := newTestRegistry(t)
		source := strings.Repeat("no placeholders here ", 8)

		builder := factory.NewBuilder()
		require.NoError(t, Parse(source, DefaultSyntax(), registry, builder))

		built, err := builder.Build().Text(testPerson)
		require.NoError(t, err)
		assert.Equal(t, source, built)
		assert.Equal(t, unsafe.StringData(source), unsafe.StringData(built), "Build")

		released, err := builder.BuildAndRelease().Text(testPerson)
		require.NoError(t, err)
		assert.Equal(t, source, released)
		assert.Equal(t, unsafe.StringData(source), unsafe.StringData(released), "BuildAndRelease")
	})

	t.Run("literal only", func(t *testing.T) {
		builder := factory.NewBuilder()
		builder.AppendLiteral("ab")
		builder.AppendLiteral("")
		builder.AppendLiteral("cd")
		builder.AppendDynamic(Constant[person]("ef"))
		assert.Equal(t, 1, builder.Len())

		model := builder.BuildAndRelease()
		assert.False(t, model.IsDynamic())
		assertBounds(t, model, 6, true, 6, true)

		text, err := model.Text(testPerson)
		require.NoError(t, err)
		assert.Equal(t, "abcdef", text)
	})

	t.Run("bounds", func(t *testing.T) {
		name := DynamicFunc(func(p person) (string, error) { return p.Name, nil })

		builder := factory.NewBuilder()
		builder.AppendLiteral("ab")
		builder.AppendDynamic(Bounded(name, 1, 10))
		builder.AppendLiteral("c")
		model := builder.Build()
		assert.True(t, model.IsDynamic())
		assertBounds(t, model, 4, true, 13, true)

		builder.AppendDynamic(Bounded(name, 2, -1))
		assertBounds(t, builder.Build(), 6, true, 0, false)

		builder.AppendDynamic(name)
		assertBounds(t, builder.Build(), 0, false, 0, false)
	})

	t.Run("build keeps builder usable", func(t *testing.T) {
		builder := factory.NewBuilder()
		builder.AppendLiteral("a")
		first := builder.Build()

		builder.AppendLiteral("b")
		builder.AppendDynamic(DynamicFunc(func(p person) (string, error) { return p.Name, nil }))
		second := builder.Build()

		builder.Clear()
		assert.Equal(t, 0, builder.Len())
		builder.AppendLiteral("z")
		third := builder.Build()

		assertText(t, first, "a")
		assertText(t, second, "abWorld")
		assertText(t, third, "z")
	})

	t.Run("released builder panics", func(t *testing.T) {
		builder := factory.NewBuilder()
		builder.AppendLiteral("a")
		builder.BuildAndRelease()

		assert.PanicsWithValue(t, PanicMsgBuilderReleased, func() { builder.AppendLiteral("b") })
		assert.PanicsWithValue(t, PanicMsgBuilderReleased, func() { builder.Build() })
		assert.PanicsWithValue(t, PanicMsgBuilderReleased, func() { builder.BuildAndRelease() })
		assert.PanicsWithValue(t, PanicMsgBuilderReleased, func() { builder.Clear() })
		assert.PanicsWithValue(t, PanicMsgBuilderReleased, func() { _ = builder.Len() })
	})

	t.Run("nil model panics", func(t *testing.T) {
		builder := factory.NewBuilder()
		assert.PanicsWithValue(t, PanicMsgNilModel, func() { builder.AppendDynamic(nil) })
	})

	t.Run("live registry", func(t *testing.T) {
		registry := NewRegistry[person](DefaultEscape, nil)
		builder := factory.NewBuilder()
		require.NoError(t, Parse("[{late:x}]", DefaultSyntax(), registry, builder))
		model := builder.BuildAndRelease()

		assertText(t, model, "[<?>]")

		registry.MustAdd("late", StaticFormatter[person]("bound"))
		assertText(t, model, "[bound]")

		registry.MustAdd("late", ValueFormatter[person]())
		assertText(t, model, "[x]")

		registry.Remove("late")
		assertText(t, model, "[<?>]")
	})

	t.Run("errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		fail := DynamicFunc(func(person) (string, error) { return "", boom })
		ok := DynamicFunc(func(p person) (string, error) { return p.Name, nil })

		shapes := map[string][]any{
			"dyn":         {fail},
			"lit dyn":     {"a", fail},
			"dyn lit":     {fail, "a"},
			"lit dyn lit": {"a", fail, "b"},
			"chain":       {ok, "a", ok, "b", fail, "c"},
			"many":        manyDynamics(ok, fail, 12),
		}
		for name, shape := range shapes {
			builder := factory.NewBuilder()
			for _, part := range shape {
				switch p := part.(type) {
				case string:
					builder.AppendLiteral(p)
				case TextModel[person]:
					builder.AppendDynamic(p)
				}
			}
			_, err := builder.BuildAndRelease().Text(testPerson)
			assert.ErrorIs(t, err, boom, name)
		}
	})

	t.Run("many dynamics", func(t *testing.T) {
		idx := DynamicFunc(func(p person) (string, error) { return fmt.Sprint(p.Age), nil })
		builder := factory.NewBuilder()
		for range 20 {
			builder.AppendDynamic(idx)
			builder.AppendLiteral(",")
		}
		assertText(t, builder.BuildAndRelease(), strings.Repeat("42,", 20))
	})

	t.Run("concurrent text", func(t *testing.T) {
		registry := newTestRegistry(t)
		builder := factory.NewBuilder()
		require.NoError(t, Parse("Hi {test:name}, {echo:x}{echo:y}!", DefaultSyntax(), registry, builder))
		model := builder.BuildAndRelease()

		var wg sync.WaitGroup
		results := make([]string, 64)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				target := person{Name: fmt.Sprintf("p%d", i)}
				results[i], _ = model.Text(target)
			}()
		}
		wg.Wait()

		for i, result := range results {
			assert.Equal(t, fmt.Sprintf("Hi p%d, xy!", i), result)
		}
	})
}

func manyDynamics(ok, last TextModel[person], n int) []any {
	parts := make([]any, 0, 2*n+1)
	for range n {
		parts = append(parts, ok, "-")
	}
	return append(parts, last)
}

func assertText(t *testing.T, model TextModel[person], expected string) {
	t.Helper()
	text, err := model.Text(testPerson)
	require.NoError(t, err)
	assert.Equal(t, expected, text)
}

func assertBounds(t *testing.T, model TextModel[person], minLen int, minKnown bool, maxLen int, maxKnown bool) {
	t.Helper()
	n, ok := model.MinLength()
	assert.Equal(t, minKnown, ok, "min known")
	if minKnown {
		assert.Equal(t, minLen, n, "min")
	}
	n, ok = model.MaxLength()
	assert.Equal(t, maxKnown, ok, "max known")
	if maxKnown {
		assert.Equal(t, maxLen, n, "max")
	}
}
