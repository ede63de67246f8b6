package padla

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry[person](DefaultEscape, nil)

	require.NoError(t, r.Add("name", FormatterFunc[person](func(_ string, p person) (string, error) {
		return p.Name, nil
	})))

	f, ok := r.Get("name")
	require.True(t, ok)
	text, err := f.Format("", testPerson)
	require.NoError(t, err)
	assert.Equal(t, "World", text)

	assert.True(t, r.Has("name"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, DefaultEscape, r.Escape())
}

func TestRegistry_AddRejectsInvalid(t *testing.T) {
	r := NewRegistry[person](DefaultEscape, nil)

	tests := []struct {
		name      string
		key       string
		formatter Formatter[person]
		msg       string
	}{
		{"empty name", "", ValueFormatter[person](), ErrMsgEmptyFormatterName},
		{"escape in name", `a\b`, ValueFormatter[person](), ErrMsgFormatterNameEscape},
		{"nil formatter", "x", nil, ErrMsgNilFormatter},
		{"nil func", "x", FormatterFunc[person](nil), ErrMsgNilFormatter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Add(tt.key, tt.formatter)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(err, &customErr))
			assert.Equal(t, 0, r.Count())
		})
	}

	assert.Error(t, r.AddFunc("x", nil))
	assert.Panics(t, func() { r.MustAdd("", ValueFormatter[person]()) })
}

func TestRegistry_NamesMayContainMetaRunesOtherThanEscape(t *testing.T) {
	r := NewRegistry[person](DefaultEscape, nil)
	require.NoError(t, r.Add("a:b", ValueFormatter[person]()))
	require.NoError(t, r.Add("{x}", ValueFormatter[person]()))
	assert.Equal(t, []string{"a:b", "{x}"}, r.Names())
}

func TestRegistry_ReplaceAndRemove(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewRegistry[person](DefaultEscape, zap.New(core))

	r.MustAdd("x", StaticFormatter[person]("one"))
	r.MustAdd("x", StaticFormatter[person]("two"))

	f, ok := r.Get("x")
	require.True(t, ok)
	text, _ := f.Format("", testPerson)
	assert.Equal(t, "two", text)

	removed, ok := r.Remove("x")
	require.True(t, ok)
	text, _ = removed.Format("", testPerson)
	assert.Equal(t, "two", text)

	_, ok = r.Remove("x")
	assert.False(t, ok)
	_, ok = r.Get("x")
	assert.False(t, ok)

	assert.Equal(t, 1, logs.FilterMessage(LogMsgFormatterAdded).Len())
	assert.Equal(t, 1, logs.FilterMessage(LogMsgFormatterReplaced).Len())
	assert.Equal(t, 1, logs.FilterMessage(LogMsgFormatterRemoved).Len())
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry[person](DefaultEscape, nil)
	for _, name := range []string{"c", "a", "b"} {
		r.MustAdd(name, ValueFormatter[person]())
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.Names())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry[person](DefaultEscape, nil)
	syntax := DefaultSyntax()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("f%d", i%4)
			for range 100 {
				r.MustAdd(name, StaticFormatter[person](name))
				r.Remove(name)
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				text, err := Format("{f0:x}{f1:x}", testPerson, syntax, r)
				assert.NoError(t, err)
				assert.NotEmpty(t, text)
				_ = r.Names()
			}
		}()
	}
	wg.Wait()
}
