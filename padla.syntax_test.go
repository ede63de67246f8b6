package padla

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/itsatony/go-cuserr"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntax_Validate(t *testing.T) {
	require.NoError(t, DefaultSyntax().Validate())

	tests := []struct {
		name   string
		modify func(*Syntax)
		msg    string
		field  string
	}{
		{"zero prefix", func(s *Syntax) { s.Prefix = 0 }, ErrMsgZeroRune, FieldPrefix},
		{"invalid escape", func(s *Syntax) { s.Escape = 0xD800 }, ErrMsgInvalidRune, FieldEscape},
		{"prefix equals suffix", func(s *Syntax) { s.Suffix = '{' }, ErrMsgDuplicateRune, FieldSuffix + "," + FieldPrefix},
		{"escape equals delimiter", func(s *Syntax) { s.Escape = ':' }, ErrMsgDuplicateRune, FieldEscape + "," + FieldDelimiter},
		{"invalid special", func(s *Syntax) { s.SpecialEscapes['x'] = -1 }, ErrMsgInvalidRune, FieldSpecial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSyntax()
			tt.modify(&s)

			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(err, &customErr))
			field, ok := customErr.GetMetadata(MetaKeyField)
			assert.True(t, ok)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestSyntax_CloneIsDeep(t *testing.T) {
	s := DefaultSyntax()
	c := s.Clone()
	c.SpecialEscapes['x'] = 'y'

	_, ok := s.SpecialEscapes['x']
	assert.False(t, ok)
}

func TestSyntax_IsPlain(t *testing.T) {
	s := DefaultSyntax()
	assert.True(t, s.IsPlain("nothing here: }"))
	assert.False(t, s.IsPlain("a {b}"))
	assert.False(t, s.IsPlain(`a\nb`))
}

func TestSyntax_QuoteFormatsToItself(t *testing.T) {
	registry := newTestRegistry(t)
	s := DefaultSyntax()

	for _, text := range []string{"", "plain", "{test:name}", `a\b{c}:d`, "{}", `\`, "{unterminated"} {
		quoted := s.Quote(text)
		result, err := Format(quoted, testPerson, s, registry)
		require.NoError(t, err)
		assert.Equal(t, text, result, "quoted %q", quoted)
	}

	plain := "no meta runes"
	assert.Equal(t, plain, s.Quote(plain))
}

func TestParseSyntaxYAML(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		s, err := ParseSyntaxYAML([]byte(`
prefix: "«"
suffix: "»"
delimiter: "|"
escape: "~"
unknown_replacement: ""
special_escapes:
  n: "\n"
`))
		require.NoError(t, err)

		expected := Syntax{
			Prefix:             '«',
			Suffix:             '»',
			Delimiter:          '|',
			Escape:             '~',
			SpecialEscapes:     map[rune]rune{'n': '\n'},
			UnknownReplacement: "",
		}
		if diff := cmp.Diff(expected, s); diff != "" {
			t.Errorf("syntax mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		s, err := ParseSyntaxYAML([]byte("prefix: \"<\"\nsuffix: \">\"\n"))
		require.NoError(t, err)
		assert.Equal(t, '<', s.Prefix)
		assert.Equal(t, DefaultDelimiter, s.Delimiter)
		assert.Equal(t, DefaultUnknownReplacement, s.UnknownReplacement)
		assert.Equal(t, DefaultSpecialEscapes(), s.SpecialEscapes)
	})

	t.Run("errors", func(t *testing.T) {
		sources := map[string]string{
			"not yaml":          "prefix: [",
			"multi-rune prefix": "prefix: \"ab\"",
			"duplicate runes":   "prefix: \":\"",
			"bad special":       "special_escapes:\n  nn: \"\\n\"",
		}
		for name, source := range sources {
			_, err := ParseSyntaxYAML([]byte(source))
			assert.Error(t, err, name)
		}
	})
}

func TestSyntaxYAML_RoundTrip(t *testing.T) {
	custom := DefaultSyntax()
	custom.Prefix, custom.Suffix = '[', ']'
	custom.UnknownReplacement = "?"

	quotes := DefaultSyntax()
	quotes.Prefix, quotes.Suffix, quotes.Delimiter = '"', '\'', '#'
	quotes.Escape = '%'
	quotes.UnknownReplacement = ""
	quotes.SpecialEscapes = map[rune]rune{'e': 0x1b, 'u': '\u00e9', 't': '\t'}

	tests := []struct {
		name   string
		syntax Syntax
	}{
		{name: "defaults", syntax: DefaultSyntax()},
		{name: "custom delimiters", syntax: custom},
		{name: "quotes and control characters", syntax: quotes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalSyntaxYAML(tt.syntax)
			require.NoError(t, err)

			loaded, err := LoadSyntaxYAML(strings.NewReader(string(data)))
			require.NoError(t, err, "document:\n%s", data)
			if diff := cmp.Diff(tt.syntax, loaded); diff != "" {
				t.Errorf("syntax mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalSyntaxYAML_QuotesControlCharacters(t *testing.T) {
	data, err := MarshalSyntaxYAML(DefaultSyntax())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"n": "\n"`)
	assert.NotContains(t, string(data), "|")
}

func TestLoadSyntaxEnv(t *testing.T) {
	ctx := context.Background()

	t.Run("overrides base", func(t *testing.T) {
		lookuper := envconfig.MapLookuper(map[string]string{
			EnvPrefix:             "<",
			EnvSuffix:             ">",
			EnvUnknownReplacement: "?",
		})
		base := DefaultSyntax()
		base.Escape = '~'

		s, err := LoadSyntaxEnv(ctx, base, lookuper)
		require.NoError(t, err)
		assert.Equal(t, '<', s.Prefix)
		assert.Equal(t, '>', s.Suffix)
		assert.Equal(t, '~', s.Escape)
		assert.Equal(t, DefaultDelimiter, s.Delimiter)
		assert.Equal(t, "?", s.UnknownReplacement)
	})

	t.Run("empty environment keeps base", func(t *testing.T) {
		s, err := LoadSyntaxEnv(ctx, DefaultSyntax(), envconfig.MapLookuper(nil))
		require.NoError(t, err)
		if diff := cmp.Diff(DefaultSyntax(), s); diff != "" {
			t.Errorf("syntax mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := LoadSyntaxEnv(ctx, DefaultSyntax(), envconfig.MapLookuper(map[string]string{
			EnvEscape: "{",
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgDuplicateRune)
	})

	t.Run("process environment", func(t *testing.T) {
		t.Setenv(EnvDelimiter, "=")
		s, err := LoadSyntaxEnv(ctx, DefaultSyntax(), nil)
		require.NoError(t, err)
		assert.Equal(t, '=', s.Delimiter)
	})
}
