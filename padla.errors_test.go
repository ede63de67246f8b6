package padla

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Metadata(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		msg   string
		key   string
		value string
	}{
		{"invalid syntax", NewInvalidSyntaxError(ErrMsgZeroRune, FieldPrefix, 0), ErrMsgZeroRune, MetaKeyField, FieldPrefix},
		{"invalid syntax rune", NewInvalidSyntaxError(ErrMsgDuplicateRune, FieldSuffix, '{'), ErrMsgDuplicateRune, MetaKeyRune, "'{'"},
		{"invalid rune value", NewInvalidRuneValueError(FieldEscape, "ab"), ErrMsgInvalidRuneValue, MetaKeyValue, "ab"},
		{"formatter escape", NewFormatterNameEscapeError(`a\b`, '\\'), ErrMsgFormatterNameEscape, MetaKeyName, `a\b`},
		{"nil formatter", NewNilFormatterError("x"), ErrMsgNilFormatter, MetaKeyName, "x"},
		{"nil argument", NewNilArgumentError(ArgBuilder), ErrMsgNilArgument, MetaKeyArgument, ArgBuilder},
		{"unknown backend", NewUnknownBackendError("vm"), ErrMsgUnknownBackend, MetaKeyBackend, "vm"},
		{"template not found", NewTemplateNotFoundError("greet"), ErrMsgTemplateNotFound, MetaKeyName, "greet"},
		{"invalid template name", NewInvalidTemplateNameError(".."), ErrMsgInvalidTemplateName, MetaKeyName, ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Contains(t, tt.err.Error(), tt.msg)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(tt.err, &customErr))

			value, ok := customErr.GetMetadata(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	cause := errors.New("underlying")

	t.Run("syntax load", func(t *testing.T) {
		err := NewSyntaxLoadError(cause)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), ErrMsgSyntaxLoadFailed)
	})

	t.Run("compile", func(t *testing.T) {
		err := NewCompileError("greet", cause)
		assert.ErrorIs(t, err, cause)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		name, ok := customErr.GetMetadata(MetaKeyName)
		assert.True(t, ok)
		assert.Equal(t, "greet", name)
	})

	t.Run("template not found sentinel", func(t *testing.T) {
		assert.ErrorIs(t, NewTemplateNotFoundError("x"), ErrTemplateNotFound)
		assert.ErrorIs(t, NewStorageVersionNotFoundError("x", 2), ErrTemplateNotFound)
		assert.ErrorIs(t, NewStorageClosedError(), ErrStorageClosed)
	})
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := &StorageError{Message: ErrMsgWriteTemplateFile, Name: "greet", Version: 3, Cause: cause}

	assert.Contains(t, err.Error(), ErrMsgWriteTemplateFile)
	assert.Contains(t, err.Error(), "greet")
	assert.ErrorIs(t, err, cause)
}
