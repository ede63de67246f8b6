package padla

import (
	"testing"

	"github.com/JarvisCraft/padla-sub001/internal"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_Placeholders(t *testing.T) {
	report := Inspect("Hi {user:name},\n  {date:HH\\:mm} {user:name}", DefaultSyntax())

	expected := []PlaceholderInfo{
		{Key: "user", Value: "name", Position: Position{Offset: 3, Line: 1, Column: 4}},
		{Key: "date", Value: "HH:mm", Position: Position{Offset: 18, Line: 2, Column: 3}},
		{Key: "user", Value: "name", Position: Position{Offset: 32, Line: 2, Column: 17}},
	}
	if diff := cmp.Diff(expected, report.Placeholders); diff != "" {
		t.Errorf("placeholders mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"user", "date"}, report.Keys())
	assert.False(t, report.HasDiagnostics())
	assert.False(t, report.Plain)
}

func TestInspect_Diagnostics(t *testing.T) {
	report := Inspect("{} {:x}\n{open", DefaultSyntax())

	require.Len(t, report.Diagnostics, 3)
	kinds := make([]string, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []string{"EMPTY_BODY", "DELIMITER_FIRST", "UNTERMINATED"}, kinds)

	assert.Equal(t, DiagMsgEmptyBody, report.Diagnostics[0].Message)
	assert.Equal(t, Position{Offset: 3, Line: 1, Column: 4}, report.Diagnostics[1].Position)
	assert.Equal(t, Position{Offset: 8, Line: 2, Column: 1}, report.Diagnostics[2].Position)
	assert.Empty(t, report.Placeholders)
	assert.NotNil(t, report.Placeholders)
}

func TestInspect_PositionsAcrossLines(t *testing.T) {
	source := "é {a:1}\n{}\n\t{b:2} {:x}\nzz {c:3}\n{open é"
	report := Inspect(source, DefaultSyntax())

	require.Len(t, report.Placeholders, 3)
	require.Len(t, report.Diagnostics, 3)
	for _, p := range report.Placeholders {
		assert.Equal(t, internal.PositionAt(source, p.Position.Offset), p.Position, p.Key)
	}
	for _, d := range report.Diagnostics {
		assert.Equal(t, internal.PositionAt(source, d.Position.Offset), d.Position, d.Kind)
	}

	assert.Equal(t, Position{Offset: 3, Line: 1, Column: 3}, report.Placeholders[0].Position)
	assert.Equal(t, Position{Offset: 33, Line: 5, Column: 1}, report.Diagnostics[2].Position)
}

func TestInspect_TrailingEscape(t *testing.T) {
	report := Inspect(`abc\`, DefaultSyntax())

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, DiagMsgTrailingEscape, report.Diagnostics[0].Message)
	assert.Equal(t, 3, report.Diagnostics[0].Position.Offset)
}

func TestInspect_Plain(t *testing.T) {
	report := Inspect("just text", DefaultSyntax())
	assert.True(t, report.Plain)
	assert.NotNil(t, report.Diagnostics)
	assert.Empty(t, report.Keys())
}

func TestEngine_Validate(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("valid", func(t *testing.T) {
		result := engine.Validate("Hello {test:name}")
		assert.True(t, result.IsValid())
		assert.Empty(t, result.Issues())
		assert.Equal(t, []string{"test"}, result.Report().Keys())
	})

	t.Run("unknown formatter is an error", func(t *testing.T) {
		result := engine.Validate("a {nope:x}")
		assert.False(t, result.IsValid())
		require.Len(t, result.Errors(), 1)

		issue := result.Errors()[0]
		assert.Equal(t, SeverityError, issue.Severity)
		assert.Equal(t, ValidationMsgUnknownFormatter, issue.Message)
		assert.Equal(t, "nope", issue.Name)
		assert.Equal(t, 3, issue.Position.Column)
	})

	t.Run("malformed text is a warning", func(t *testing.T) {
		result := engine.Validate("{test:name} {}")
		assert.True(t, result.IsValid())
		assert.True(t, result.HasWarnings())
		require.Len(t, result.Warnings(), 1)
		assert.Equal(t, "EMPTY_BODY", result.Warnings()[0].Name)
	})

	t.Run("plain source is info", func(t *testing.T) {
		result := engine.Validate("plain")
		assert.True(t, result.IsValid())
		assert.False(t, result.HasWarnings())
		require.Len(t, result.Issues(), 1)
		assert.Equal(t, SeverityInfo, result.Issues()[0].Severity)
	})

	t.Run("empty source", func(t *testing.T) {
		assert.Empty(t, engine.Validate("").Issues())
	})
}

func TestValidationSeverity_String(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "info", SeverityInfo.String())
}
