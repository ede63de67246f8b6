package padla

import (
	"context"
	"io"
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// YAML keys of a syntax document.
const (
	yamlKeyPrefix             = "prefix"
	yamlKeySuffix             = "suffix"
	yamlKeyDelimiter          = "delimiter"
	yamlKeyEscape             = "escape"
	yamlKeyUnknownReplacement = "unknown_replacement"
	yamlKeySpecialEscapes     = "special_escapes"
)

// syntaxDocument is the YAML form of a Syntax. Absent fields keep the default.
type syntaxDocument struct {
	Prefix             string            `yaml:"prefix,omitempty"`
	Suffix             string            `yaml:"suffix,omitempty"`
	Delimiter          string            `yaml:"delimiter,omitempty"`
	Escape             string            `yaml:"escape,omitempty"`
	UnknownReplacement *string           `yaml:"unknown_replacement,omitempty"`
	SpecialEscapes     map[string]string `yaml:"special_escapes,omitempty"`
}

// syntaxEnv is the environment form of a Syntax. Empty values keep the base syntax.
type syntaxEnv struct {
	Prefix             string `env:"PADLA_PREFIX"`
	Suffix             string `env:"PADLA_SUFFIX"`
	Delimiter          string `env:"PADLA_DELIMITER"`
	Escape             string `env:"PADLA_ESCAPE"`
	UnknownReplacement string `env:"PADLA_UNKNOWN"`
}

// ParseSyntaxYAML decodes a syntax document on top of DefaultSyntax and validates it.
//
//	prefix: "«"
//	suffix: "»"
//	delimiter: "|"
//	escape: "~"
//	unknown_replacement: "?"
//	special_escapes:
//	  n: "\n"
//
// A special_escapes mapping replaces the default translations entirely.
func ParseSyntaxYAML(data []byte) (Syntax, error) {
	var doc syntaxDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Syntax{}, NewSyntaxLoadError(err)
	}
	return doc.apply(DefaultSyntax())
}

// LoadSyntaxYAML reads a syntax document from r.
func LoadSyntaxYAML(r io.Reader) (Syntax, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Syntax{}, NewSyntaxLoadError(err)
	}
	return ParseSyntaxYAML(data)
}

// MarshalSyntaxYAML encodes syntax in the form read by ParseSyntaxYAML.
// Values are double-quoted so control characters survive as escapes.
func MarshalSyntaxYAML(syntax Syntax) ([]byte, error) {
	special := &yaml.Node{Kind: yaml.MappingNode}
	for _, from := range slices.Sorted(maps.Keys(syntax.SpecialEscapes)) {
		special.Content = append(special.Content,
			quotedNode(string(from)),
			quotedNode(string(syntax.SpecialEscapes[from])),
		)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		keyNode(yamlKeyPrefix), quotedNode(string(syntax.Prefix)),
		keyNode(yamlKeySuffix), quotedNode(string(syntax.Suffix)),
		keyNode(yamlKeyDelimiter), quotedNode(string(syntax.Delimiter)),
		keyNode(yamlKeyEscape), quotedNode(string(syntax.Escape)),
		keyNode(yamlKeyUnknownReplacement), quotedNode(syntax.UnknownReplacement),
		keyNode(yamlKeySpecialEscapes), special,
	)
	return yaml.Marshal(doc)
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func quotedNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle}
}

// LoadSyntaxEnv overrides base with the PADLA_* variables found by lookuper
// and validates the result. A nil lookuper reads the process environment.
func LoadSyntaxEnv(ctx context.Context, base Syntax, lookuper envconfig.Lookuper) (Syntax, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var env syntaxEnv
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return Syntax{}, NewSyntaxLoadError(err)
	}

	doc := syntaxDocument{
		Prefix:    env.Prefix,
		Suffix:    env.Suffix,
		Delimiter: env.Delimiter,
		Escape:    env.Escape,
	}
	if env.UnknownReplacement != "" {
		doc.UnknownReplacement = &env.UnknownReplacement
	}
	return doc.apply(base.Clone())
}

func (d syntaxDocument) apply(syntax Syntax) (Syntax, error) {
	fields := []struct {
		name  string
		value string
		dst   *rune
	}{
		{FieldPrefix, d.Prefix, &syntax.Prefix},
		{FieldSuffix, d.Suffix, &syntax.Suffix},
		{FieldDelimiter, d.Delimiter, &syntax.Delimiter},
		{FieldEscape, d.Escape, &syntax.Escape},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		r, err := singleRune(f.name, f.value)
		if err != nil {
			return Syntax{}, err
		}
		*f.dst = r
	}

	if d.UnknownReplacement != nil {
		syntax.UnknownReplacement = *d.UnknownReplacement
	}

	if d.SpecialEscapes != nil {
		syntax.SpecialEscapes = make(map[rune]rune, len(d.SpecialEscapes))
		for from, to := range d.SpecialEscapes {
			fromRune, err := singleRune(FieldSpecial, from)
			if err != nil {
				return Syntax{}, err
			}
			toRune, err := singleRune(FieldSpecial, to)
			if err != nil {
				return Syntax{}, err
			}
			syntax.SpecialEscapes[fromRune] = toRune
		}
	}

	if err := syntax.Validate(); err != nil {
		return Syntax{}, err
	}
	return syntax, nil
}

func singleRune(field, value string) (rune, error) {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError || size != len(value) {
		return 0, NewInvalidRuneValueError(field, value)
	}
	return r, nil
}
