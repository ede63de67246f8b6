package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	padla "github.com/JarvisCraft/padla-sub001"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	engineConfig
	templatePath string
	format       string
	strict       bool
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid        bool                    `json:"valid"`
	Placeholders []string                `json:"placeholders"`
	Issues       []validationIssueOutput `json:"issues,omitempty"`
}

type validationIssueOutput struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Name     string `json:"name,omitempty"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingTemplate, err)
		return ExitCodeUsageError
	}

	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	engine, err := newEngine(context.Background(), cfg.engineConfig, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return ExitCodeInputError
	}

	result := engine.Validate(string(templateSource))

	if cfg.format == OutputFormatJSON {
		return outputValidationJSON(result, cfg.strict, stdout)
	}
	return outputValidationText(result, cfg.strict, stdout)
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &validateConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.syntaxPath, FlagSyntax, "", "")
	fs.StringVar(&cfg.syntaxPath, FlagSyntaxShort, "", "")
	formatFlag(fs, &cfg.format)
	fs.BoolVar(&cfg.strict, FlagStrictMode, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	if err := checkFormat(cfg.format); err != nil {
		return nil, err
	}

	return cfg, nil
}

func outputValidationText(result *padla.ValidationResult, strict bool, stdout io.Writer) int {
	issues := result.Issues()
	errs := result.Errors()
	warnings := result.Warnings()

	if len(issues) == 0 {
		fmt.Fprintln(stdout, ValidationTextSuccess)
		return ExitCodeSuccess
	}

	fmt.Fprintln(stdout, ValidationTextIssueHeader)
	for _, issue := range issues {
		severityName := severityToName(issue.Severity)
		if issue.Position.Line == 0 {
			fmt.Fprintf(stdout, ValidationTextNoPosition+FmtNewline, severityName, issue.Message)
			continue
		}
		fmt.Fprintf(stdout, ValidationTextIssueFormat+FmtNewline,
			severityName, issue.Message, issue.Position.Line, issue.Position.Column)
	}

	fmt.Fprintf(stdout, ValidationTextErrorSummary+FmtNewline, len(errs), len(warnings))

	if len(errs) > 0 || (strict && len(warnings) > 0) {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func outputValidationJSON(result *padla.ValidationResult, strict bool, stdout io.Writer) int {
	issues := result.Issues()

	output := validationOutput{
		Valid:        result.IsValid() && (!strict || !result.HasWarnings()),
		Placeholders: result.Report().Keys(),
		Issues:       make([]validationIssueOutput, 0, len(issues)),
	}

	for _, issue := range issues {
		output.Issues = append(output.Issues, validationIssueOutput{
			Severity: severityToName(issue.Severity),
			Message:  issue.Message,
			Line:     issue.Position.Line,
			Column:   issue.Position.Column,
			Name:     issue.Name,
		})
	}

	_ = writeJSON(stdout, output)

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func severityToName(s padla.ValidationSeverity) string {
	switch s {
	case padla.SeverityError:
		return SeverityNameError
	case padla.SeverityWarning:
		return SeverityNameWarning
	case padla.SeverityInfo:
		return SeverityNameInfo
	default:
		return SeverityNameError
	}
}
